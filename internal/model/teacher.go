package model

// TeacherLoginRequest is the payload for logging in as a teacher.
type TeacherLoginRequest struct {
	Identifier string `json:"identifier" binding:"required,max=100"`
	Password   string `json:"password" binding:"required,max=200"`
}

// Teacher is the identity derived from a login.
type Teacher struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TeacherLoginResponse is returned on a successful login.
type TeacherLoginResponse struct {
	Token   string  `json:"token"`
	Teacher Teacher `json:"teacher"`
}
