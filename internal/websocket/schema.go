package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAutosave Action = "autosave"
	ActionPreview  Action = "preview"
	ActionSubmit   Action = "submit"
	ActionPing     Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// AutosaveRequest is sent by the client to save a single answer.
type AutosaveRequest struct {
	Action Action `json:"action"`
	QID    string `json:"q_id"`
	Answer string `json:"ans"`
}

// PreviewRequest grades the given answers without storing a result.
type PreviewRequest struct {
	Action  Action            `json:"action"`
	Answers map[string]string `json:"answers"`
}

// SubmitRequest finishes the exam. Answers fill in or replace the autosaved
// draft of the connection.
type SubmitRequest struct {
	Action        Action            `json:"action"`
	StudentName   string            `json:"student_name" binding:"required,max=100"`
	StudentNumber string            `json:"student_number" binding:"required,max=50"`
	StudentClass  string            `json:"student_class" binding:"omitempty,max=100"`
	Answers       map[string]string `json:"answers" binding:"omitempty,max=500"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventReady   Event = "ready"
	EventError   Event = "error"
	EventSaved   Event = "saved"
	EventPreview Event = "preview"
	EventGraded  Event = "graded"
	EventPong    Event = "pong"
)

// ReadyResponse is sent once after the upgrade with the draft the
// connection autosaves into.
type ReadyResponse struct {
	Event   Event  `json:"event"`
	DraftID string `json:"draft_id"`
}

type SavedResponse struct {
	Event Event  `json:"event"`
	QID   string `json:"q_id"`
}

type GradedResponse struct {
	Event      Event   `json:"event"`
	ResultID   *string `json:"result_id,omitempty"`
	Score      int     `json:"score"`
	TotalScore int     `json:"total_score"`
	Passed     bool    `json:"passed"`
}

type ErrorResponse struct {
	Event  Event             `json:"event"`
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
