package main

import (
	"context"
	"fmt"
	"time"

	"github.com/yufurikuto/EduExam/internal/answer"
	"github.com/yufurikuto/EduExam/internal/config"
	"github.com/yufurikuto/EduExam/internal/database"
	"github.com/yufurikuto/EduExam/internal/logger"
	"github.com/yufurikuto/EduExam/internal/model"
	"github.com/yufurikuto/EduExam/internal/repository"
	"github.com/yufurikuto/EduExam/internal/service"
)

// Seeds one demo exam covering every question type, plus a handful of graded
// submissions so the results and analysis pages have data.
func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	subjectRepo := repository.NewSubjectRepository(pool)
	examRepo := repository.NewExamRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	resultRepo := repository.NewExamResultRepository(pool)
	draftRepo := repository.NewDraftRepository(pool)

	subjectService := service.NewSubjectService(subjectRepo, log)
	examService := service.NewExamService(examRepo, questionRepo, subjectRepo, rdb, cfg, log)
	questionService := service.NewQuestionService(examRepo, questionRepo, rdb, log)
	submissionService := service.NewSubmissionService(examRepo, questionRepo, resultRepo, draftRepo, rdb, cfg, log)

	teacherID, err := service.TeacherID("demo")
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid demo teacher")
	}

	fmt.Println("=== Seeding Demo Exam ===")

	subject, err := subjectService.Create(ctx, teacherID, model.CreateSubjectRequest{Name: fmt.Sprintf("Demo %s", time.Now().Format("20060102-150405"))})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create subject")
	}

	passing := 30
	limit := 20
	exam, err := examService.Create(ctx, teacherID, model.CreateExamRequest{
		Title:        "General Knowledge Check",
		SubjectID:    &subject.ID,
		TimeLimit:    &limit,
		PassingScore: &passing,
		IsShuffle:    true,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create exam")
	}

	questions, err := questionService.Save(ctx, exam.ID, teacherID, demoQuestions())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to save questions")
	}

	students := []struct {
		name, number string
		answers      []string
	}{
		{"Aiko Tanaka", "1001", []string{"2", `["1","3"]`, "true", "1947", "Mercury,Venus,Earth", "0:0,1:1", `{"0":"red","1":"blue"}`}},
		{"Ben Carter", "1002", []string{"2", `["1"]`, "false", "1947", "Venus,Mercury,Earth", "0:1,1:0", `{"0":"red","1":"green"}`}},
		{"Chen Wei", "1003", []string{"3", `["3","1"]`, "true", "1948", "Mercury,Venus,Earth", "0:0,1:1", ""}},
		{"Dana Lopez", "1004", []string{"1", "", "false", "", "", "", ""}},
		{"Emre Yilmaz", "1005", []string{"2", `["1","3"]`, "true", " 1947 ", "Mercury,Venus,Earth", "1:1,0:0", `{"1":"blue","0":"red"}`}},
	}

	for _, st := range students {
		answers := make(map[string]string, len(questions))
		for i, q := range questions {
			if i < len(st.answers) && st.answers[i] != "" {
				answers[q.ID.String()] = st.answers[i]
			}
		}
		res, err := submissionService.Submit(ctx, exam.ID, model.SubmitExamRequest{
			StudentName:   st.name,
			StudentNumber: st.number,
			StudentClass:  "3-B",
			Answers:       answers,
		})
		if err != nil {
			log.Fatal().Err(err).Str("student", st.name).Msg("Failed to submit")
		}
		fmt.Printf("  %-12s %3d / %d  passed=%t\n", st.name, res.Score, res.TotalScore, res.Passed)
	}

	fmt.Printf("\nSeed completed! Exam %s with %d questions for %s.\n", exam.ID, len(questions), teacherID)
}

func demoQuestions() []model.QuestionInput {
	str := func(s string) *string { return &s }
	return []model.QuestionInput{
		{
			Text:          "Which planet is known as the red planet?",
			Type:          answer.MultipleChoice.String(),
			Options:       []string{"Jupiter", "Mars", "Saturn", "Neptune"},
			CorrectAnswer: str("2"),
			Score:         10,
		},
		{
			Text:          "Select every prime number.",
			Type:          answer.MultipleChoice.String(),
			Options:       []string{"2", "4", "5", "9"},
			CorrectAnswer: str(`["1","3"]`),
			Score:         10,
		},
		{
			Text:          "Water boils at 100°C at sea level.",
			Type:          answer.TrueFalse.String(),
			CorrectAnswer: str("true"),
			Score:         5,
		},
		{
			Text:          "In which year did India become independent?",
			Type:          answer.Text.String(),
			CorrectAnswer: str("1947"),
			Score:         5,
		},
		{
			Text:    "Order the planets by distance from the sun.",
			Type:    answer.Ordering.String(),
			Options: []string{"Mercury", "Venus", "Earth"},
			Score:   10,
		},
		{
			Text: "Match each country with its capital.",
			Type: answer.Matching.String(),
			Options: []string{
				answer.EncodePair(answer.Pair{Left: "Japan", Right: "Tokyo"}),
				answer.EncodePair(answer.Pair{Left: "France", Right: "Paris"}),
			},
			Score: 10,
		},
		{
			Text:          "A ripe apple is often {color} and a clear sky is ｛color｝.",
			Type:          answer.FillInTheBlank.String(),
			CorrectAnswer: str(`{"0":"red","1":"blue"}`),
			Score:         10,
		},
	}
}
