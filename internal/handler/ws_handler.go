package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/yufurikuto/EduExam/internal/model"
	"github.com/yufurikuto/EduExam/internal/response"
	"github.com/yufurikuto/EduExam/internal/service"
	"github.com/yufurikuto/EduExam/internal/validator"
	ws "github.com/yufurikuto/EduExam/internal/websocket"
)

const wsActionTimeout = 10 * time.Second

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if allowed == "*" || strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler handles the student exam stream: autosave, preview and submit
// over one connection.
type WSHandler struct {
	papers      PaperSource
	submissions Submitter
	log         zerolog.Logger
	upgrader    websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(papers PaperSource, submissions Submitter, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		papers:      papers,
		submissions: submissions,
		log:         log.With().Str("component", "ws_handler").Logger(),
		upgrader:    buildUpgrader(allowedOrigins),
	}
}

// ExamWebSocketStream godoc
// WS /ws/v1/exams/:exam_id/stream?draft_id=
// Upgrades to WebSocket for autosave and instant grading. Without a draft_id
// a new draft is started and announced in the ready event.
func (h *WSHandler) ExamWebSocketStream(c *gin.Context) {
	examID, ok := parseID(c, "exam_id")
	if !ok {
		return
	}

	draftID := uuid.New()
	if raw := c.Query("draft_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
			return
		}
		draftID = id
	}

	if _, err := h.papers.GetStudentPaper(c.Request.Context(), examID); err != nil {
		failWithError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()
	conn.SetReadLimit(ws.MaxMessageSize)

	wsLog := h.log.With().
		Str("exam_id", examID.String()).
		Str("draft_id", draftID.String()).
		Logger()

	wsLog.Info().Msg("Student connected")
	if err := ws.WriteTyped(conn, ws.ReadyResponse{Event: ws.EventReady, DraftID: draftID.String()}); err != nil {
		return
	}

	ctx := c.Request.Context()
	for {
		action, data, err := ws.ReadMessage(conn)
		if err != nil {
			if errors.Is(err, ws.ErrMalformedMessage) {
				ws.WriteError(conn, "message must be a JSON object")
				continue
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		switch action {
		case ws.ActionAutosave:
			h.handleAutosave(ctx, conn, wsLog, examID, draftID, data)
		case ws.ActionPreview:
			h.handlePreview(ctx, conn, wsLog, examID, data)
		case ws.ActionSubmit:
			if h.handleSubmit(ctx, conn, wsLog, examID, draftID, data) {
				return
			}
		case ws.ActionPing:
			ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
		default:
			wsLog.Warn().Str("action", string(action)).Msg("Unknown action")
			ws.WriteError(conn, "unknown action: "+string(action))
		}
	}
}

// handleAutosave saves a single answer to the connection's draft.
func (h *WSHandler) handleAutosave(
	ctx context.Context,
	conn *websocket.Conn,
	wsLog zerolog.Logger,
	examID, draftID uuid.UUID,
	data []byte,
) {
	var msg ws.AutosaveRequest
	if err := json.Unmarshal(data, &msg); err != nil {
		ws.WriteError(conn, "invalid autosave payload")
		return
	}

	// Only well-formed ids reach Redis keys.
	qid, err := uuid.Parse(msg.QID)
	if err != nil {
		ws.WriteError(conn, "invalid q_id format")
		return
	}

	ctx, cancel := context.WithTimeout(ctx, wsActionTimeout)
	defer cancel()

	if err := h.submissions.Autosave(ctx, examID, draftID, qid, msg.Answer); err != nil {
		if errors.Is(err, service.ErrAnswerTooLong) {
			ws.WriteError(conn, err.Error())
			return
		}
		wsLog.Error().Err(err).Msg("Autosave failed")
		ws.WriteError(conn, "save failed")
		return
	}

	ws.WriteTyped(conn, ws.SavedResponse{Event: ws.EventSaved, QID: qid.String()})
}

func (h *WSHandler) handlePreview(ctx context.Context, conn *websocket.Conn, wsLog zerolog.Logger, examID uuid.UUID, data []byte) {
	var msg ws.PreviewRequest
	if err := json.Unmarshal(data, &msg); err != nil {
		ws.WriteError(conn, "invalid preview payload")
		return
	}

	ctx, cancel := context.WithTimeout(ctx, wsActionTimeout)
	defer cancel()

	res, err := h.submissions.Preview(ctx, examID, msg.Answers)
	if err != nil {
		wsLog.Error().Err(err).Msg("Preview failed")
		ws.WriteError(conn, "grading failed")
		return
	}

	ws.WriteTyped(conn, gradedResponse(ws.EventPreview, res))
}

// handleSubmit grades and stores the exam. It reports whether the stream is
// finished.
func (h *WSHandler) handleSubmit(
	ctx context.Context,
	conn *websocket.Conn,
	wsLog zerolog.Logger,
	examID, draftID uuid.UUID,
	data []byte,
) bool {
	var msg ws.SubmitRequest
	if err := json.Unmarshal(data, &msg); err != nil {
		ws.WriteError(conn, "invalid submit payload")
		return false
	}
	if fields := validator.Struct(&msg); fields != nil {
		ws.WriteFieldErrors(conn, response.GetMessage(response.ErrValidation), fields)
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, wsActionTimeout)
	defer cancel()

	res, err := h.submissions.Submit(ctx, examID, model.SubmitExamRequest{
		StudentName:   msg.StudentName,
		StudentNumber: msg.StudentNumber,
		StudentClass:  msg.StudentClass,
		Answers:       msg.Answers,
		DraftID:       &draftID,
	})
	if err != nil {
		wsLog.Error().Err(err).Msg("Submit failed")
		ws.WriteError(conn, "grading failed")
		return false
	}

	wsLog.Info().
		Int("score", res.Score).
		Int("total", res.TotalScore).
		Msg("Exam submitted and graded")

	ws.WriteTyped(conn, gradedResponse(ws.EventGraded, res))
	return true
}

func gradedResponse(event ws.Event, res *model.SubmitResponse) ws.GradedResponse {
	out := ws.GradedResponse{
		Event:      event,
		Score:      res.Score,
		TotalScore: res.TotalScore,
		Passed:     res.Passed,
	}
	if res.ResultID != nil {
		id := res.ResultID.String()
		out.ResultID = &id
	}
	return out
}
