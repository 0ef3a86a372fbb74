package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"cnmaturity/internal/model"
	"cnmaturity/internal/service"
	"cnmaturity/internal/transport/rest/middleware"
)

// SessionHandler handles respondent session endpoints
type SessionHandler struct {
	svc *service.AssessmentService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(svc *service.AssessmentService) *SessionHandler {
	return &SessionHandler{svc: svc}
}

// ScoreResponse is the live score of a session.
// Undefined scores are null, never zero.
type ScoreResponse struct {
	Overall       *float64              `json:"overall"`
	MaturityLevel *model.MaturityLevel  `json:"maturityLevel"`
	ByCategory    map[string]*float64   `json:"byCategory"`
	Categories    []model.CategoryScore `json:"categories"`
}

// Create handles POST /v1/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.svc.Start(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// Get handles GET /v1/sessions/{sessionId}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.Session(r.Context(), sessionID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// Questions handles GET /v1/sessions/{sessionId}/questions
func (h *SessionHandler) Questions(w http.ResponseWriter, r *http.Request) {
	views, err := h.svc.Questions(r.Context(), sessionID(r), lang(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"questions": views,
	})
}

// Submit handles POST /v1/sessions/{sessionId}/answers
func (h *SessionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req model.SubmitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.QuestionID == "" || req.Value == nil {
		writeError(w, http.StatusBadRequest, "questionId and value are required")
		return
	}

	snap, err := h.svc.Submit(r.Context(), sessionID(r), req.QuestionID, *req.Value)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// Revise handles PUT /v1/sessions/{sessionId}/answers/{questionId}
func (h *SessionHandler) Revise(w http.ResponseWriter, r *http.Request) {
	var req model.SubmitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Value == nil {
		writeError(w, http.StatusBadRequest, "value is required")
		return
	}

	snap, err := h.svc.Revise(r.Context(), sessionID(r), mux.Vars(r)["questionId"], *req.Value)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// Score handles GET /v1/sessions/{sessionId}/score
func (h *SessionHandler) Score(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Score(r.Context(), sessionID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, &ScoreResponse{
		Overall:       res.Overall,
		MaturityLevel: res.Level,
		ByCategory:    res.ByCategory(),
		Categories:    res.Categories,
	})
}

// Result handles GET /v1/sessions/{sessionId}/result
func (h *SessionHandler) Result(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Result(r.Context(), sessionID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Delete handles DELETE /v1/sessions/{sessionId}
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Abandon(r.Context(), sessionID(r)); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// sessionID prefers the ID bound by the auth middleware
func sessionID(r *http.Request) string {
	if id := middleware.GetSessionID(r.Context()); id != "" {
		return id
	}
	return mux.Vars(r)["sessionId"]
}
