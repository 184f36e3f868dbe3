package httpserver

import (
	"net/http"

	domain "github.com/bryanwahyu/labsight/internal/domain/labreports"
	"github.com/bryanwahyu/labsight/internal/infra/httpserver/respond"
	"github.com/bryanwahyu/labsight/internal/middleware"
)

// POST /chat
// Body: {"rawText": "...", "priorAnalysis": "...", "question": "..."}
func (r *Router) handleChat(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		RawText       string `json:"rawText"`
		PriorAnalysis string `json:"priorAnalysis"`
		Question      string `json:"question"`
	}
	if err := decodeJSON(w, req, &body); err != nil {
		return err
	}

	turn, err := r.reports.Answer(req.Context(), body.RawText, body.PriorAnalysis, middleware.SanitizeString(body.Question))
	if err != nil {
		return err
	}
	respond.JSON(w, http.StatusOK, map[string]any{"success": true, "message": turn})
	return nil
}

// POST /reports/{id}/chat
// Body: {"question": "..."}
func (r *Router) handleReportChat(w http.ResponseWriter, req *http.Request) error {
	id, err := reportID(req)
	if err != nil {
		return err
	}
	var body struct {
		Question string `json:"question"`
	}
	if err := decodeJSON(w, req, &body); err != nil {
		return err
	}

	turn, err := r.reports.AnswerForReport(req.Context(), caller(req), id, middleware.SanitizeString(body.Question))
	if err != nil {
		return err
	}
	respond.JSON(w, http.StatusOK, map[string]any{"success": true, "message": turn})
	return nil
}

// POST /analyze
// Body: {"rawText": "...", "structuredData": {...}}
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		RawText        string                 `json:"rawText"`
		StructuredData *domain.StructuredData `json:"structuredData"`
	}
	if err := decodeJSON(w, req, &body); err != nil {
		return err
	}

	text, err := r.reports.AnalyzeText(req.Context(), body.RawText, body.StructuredData)
	if err != nil {
		return err
	}
	respond.JSON(w, http.StatusOK, map[string]any{"success": true, "analysis": text})
	return nil
}
