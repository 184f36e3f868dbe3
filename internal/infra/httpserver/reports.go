package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bryanwahyu/labsight/internal/apperr"
	applabreports "github.com/bryanwahyu/labsight/internal/application/labreports"
	"github.com/bryanwahyu/labsight/internal/application/session"
	"github.com/bryanwahyu/labsight/internal/domain/identity"
	domain "github.com/bryanwahyu/labsight/internal/domain/labreports"
	"github.com/bryanwahyu/labsight/internal/infra/httpserver/respond"
	"github.com/bryanwahyu/labsight/internal/middleware"
)

// multipart overhead allowed on top of the file limit
const formSlack = 1 << 20

type uploadedReport struct {
	ID            domain.ReportID `json:"id"`
	FileName      string          `json:"file_name"`
	AIAnalysis    *string         `json:"ai_analysis"`
	UploadedAt    time.Time       `json:"uploaded_at"`
	RawTextLength int             `json:"rawTextLength"`
}

type uploadResponse struct {
	Success        bool                  `json:"success"`
	AnalysisStatus domain.AnalysisStatus `json:"analysisStatus"`
	LabReport      uploadedReport        `json:"labReport"`
}

func caller(req *http.Request) *identity.Identity {
	id, _ := session.IdentityFrom(req.Context())
	return id
}

// POST /upload
// Multipart: file, fileName, userId
func (r *Router) handleUpload(w http.ResponseWriter, req *http.Request) error {
	if r.maxUpload > 0 {
		req.Body = http.MaxBytesReader(w, req.Body, r.maxUpload+formSlack)
	}
	if err := req.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			return apperr.Validation("file_too_large", "File is too large")
		}
		return apperr.Validation("invalid_form", "Expected a multipart form upload")
	}
	defer func() {
		if req.MultipartForm != nil {
			_ = req.MultipartForm.RemoveAll()
		}
	}()

	cmd := applabreports.UploadCommand{
		Caller:   caller(req),
		UserID:   strings.TrimSpace(req.FormValue("userId")),
		FileName: middleware.SanitizeString(req.FormValue("fileName")),
	}
	if err := validUserID(cmd.UserID); err != nil {
		return err
	}

	file, header, err := req.FormFile("file")
	switch {
	case err == nil:
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			return apperr.Validation("unreadable_file", "Could not read uploaded file")
		}
		cmd.Data = data
		cmd.ContentType = header.Header.Get("Content-Type")
		if cmd.FileName == "" {
			cmd.FileName = middleware.SanitizeString(header.Filename)
		}
	case errors.Is(err, http.ErrMissingFile):
	default:
		return apperr.Validation("invalid_form", "Expected a multipart form upload")
	}

	res, err := r.reports.Upload(req.Context(), cmd)
	if err != nil {
		return err
	}

	respond.JSON(w, http.StatusOK, uploadResponse{
		Success:        true,
		AnalysisStatus: res.AnalysisStatus,
		LabReport: uploadedReport{
			ID:            res.Report.ID,
			FileName:      res.Report.FileName,
			AIAnalysis:    res.Report.AIAnalysis,
			UploadedAt:    res.Report.UploadedAt,
			RawTextLength: res.RawTextLength,
		},
	})
	return nil
}

// GET /reports?userId=
func (r *Router) handleList(w http.ResponseWriter, req *http.Request) error {
	userID := strings.TrimSpace(req.URL.Query().Get("userId"))
	if err := validUserID(userID); err != nil {
		return err
	}

	list, err := r.reports.List(req.Context(), caller(req), userID)
	if err != nil {
		return err
	}
	respond.JSON(w, http.StatusOK, map[string]any{"success": true, "labReports": list})
	return nil
}

// validUserID checks the format of a non-empty userId; a blank one is left
// to the service, which reports it as missing.
func validUserID(userID string) error {
	if userID == "" {
		return nil
	}
	if err := middleware.ValidateUserID(userID); err != nil {
		return apperr.Validation("invalid_user_id", err.Error())
	}
	return nil
}

func reportID(req *http.Request) (domain.ReportID, error) {
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateReportID(id); err != nil {
		return "", apperr.Validation("invalid_report_id", err.Error())
	}
	return domain.ReportID(id), nil
}

// GET /reports/{id}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	id, err := reportID(req)
	if err != nil {
		return err
	}
	rep, err := r.reports.Get(req.Context(), caller(req), id)
	if err != nil {
		return err
	}
	respond.JSON(w, http.StatusOK, map[string]any{"success": true, "labReport": rep})
	return nil
}

// DELETE /reports/{id}
func (r *Router) handleDelete(w http.ResponseWriter, req *http.Request) error {
	id, err := reportID(req)
	if err != nil {
		return err
	}
	if err := r.reports.Delete(req.Context(), caller(req), id); err != nil {
		return err
	}
	respond.JSON(w, http.StatusOK, map[string]any{"success": true})
	return nil
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, req *http.Request, v any) error {
	req.Body = http.MaxBytesReader(w, req.Body, 5<<20)
	if err := json.NewDecoder(req.Body).Decode(v); err != nil {
		return apperr.Validation("invalid_body", "Request body must be valid JSON")
	}
	return nil
}
