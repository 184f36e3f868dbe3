package labreports

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/bryanwahyu/labsight/internal/apperr"
	"github.com/bryanwahyu/labsight/internal/application/session"
	"github.com/bryanwahyu/labsight/internal/domain/identity"
	domain "github.com/bryanwahyu/labsight/internal/domain/labreports"
	"github.com/bryanwahyu/labsight/internal/infra/ai/prompt"
)

var validate = validator.New()

// List returns the owner's reports, newest upload first. The caller must be
// the owner.
func (s *Service) List(ctx context.Context, caller *identity.Identity, userID string) ([]*domain.LabReport, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperr.Validation("missing_user_id", "User ID is required")
	}
	if err := session.AuthorizeOwner(caller, userID); err != nil {
		return nil, err
	}

	reports, err := s.Repo.ListByOwner(ctx, userID)
	if err != nil {
		s.Log.Error("failed to list lab reports", zap.String("user_id", userID), zap.Error(err))
		return nil, apperr.Persistence("list_failed", "Failed to fetch lab reports", err)
	}
	if reports == nil {
		reports = []*domain.LabReport{}
	}
	return reports, nil
}

// Get returns one of the caller's reports.
func (s *Service) Get(ctx context.Context, caller *identity.Identity, id domain.ReportID) (*domain.LabReport, error) {
	if caller == nil {
		return nil, apperr.Authentication("no_credential", "Unauthorized", nil)
	}
	if strings.TrimSpace(string(id)) == "" {
		return nil, apperr.Validation("missing_report_id", "Report ID is required")
	}

	r, err := s.Repo.Get(ctx, caller.ID, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperr.NotFound("report_not_found", "Lab report not found")
		}
		s.Log.Error("failed to load lab report", zap.String("report_id", string(id)), zap.Error(err))
		return nil, apperr.Persistence("get_failed", "Failed to fetch lab report", err)
	}
	return r, nil
}

// Delete removes one of the caller's reports and its archived PDF. The
// record goes first; a leftover object is only logged.
func (s *Service) Delete(ctx context.Context, caller *identity.Identity, id domain.ReportID) error {
	r, err := s.Get(ctx, caller, id)
	if err != nil {
		return err
	}

	if err := s.Repo.Delete(ctx, caller.ID, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return apperr.NotFound("report_not_found", "Lab report not found")
		}
		s.Log.Error("failed to delete lab report", zap.String("report_id", string(id)), zap.Error(err))
		return apperr.Persistence("delete_failed", "Failed to delete lab report", err)
	}

	if r.DocumentKey != "" && s.Documents != nil {
		if err := s.Documents.RemoveDocument(ctx, r.DocumentKey); err != nil {
			s.Log.Warn("failed to remove archived document", zap.String("key", r.DocumentKey), zap.Error(err))
		}
	}
	return nil
}

// AnalyzeText explains pasted lab values. Structured data is optional; when
// present it is validated before any model call.
func (s *Service) AnalyzeText(ctx context.Context, rawText string, data *domain.StructuredData) (string, error) {
	if strings.TrimSpace(rawText) == "" {
		return "", apperr.Validation("missing_raw_text", "Lab report text is required")
	}
	if data != nil {
		if err := validate.Struct(data); err != nil {
			return "", apperr.Validation("invalid_structured_data", describeValidation(err))
		}
	}
	return s.Analyzer.RunTextAnalysis(ctx, prompt.StructuredAnalysis(rawText, data))
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid structured data"
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Namespace()+" failed "+fe.Tag())
	}
	return "Invalid structured data: " + strings.Join(fields, "; ")
}
