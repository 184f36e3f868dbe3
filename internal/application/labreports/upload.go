package labreports

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/bryanwahyu/labsight/internal/apperr"
	"github.com/bryanwahyu/labsight/internal/application/session"
	"github.com/bryanwahyu/labsight/internal/domain/ai"
	"github.com/bryanwahyu/labsight/internal/domain/identity"
	domain "github.com/bryanwahyu/labsight/internal/domain/labreports"
	"github.com/bryanwahyu/labsight/internal/infra/ai/prompt"
)

// Command untuk upload satu PDF
type UploadCommand struct {
	Caller      *identity.Identity
	UserID      string
	FileName    string
	ContentType string
	Data        []byte
}

// UploadResult is what the caller gets back once the record is stored.
type UploadResult struct {
	Report         *domain.LabReport
	AnalysisStatus domain.AnalysisStatus
	RawTextLength  int
}

// Upload analyzes and stores one report. Validation failures return before
// any model, object-store or record-store call. A failed analysis does not
// fail the upload; a failed insert does.
func (s *Service) Upload(ctx context.Context, cmd UploadCommand) (UploadResult, error) {
	if err := s.validateUpload(cmd); err != nil {
		return UploadResult{}, err
	}

	id := s.NewID()
	log := s.Log.With(zap.String("report_id", string(id)), zap.String("user_id", cmd.UserID))

	outcome := s.analyzeDocument(ctx, log, cmd)

	extracted := s.extract(ctx, log, cmd.Data)
	if !outcome.Succeeded() && strings.TrimSpace(extracted) != "" {
		outcome = s.analyzeText(ctx, log, extracted)
	}

	rawText := extracted
	if strings.TrimSpace(rawText) == "" {
		rawText = domain.NoExtractableText
	}

	report := &domain.LabReport{
		ID:         id,
		UserID:     cmd.UserID,
		FileName:   cmd.FileName,
		RawText:    rawText,
		AIAnalysis: outcome.Text(),
		UploadedAt: s.Clock.Now(),
	}

	report.DocumentKey = s.archive(ctx, log, report, cmd.Data)

	if err := s.Repo.Insert(ctx, report); err != nil {
		log.Error("failed to store lab report", zap.Error(err))
		if report.DocumentKey != "" {
			if rmErr := s.Documents.RemoveDocument(ctx, report.DocumentKey); rmErr != nil {
				log.Warn("failed to remove orphaned document", zap.String("key", report.DocumentKey), zap.Error(rmErr))
			}
		}
		return UploadResult{}, apperr.Persistence("insert_failed", "Failed to save lab report", err)
	}

	s.Observer.ObserveUpload(string(outcome.Status()))
	log.Info("lab report stored",
		zap.String("analysis_status", string(outcome.Status())),
		zap.Bool("archived", report.DocumentKey != ""),
	)

	return UploadResult{
		Report:         report,
		AnalysisStatus: outcome.Status(),
		RawTextLength:  utf8.RuneCountInString(rawText),
	}, nil
}

func (s *Service) validateUpload(cmd UploadCommand) error {
	if strings.TrimSpace(cmd.UserID) == "" {
		return apperr.Validation("missing_user_id", "User ID is required")
	}
	if len(cmd.Data) == 0 {
		return apperr.Validation("missing_file", "No file provided")
	}
	if strings.TrimSpace(cmd.FileName) == "" {
		return apperr.Validation("missing_file_name", "File name is required")
	}
	if s.MaxUploadBytes > 0 && int64(len(cmd.Data)) > s.MaxUploadBytes {
		return apperr.Validation("file_too_large", fmt.Sprintf("File exceeds the %d MB limit", s.MaxUploadBytes>>20))
	}
	if !isPDF(cmd.ContentType, cmd.FileName) {
		return apperr.Validation("unsupported_type", "Only PDF files are supported")
	}
	return session.AuthorizeOwner(cmd.Caller, cmd.UserID)
}

func isPDF(contentType, fileName string) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return ct == ai.MIMETypePDF || strings.HasSuffix(strings.ToLower(strings.TrimSpace(fileName)), ".pdf")
}

func (s *Service) analyzeDocument(ctx context.Context, log *zap.Logger, cmd UploadCommand) domain.AnalysisOutcome {
	text, err := s.Analyzer.RunDocumentAnalysis(ctx, prompt.PDFAnalysis(cmd.FileName), ai.PDFAttachment(cmd.Data))
	if err != nil {
		log.Warn("document analysis failed", zap.Error(err))
		return domain.Failed(err)
	}
	return domain.Completed(text)
}

// analyzeText is the single fallback hop. It only runs after the document
// attempt has failed.
func (s *Service) analyzeText(ctx context.Context, log *zap.Logger, extracted string) domain.AnalysisOutcome {
	text, err := s.Analyzer.RunTextAnalysis(ctx, fallbackPrompt(extracted))
	if err != nil {
		log.Warn("text fallback analysis failed", zap.Error(err))
		return domain.Failed(err)
	}
	log.Info("text fallback analysis completed")
	return domain.Completed(text)
}

func fallbackPrompt(extracted string) string {
	if strings.TrimSpace(extracted) == "" {
		return prompt.GenericFallback
	}
	return prompt.StructuredAnalysis(extracted, nil)
}

func (s *Service) extract(ctx context.Context, log *zap.Logger, pdf []byte) string {
	text, err := s.Extractor.Extract(ctx, pdf)
	if err != nil {
		log.Warn("text extraction failed", zap.Error(err))
		return ""
	}
	return text
}

// archive stores the PDF and returns its key, or "" when there is no store
// or the put failed.
func (s *Service) archive(ctx context.Context, log *zap.Logger, r *domain.LabReport, data []byte) string {
	if s.Documents == nil {
		return ""
	}
	key := domain.DocumentKey(r.UserID, r.ID, r.FileName)
	if err := s.Documents.PutDocument(ctx, key, data, ai.MIMETypePDF); err != nil {
		log.Warn("failed to archive document", zap.String("key", key), zap.Error(err))
		return ""
	}
	return key
}
