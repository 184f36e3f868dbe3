package labreports

import (
	"context"
	"strings"

	"github.com/bryanwahyu/labsight/internal/apperr"
	"github.com/bryanwahyu/labsight/internal/domain/chat"
	"github.com/bryanwahyu/labsight/internal/domain/identity"
	domain "github.com/bryanwahyu/labsight/internal/domain/labreports"
	"github.com/bryanwahyu/labsight/internal/infra/ai/prompt"
)

// Answer replies to one question grounded in rawText. Model failures are
// returned, never replaced with a canned reply.
func (s *Service) Answer(ctx context.Context, rawText, priorAnalysis, question string) (chat.Turn, error) {
	if strings.TrimSpace(rawText) == "" {
		return chat.Turn{}, apperr.Validation("missing_grounding_text", "Lab report text is required to chat about this report")
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return chat.Turn{}, apperr.Validation("missing_question", "Question is required")
	}

	window := s.ChatWindow
	if window <= 0 {
		window = prompt.DefaultChatWindow
	}

	text, err := s.Analyzer.RunTextAnalysis(ctx, prompt.ChatWithWindow(rawText, priorAnalysis, question, window))
	if err != nil {
		return chat.Turn{}, err
	}
	return chat.Turn{Role: chat.RoleAssistant, Content: text, Timestamp: s.Clock.Now()}, nil
}

// AnswerForReport grounds the answer in one of the caller's stored reports.
func (s *Service) AnswerForReport(ctx context.Context, caller *identity.Identity, id domain.ReportID, question string) (chat.Turn, error) {
	r, err := s.Get(ctx, caller, id)
	if err != nil {
		return chat.Turn{}, err
	}
	return s.Answer(ctx, r.GroundingText(), r.PriorAnalysis(), question)
}
