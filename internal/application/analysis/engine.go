package analysis

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bryanwahyu/labsight/internal/apperr"
	"github.com/bryanwahyu/labsight/internal/domain/ai"
	"github.com/bryanwahyu/labsight/internal/infra/ai/sanitize"
)

const (
	DefaultDocumentTimeout = 90 * time.Second
	DefaultTextTimeout     = 45 * time.Second

	KindDocument = "document"
	KindText     = "text"

	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeTimeout = "timeout"
	OutcomeQuota   = "quota"
	OutcomeEmpty   = "empty"
)

// Observer receives one event per model call.
type Observer interface {
	ObserveModelCall(kind, outcome string, d time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveModelCall(string, string, time.Duration) {}

// Engine runs one model call per request and returns sanitized text.
// Engine is safe for concurrent use.
type Engine struct {
	client      ai.Client
	docTimeout  time.Duration
	textTimeout time.Duration
	log         *zap.Logger
	obs         Observer
}

type Option func(*Engine)

func WithTimeouts(document, text time.Duration) Option {
	return func(e *Engine) {
		if document > 0 {
			e.docTimeout = document
		}
		if text > 0 {
			e.textTimeout = text
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.obs = o
		}
	}
}

// NewEngine accepts a nil client: the process still serves reads, and every
// analysis call fails with an AnalysisError.
func NewEngine(client ai.Client, opts ...Option) *Engine {
	e := &Engine{
		client:      client,
		docTimeout:  DefaultDocumentTimeout,
		textTimeout: DefaultTextTimeout,
		log:         zap.NewNop(),
		obs:         nopObserver{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) RunTextAnalysis(ctx context.Context, prompt string) (string, error) {
	return e.run(ctx, KindText, e.textTimeout, func(ctx context.Context) (string, error) {
		return e.client.Generate(ctx, prompt)
	})
}

func (e *Engine) RunDocumentAnalysis(ctx context.Context, prompt string, att ai.Attachment) (string, error) {
	return e.run(ctx, KindDocument, e.docTimeout, func(ctx context.Context) (string, error) {
		return e.client.GenerateWithAttachment(ctx, prompt, att)
	})
}

func (e *Engine) run(ctx context.Context, kind string, timeout time.Duration, call func(context.Context) (string, error)) (string, error) {
	if e.client == nil {
		return "", apperr.Analysis("model_unavailable", "AI analysis is not available", errors.New("model client not initialized"))
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	raw, err := call(ctx)
	elapsed := time.Since(start)

	if err != nil {
		outcome, reason, msg := OutcomeError, "model_error", "AI analysis failed"
		switch {
		case errors.Is(err, ai.ErrQuotaExceeded):
			outcome, reason, msg = OutcomeQuota, "quota_exceeded", "AI service quota exceeded, please try again later"
		case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
			outcome, reason, msg = OutcomeTimeout, "deadline_exceeded", "AI analysis timed out"
		}
		e.obs.ObserveModelCall(kind, outcome, elapsed)
		e.log.Warn("model call failed",
			zap.String("model", e.client.Name()),
			zap.String("kind", kind),
			zap.String("outcome", outcome),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		return "", apperr.Analysis(reason, msg, err)
	}

	text := sanitize.Clean(raw)
	if strings.TrimSpace(text) == "" {
		e.obs.ObserveModelCall(kind, OutcomeEmpty, elapsed)
		e.log.Warn("model returned empty text", zap.String("model", e.client.Name()), zap.String("kind", kind), zap.Duration("elapsed", elapsed))
		return "", apperr.Analysis("empty_response", "AI analysis returned no text", errors.New("empty model response"))
	}

	e.obs.ObserveModelCall(kind, OutcomeSuccess, elapsed)
	e.log.Debug("model call completed",
		zap.String("model", e.client.Name()),
		zap.String("kind", kind),
		zap.Duration("elapsed", elapsed),
		zap.Int("chars", len(text)),
	)
	return text, nil
}
