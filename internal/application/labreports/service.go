package labreports

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bryanwahyu/labsight/internal/application"
	"github.com/bryanwahyu/labsight/internal/domain/ai"
	domain "github.com/bryanwahyu/labsight/internal/domain/labreports"
)

// Analyzer is the part of analysis.Engine the use-cases need.
type Analyzer interface {
	RunTextAnalysis(ctx context.Context, prompt string) (string, error)
	RunDocumentAnalysis(ctx context.Context, prompt string, att ai.Attachment) (string, error)
}

// UploadObserver counts finished uploads by analysis status.
type UploadObserver interface {
	ObserveUpload(status string)
}

type nopUploadObserver struct{}

func (nopUploadObserver) ObserveUpload(string) {}

// noText is the extractor used when none is configured. It never finds text,
// which keeps the text fallback dormant.
type noText struct{}

func (noText) Extract(context.Context, []byte) (string, error) { return "", nil }

// Service implements use-cases untuk lab report: upload, list, get, delete,
// chat and pasted-values analysis.
// Service is safe for concurrent use.
type Service struct {
	Repo      domain.Repository
	Documents domain.DocumentStore // optional
	Extractor domain.TextExtractor
	Analyzer  Analyzer
	Clock     application.Clock
	NewID     func() domain.ReportID
	Log       *zap.Logger
	Observer  UploadObserver

	// MaxUploadBytes rejects larger files; zero means no limit.
	MaxUploadBytes int64
	// ChatWindow caps grounding text in chat prompts; zero means the default.
	ChatWindow int
}

// NewService validates required deps and fills defaults for the rest.
func NewService(repo domain.Repository, analyzer Analyzer, opts ...func(*Service)) (*Service, error) {
	if repo == nil {
		return nil, errors.New("lab report repository is required")
	}
	if analyzer == nil {
		return nil, errors.New("analyzer is required")
	}
	s := &Service{
		Repo:      repo,
		Analyzer:  analyzer,
		Extractor: noText{},
		Clock:     application.SystemClock{},
		NewID:     func() domain.ReportID { return domain.ReportID(uuid.NewString()) },
		Log:       zap.NewNop(),
		Observer:  nopUploadObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func WithDocumentStore(d domain.DocumentStore) func(*Service) {
	return func(s *Service) { s.Documents = d }
}

func WithExtractor(x domain.TextExtractor) func(*Service) {
	return func(s *Service) {
		if x != nil {
			s.Extractor = x
		}
	}
}

func WithClock(c application.Clock) func(*Service) {
	return func(s *Service) {
		if c != nil {
			s.Clock = c
		}
	}
}

func WithIDGenerator(f func() domain.ReportID) func(*Service) {
	return func(s *Service) {
		if f != nil {
			s.NewID = f
		}
	}
}

func WithLogger(l *zap.Logger) func(*Service) {
	return func(s *Service) {
		if l != nil {
			s.Log = l
		}
	}
}

func WithUploadObserver(o UploadObserver) func(*Service) {
	return func(s *Service) {
		if o != nil {
			s.Observer = o
		}
	}
}

func WithMaxUploadBytes(n int64) func(*Service) {
	return func(s *Service) { s.MaxUploadBytes = n }
}

func WithChatWindow(n int) func(*Service) {
	return func(s *Service) { s.ChatWindow = n }
}
