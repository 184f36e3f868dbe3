package labreports

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bryanwahyu/labsight/internal/application"
	"github.com/bryanwahyu/labsight/internal/domain/ai"
	domain "github.com/bryanwahyu/labsight/internal/domain/labreports"
)

var fixedNow = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

type fakeRepo struct {
	mu      sync.Mutex
	reports map[domain.ReportID]*domain.LabReport

	insertErr error
	listErr   error
	getErr    error
	deleteErr error

	inserts int
	deletes int
}

func newFakeRepo(seed ...*domain.LabReport) *fakeRepo {
	r := &fakeRepo{reports: map[domain.ReportID]*domain.LabReport{}}
	for _, s := range seed {
		r.reports[s.ID] = s
	}
	return r
}

func (f *fakeRepo) Insert(_ context.Context, r *domain.LabReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserts++
	if f.insertErr != nil {
		return f.insertErr
	}
	cp := *r
	f.reports[r.ID] = &cp
	return nil
}

func (f *fakeRepo) ListByOwner(_ context.Context, userID string) ([]*domain.LabReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*domain.LabReport
	for _, r := range f.reports {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) })
	return out, nil
}

func (f *fakeRepo) Get(_ context.Context, userID string, id domain.ReportID) (*domain.LabReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	r, ok := f.reports[id]
	if !ok || r.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return r, nil
}

func (f *fakeRepo) Delete(_ context.Context, userID string, id domain.ReportID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	r, ok := f.reports[id]
	if !ok || r.UserID != userID {
		return domain.ErrNotFound
	}
	delete(f.reports, id)
	return nil
}

type fakeAnalyzer struct {
	docText  string
	docErr   error
	textText string
	textErr  error

	calls      []string
	textPrompt string
	docPrompt  string
}

func (f *fakeAnalyzer) RunTextAnalysis(_ context.Context, prompt string) (string, error) {
	f.calls = append(f.calls, "text")
	f.textPrompt = prompt
	return f.textText, f.textErr
}

func (f *fakeAnalyzer) RunDocumentAnalysis(_ context.Context, prompt string, _ ai.Attachment) (string, error) {
	f.calls = append(f.calls, "document")
	f.docPrompt = prompt
	return f.docText, f.docErr
}

type fakeDocs struct {
	putErr    error
	removeErr error

	objects map[string][]byte
	removed []string
}

func newFakeDocs() *fakeDocs { return &fakeDocs{objects: map[string][]byte{}} }

func (f *fakeDocs) PutDocument(_ context.Context, key string, data []byte, _ string) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.objects[key] = data
	return nil
}

func (f *fakeDocs) RemoveDocument(_ context.Context, key string) error {
	f.removed = append(f.removed, key)
	if f.removeErr != nil {
		return f.removeErr
	}
	delete(f.objects, key)
	return nil
}

type fakeExtractor struct {
	text string
	err  error
}

func (f fakeExtractor) Extract(context.Context, []byte) (string, error) { return f.text, f.err }

type countingObserver struct{ statuses []string }

func (c *countingObserver) ObserveUpload(status string) { c.statuses = append(c.statuses, status) }

func newTestService(repo *fakeRepo, an *fakeAnalyzer, opts ...func(*Service)) *Service {
	base := []func(*Service){
		WithClock(application.FixedClock{T: fixedNow}),
		WithIDGenerator(func() domain.ReportID { return "report-1" }),
	}
	s, err := NewService(repo, an, append(base, opts...)...)
	if err != nil {
		panic(err)
	}
	return s
}
