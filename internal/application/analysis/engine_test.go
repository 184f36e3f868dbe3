package analysis

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/bryanwahyu/labsight/internal/apperr"
	"github.com/bryanwahyu/labsight/internal/domain/ai"
)

type fakeClient struct {
	text string
	err  error
	wait bool

	calls   int
	gotAtt  *ai.Attachment
	gotText string
}

func (f *fakeClient) respond(ctx context.Context) (string, error) {
	f.calls++
	if f.wait {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.text, f.err
}

func (f *fakeClient) Generate(ctx context.Context, prompt string) (string, error) {
	f.gotText = prompt
	return f.respond(ctx)
}

func (f *fakeClient) GenerateWithAttachment(ctx context.Context, prompt string, att ai.Attachment) (string, error) {
	f.gotText = prompt
	f.gotAtt = &att
	return f.respond(ctx)
}

func (f *fakeClient) Name() string { return "fake:model" }

type recordingObserver struct {
	events []string
}

func (r *recordingObserver) ObserveModelCall(kind, outcome string, _ time.Duration) {
	r.events = append(r.events, kind+":"+outcome)
}

func TestRunTextAnalysis_SanitizesOutput(t *testing.T) {
	client := &fakeClient{text: "## Summary\n**LDL** is *slightly* high.\n\n\n\n- ask about diet"}
	obs := &recordingObserver{}
	e := NewEngine(client, WithObserver(obs))

	out, err := e.RunTextAnalysis(context.Background(), "prompt")
	require.NoError(t, err)
	require.Equal(t, "Summary\nLDL is slightly high.\n\n• ask about diet", out)
	require.Equal(t, "prompt", client.gotText)
	require.Equal(t, 1, client.calls)
	require.Equal(t, []string{"text:success"}, obs.events)
}

func TestRunDocumentAnalysis_PassesAttachment(t *testing.T) {
	client := &fakeClient{text: "Hello, your results look good."}
	e := NewEngine(client)

	pdf := []byte("%PDF-1.7")
	out, err := e.RunDocumentAnalysis(context.Background(), "read", ai.PDFAttachment(pdf))
	require.NoError(t, err)
	require.Equal(t, "Hello, your results look good.", out)
	require.NotNil(t, client.gotAtt)
	require.Equal(t, ai.MIMETypePDF, client.gotAtt.MIMEType)
	require.Equal(t, pdf, client.gotAtt.Data)
}

func TestRun_Failures(t *testing.T) {
	tests := []struct {
		name    string
		client  ai.Client
		reason  string
		quota   bool
		outcome string
	}{
		{name: "nil client", client: nil, reason: "model_unavailable"},
		{name: "model error", client: &fakeClient{err: errors.New("boom")}, reason: "model_error", outcome: "text:error"},
		{name: "quota", client: &fakeClient{err: fmt.Errorf("x: %w", ai.ErrQuotaExceeded)}, reason: "quota_exceeded", quota: true, outcome: "text:quota"},
		{name: "empty", client: &fakeClient{text: "  **  **  "}, reason: "empty_response", outcome: "text:empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs := &recordingObserver{}
			var e *Engine
			if tt.client == nil {
				e = NewEngine(nil, WithObserver(obs))
			} else {
				e = NewEngine(tt.client, WithObserver(obs))
			}

			_, err := e.RunTextAnalysis(context.Background(), "p")
			require.Error(t, err)
			require.True(t, apperr.Is(err, apperr.KindAnalysis))

			var appErr *apperr.Error
			require.ErrorAs(t, err, &appErr)
			require.Equal(t, tt.reason, appErr.Reason)
			require.Equal(t, tt.quota, errors.Is(err, ai.ErrQuotaExceeded))

			if tt.outcome == "" {
				require.Empty(t, obs.events)
			} else {
				require.Equal(t, []string{tt.outcome}, obs.events)
			}
		})
	}
}

func TestRunDocumentAnalysis_Deadline(t *testing.T) {
	client := &fakeClient{wait: true}
	e := NewEngine(client, WithTimeouts(20*time.Millisecond, time.Second))

	start := time.Now()
	_, err := e.RunDocumentAnalysis(context.Background(), "p", ai.PDFAttachment([]byte("x")))
	require.Error(t, err)
	require.Less(t, time.Since(start), time.Second)

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "deadline_exceeded", appErr.Reason)
	require.Equal(t, 1, client.calls)
}

func TestRun_LogsModelName(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	e := NewEngine(&fakeClient{err: errors.New("boom")}, WithLogger(zap.New(core)))

	_, err := e.RunTextAnalysis(context.Background(), "prompt")
	require.Error(t, err)

	entries := logs.FilterMessage("model call failed").All()
	require.Len(t, entries, 1)
	require.Equal(t, "fake:model", entries[0].ContextMap()["model"])
	require.Equal(t, KindText, entries[0].ContextMap()["kind"])
}
