package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"github.com/bryanwahyu/labsight/internal/domain/ai"
)

const DefaultModel = "gemini-2.5-flash"

// generator is the slice of *genai.Models the client needs.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client is an ai.Client backed by the Gemini API. It reads PDF
// attachments natively.
type Client struct {
	models generator
	model  string
}

// NewClient creates the process-wide Gemini client. It fails when the key
// is missing; callers treat that as a fatal configuration error.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &Client{models: client.Models, model: model}, nil
}

func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, genai.Text(prompt))
}

// GenerateWithAttachment sends the prompt and the document as two parts of
// one user turn. The SDK base64-encodes the bytes on the wire.
func (c *Client) GenerateWithAttachment(ctx context.Context, prompt string, att ai.Attachment) (string, error) {
	parts := []*genai.Part{
		genai.NewPartFromText(prompt),
		genai.NewPartFromBytes(att.Data, att.MIMEType),
	}
	return c.generate(ctx, []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)})
}

func (c *Client) generate(ctx context.Context, contents []*genai.Content) (string, error) {
	resp, err := c.models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		if isQuota(err) {
			return "", fmt.Errorf("GenAI generate failed: %w: %v", ai.ErrQuotaExceeded, err)
		}
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("GenAI returned no candidates")
	}
	return resp.Text(), nil
}

func isQuota(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests
	}
	var apiErrPtr *genai.APIError
	return errors.As(err, &apiErrPtr) && apiErrPtr.Code == http.StatusTooManyRequests
}

// Name returns the engine name.
func (c *Client) Name() string {
	return fmt.Sprintf("genai:%s", c.model)
}
