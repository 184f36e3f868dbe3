package ai

import "context"

// MIMETypePDF is the only attachment type the pipeline sends.
const MIMETypePDF = "application/pdf"

// Attachment is a binary document sent alongside a prompt.
type Attachment struct {
	MIMEType string
	Data     []byte
}

// PDFAttachment wraps raw PDF bytes.
func PDFAttachment(data []byte) Attachment {
	return Attachment{MIMEType: MIMETypePDF, Data: data}
}

// Client is a generative model. Implementations return the raw model text;
// sanitizing is the caller's job.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
	GenerateWithAttachment(ctx context.Context, prompt string, att Attachment) (string, error)
	// Name identifies provider and model in logs.
	Name() string
}
