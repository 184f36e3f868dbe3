package labreports

import (
	"context"
	"errors"
)

// Repository port (persistence of lab reports). Every method is scoped to
// one owner; rows of other owners are never visible.
type Repository interface {
	Insert(ctx context.Context, r *LabReport) error
	ListByOwner(ctx context.Context, userID string) ([]*LabReport, error)
	Get(ctx context.Context, userID string, id ReportID) (*LabReport, error)
	Delete(ctx context.Context, userID string, id ReportID) error
}

// DocumentStore port (archive for the uploaded PDF bytes)
type DocumentStore interface {
	PutDocument(ctx context.Context, key string, data []byte, contentType string) error
	RemoveDocument(ctx context.Context, key string) error
}

// TextExtractor turns a PDF into plain text. No extractor ships with the
// service; the upload pipeline treats "" as "nothing extracted".
type TextExtractor interface {
	Extract(ctx context.Context, pdf []byte) (string, error)
}

// ErrNotFound is returned by Repository.Get and Delete when the owner has
// no report with that id.
var ErrNotFound = errors.New("lab report not found")
