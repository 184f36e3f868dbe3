package mysql

import (
	"database/sql"
	"encoding/json"
	"strings"

	domain "github.com/bryanwahyu/labsight/internal/domain/labreports"
)

// stringOrDash returns "-" when the input is empty/whitespace
func stringOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// encodeStructured stores structured data as a JSON column; nil stays NULL.
func encodeStructured(d *domain.StructuredData) (sql.NullString, error) {
	if d == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(d)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func decodeStructured(ns sql.NullString) (*domain.StructuredData, error) {
	if !ns.Valid || strings.TrimSpace(ns.String) == "" || ns.String == "null" {
		return nil, nil
	}
	var d domain.StructuredData
	if err := json.Unmarshal([]byte(ns.String), &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
