package labreports

import (
	"path"
	"regexp"
	"strings"
	"time"
)

// ReportID identifier type
type ReportID string

// NoExtractableText is stored as raw text when nothing was extracted from the PDF.
const NoExtractableText = "No extractable text found"

// ResultStatus enum
type ResultStatus string

const (
	ResultNormal   ResultStatus = "normal"
	ResultHigh     ResultStatus = "high"
	ResultLow      ResultStatus = "low"
	ResultCritical ResultStatus = "critical"
)

// TestResult is one measured value on a report.
type TestResult struct {
	Name           string       `json:"name" validate:"required"`
	Value          string       `json:"value" validate:"required"`
	Unit           string       `json:"unit,omitempty"`
	ReferenceRange string       `json:"referenceRange,omitempty"`
	Status         ResultStatus `json:"status,omitempty" validate:"omitempty,oneof=normal high low critical"`
}

// StructuredData is the optional parsed form of a report.
type StructuredData struct {
	PatientName string       `json:"patientName,omitempty"`
	TestType    string       `json:"testType,omitempty"`
	Date        string       `json:"date,omitempty"`
	TestResults []TestResult `json:"testResults,omitempty" validate:"dive"`
}

// Abnormal returns the results whose status is anything but normal.
func (s *StructuredData) Abnormal() []TestResult {
	if s == nil {
		return nil
	}
	var out []TestResult
	for _, r := range s.TestResults {
		if r.Status != "" && r.Status != ResultNormal {
			out = append(out, r)
		}
	}
	return out
}

// LabReport is the persisted record of one uploaded report.
type LabReport struct {
	ID             ReportID        `json:"id"`
	UserID         string          `json:"user_id"`
	FileName       string          `json:"file_name"`
	RawText        string          `json:"raw_text"`
	StructuredData *StructuredData `json:"structured_data"`
	AIAnalysis     *string         `json:"ai_analysis"`
	DocumentKey    string          `json:"document_key,omitempty"`
	UploadedAt     time.Time       `json:"uploaded_at"`
}

// GroundingText returns the raw text usable for chat, or "" when the
// record only carries the extraction placeholder.
func (r *LabReport) GroundingText() string {
	text := strings.TrimSpace(r.RawText)
	if text == NoExtractableText {
		return ""
	}
	return text
}

// PriorAnalysis returns the stored analysis or "".
func (r *LabReport) PriorAnalysis() string {
	if r.AIAnalysis == nil {
		return ""
	}
	return *r.AIAnalysis
}

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// DocumentKey is the object key of the archived PDF:
// <userId>/<reportId>/<file name>, with the file name reduced to a safe
// base name.
func DocumentKey(userID string, id ReportID, fileName string) string {
	name := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	name = strings.Trim(unsafeKeyChars.ReplaceAllString(name, "_"), "._")
	if name == "" {
		name = "report.pdf"
	}
	return userID + "/" + string(id) + "/" + name
}
