package labreports

// AnalysisStatus enum
type AnalysisStatus string

const (
	AnalysisCompleted AnalysisStatus = "completed"
	AnalysisFailed    AnalysisStatus = "failed"
)

// AnalysisOutcome is the result of one explanation attempt. Build it with
// Completed or Failed; a completed outcome always has text, a failed one
// always has a cause.
type AnalysisOutcome struct {
	status AnalysisStatus
	text   string
	cause  error
}

func Completed(text string) AnalysisOutcome {
	return AnalysisOutcome{status: AnalysisCompleted, text: text}
}

func Failed(cause error) AnalysisOutcome {
	return AnalysisOutcome{status: AnalysisFailed, cause: cause}
}

func (o AnalysisOutcome) Status() AnalysisStatus { return o.status }

func (o AnalysisOutcome) Cause() error { return o.cause }

func (o AnalysisOutcome) Succeeded() bool { return o.status == AnalysisCompleted }

// Text returns the analysis to store: nil unless the outcome completed.
func (o AnalysisOutcome) Text() *string {
	if o.status != AnalysisCompleted {
		return nil
	}
	t := o.text
	return &t
}
