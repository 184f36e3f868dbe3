package prompt

import (
	"fmt"
	"strings"

	"github.com/bryanwahyu/labsight/internal/domain/labreports"
)

var structuredTasks = append([]string{
	"summarize the overall lab report in simple, reassuring language.",
	"call out any abnormal values (high/low/critical) and what they might mean in broad terms.",
	"for each abnormal value, explain what it typically indicates (in general terms, not a specific diagnosis).",
	"suggest 3-5 concrete follow-up questions the patient could ask their clinician.",
	"use short paragraphs and plain bullet points for clarity.",
}, safetyRules...)

var pdfTasks = append([]string{
	"carefully read the entire attached lab report document, including any tables and reference ranges.",
	"summarize the overall picture in simple, reassuring language.",
	"call out any abnormal values (high/low/critical) and what they might mean in broad terms, in plain language.",
	"group results into categories (e.g., blood tests, metabolic panel, lipid profile) when possible for clarity.",
	"suggest 3-5 concrete follow-up questions the patient could ask their clinician.",
	"use short paragraphs and plain bullet points for clarity.",
}, safetyRules...)

// StructuredAnalysis builds the prompt for a text analysis. The raw text is
// always embedded; the task list, formatting contract and the rendered
// structured fields are appended only when data is non-nil.
func StructuredAnalysis(rawText string, data *labreports.StructuredData) string {
	var b strings.Builder
	b.WriteString(persona)
	b.WriteString(" Analyze the following lab report text and explain it to the patient.\n\n")
	b.WriteString("RAW LAB REPORT TEXT:\n")
	b.WriteString(rawText)
	b.WriteString("\n")

	if data == nil {
		return b.String()
	}

	b.WriteString("\n")
	b.WriteString(numbered("TASKS", structuredTasks))
	b.WriteString("\n")
	b.WriteString(formatting())
	b.WriteString("\n")
	b.WriteString(renderStructured(data))
	return b.String()
}

// PDFAnalysis builds the prompt sent together with a PDF attachment.
func PDFAnalysis(filename string) string {
	name := strings.TrimSpace(filename)
	if name == "" {
		name = defaultFileName
	}

	var b strings.Builder
	b.WriteString(persona)
	b.WriteString(" Analyze the lab report provided as the attached PDF document.\n\n")
	fmt.Fprintf(&b, "FILE NAME: %s\n\n", name)
	b.WriteString(numbered("TASKS", pdfTasks))
	b.WriteString("\n")
	b.WriteString(formatting())
	return b.String()
}

func renderStructured(d *labreports.StructuredData) string {
	var b strings.Builder
	b.WriteString("EXTRACTED STRUCTURED DATA:\n")
	fmt.Fprintf(&b, "- Test Type: %s\n", orNA(d.TestType))
	fmt.Fprintf(&b, "- Patient Name: %s\n", orNA(d.PatientName))
	fmt.Fprintf(&b, "- Date: %s\n", orNA(d.Date))
	b.WriteString("- Test Results:\n")
	if len(d.TestResults) == 0 {
		b.WriteString("  N/A\n")
		return b.String()
	}
	for _, r := range d.TestResults {
		value := strings.TrimSpace(r.Value + " " + r.Unit)
		fmt.Fprintf(&b, "  - %s: %s (Reference Range: %s, Status: %s)\n",
			r.Name, value, orNA(r.ReferenceRange), orNA(string(r.Status)))
	}
	if abnormal := d.Abnormal(); len(abnormal) > 0 {
		b.WriteString("- Flagged Results (explain each one):\n")
		for _, r := range abnormal {
			fmt.Fprintf(&b, "  - %s: %s\n", r.Name, r.Status)
		}
	}
	return b.String()
}
