package prompt

import (
	"fmt"
	"strings"
)

const (
	persona = "You are a medical AI assistant."

	// DefaultChatWindow caps how much raw report text goes into a chat prompt.
	DefaultChatWindow = 50000

	// TruncationNotice follows the raw text when it was cut at the window.
	TruncationNotice = "\n\n[... text truncated for length ...]"

	// GenericFallback is used when the text fallback has nothing to work with.
	GenericFallback = "This is a medical lab report. Provide a general explanation of lab results."

	defaultFileName = "lab report pdf"
)

// safetyRules close every task list: no treatment advice, always defer to a clinician.
var safetyRules = []string{
	"do not give any treatment plans, prescriptions, or specific medical advice.",
	"always remind the patient to consult with their healthcare provider for personalized interpretation and advice.",
}

// formattingContract keeps the output renderable verbatim.
var formattingContract = []string{
	"do not use markdown formatting (no asterisks, hashtags or backticks).",
	"use plain text only.",
	"use line breaks and plain bullet points for readability.",
	"keep formatting clean and readable.",
	"start with a friendly greeting.",
	"end with a reminder to consult their healthcare provider.",
	"always address the patient in a friendly and reassuring tone.",
}

func numbered(title string, items []string) string {
	var b strings.Builder
	b.WriteString(title)
	b.WriteString(":\n")
	for i, it := range items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, it)
	}
	return b.String()
}

func bulleted(title string, items []string) string {
	var b strings.Builder
	b.WriteString(title)
	b.WriteString(":\n")
	for _, it := range items {
		b.WriteString("- ")
		b.WriteString(it)
		b.WriteString("\n")
	}
	return b.String()
}

func formatting() string {
	return bulleted("IMPORTANT FORMATTING", formattingContract)
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
