package prompt

import (
	"strings"
)

var groundingRules = append([]string{
	"you have the complete raw text of the lab report available above. refer to it directly to ensure accuracy.",
	"if an analysis summary is provided, you can reference it, but always verify details against the raw text.",
	"DO NOT say you don't have access to the lab report data - you have the complete raw text available.",
	"reference specific values, test names, reference ranges and findings from the raw text when answering.",
	"use a friendly and reassuring tone.",
}, safetyRules...)

// Chat builds a grounded follow-up prompt with the default window.
func Chat(rawText, priorAnalysis, question string) string {
	return ChatWithWindow(rawText, priorAnalysis, question, DefaultChatWindow)
}

// ChatWithWindow embeds at most window characters of rawText; when rawText
// is longer, TruncationNotice follows the cut. window <= 0 means the default.
func ChatWithWindow(rawText, priorAnalysis, question string, window int) string {
	var b strings.Builder
	b.WriteString("You are a helpful medical AI assistant. You have access to the COMPLETE RAW TEXT from the user's lab report PDF. ")
	b.WriteString("Use the provided lab report text and analysis to answer the patient's question accurately and clearly.\n\n")
	b.WriteString("=== RAW LAB REPORT TEXT (COMPLETE) ===\n")
	b.WriteString(Window(rawText, window))
	b.WriteString("\n=== END OF LAB REPORT TEXT ===\n")

	if strings.TrimSpace(priorAnalysis) != "" {
		b.WriteString("\n=== PREVIOUS AI ANALYSIS SUMMARY ===\n")
		b.WriteString(priorAnalysis)
		b.WriteString("\n=== END OF ANALYSIS ===\n")
	}

	b.WriteString("\nThe patient is now asking a follow-up question about their lab results.\n\n")
	b.WriteString("PATIENT'S QUESTION:\n")
	b.WriteString(question)
	b.WriteString("\n\n")
	b.WriteString(numbered("CRITICAL INSTRUCTIONS", groundingRules))
	b.WriteString("\n")
	b.WriteString(formatting())
	return b.String()
}

// Window returns the first window characters of text, followed by
// TruncationNotice when anything was cut.
func Window(text string, window int) string {
	if window <= 0 {
		window = DefaultChatWindow
	}
	runes := []rune(text)
	if len(runes) <= window {
		return text
	}
	return string(runes[:window]) + TruncationNotice
}
