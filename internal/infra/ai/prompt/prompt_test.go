package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/labsight/internal/domain/labreports"
)

func TestStructuredAnalysis_RawTextOnly(t *testing.T) {
	p := StructuredAnalysis("Hemoglobin 14.2 g/dL", nil)
	require.Contains(t, p, "RAW LAB REPORT TEXT:\nHemoglobin 14.2 g/dL")
	require.NotContains(t, p, "TASKS:")
	require.NotContains(t, p, "IMPORTANT FORMATTING:")
}

func TestStructuredAnalysis_WithData(t *testing.T) {
	data := &labreports.StructuredData{
		TestType: "Lipid Panel",
		Date:     "2023-12-10",
		TestResults: []labreports.TestResult{
			{Name: "LDL Cholesterol", Value: "125", Unit: "mg/dL", ReferenceRange: "< 100", Status: labreports.ResultHigh},
			{Name: "HDL Cholesterol", Value: "55"},
		},
	}
	p := StructuredAnalysis("raw", data)

	require.Contains(t, p, "RAW LAB REPORT TEXT:\nraw")
	require.Contains(t, p, "TASKS:")
	require.Contains(t, p, "suggest 3-5 concrete follow-up questions")
	require.Contains(t, p, "call out any abnormal values")
	require.Contains(t, p, "do not use markdown formatting")
	require.Contains(t, p, "start with a friendly greeting.")
	require.Contains(t, p, "end with a reminder to consult their healthcare provider.")
	require.Contains(t, p, "- Test Type: Lipid Panel")
	require.Contains(t, p, "- Patient Name: N/A")
	require.Contains(t, p, "  - LDL Cholesterol: 125 mg/dL (Reference Range: < 100, Status: high)")
	require.Contains(t, p, "  - HDL Cholesterol: 55 (Reference Range: N/A, Status: N/A)")
	require.Contains(t, p, "- Flagged Results (explain each one):\n  - LDL Cholesterol: high\n")
	require.NotContains(t, p, "  - HDL Cholesterol: N/A\n")
}

func TestStructuredAnalysis_EmptyResults(t *testing.T) {
	p := StructuredAnalysis("raw", &labreports.StructuredData{})
	require.Contains(t, p, "- Test Results:\n  N/A")
	require.NotContains(t, p, "Flagged Results")
}

func TestPDFAnalysis(t *testing.T) {
	p := PDFAnalysis("cbc-jan.pdf")
	require.Contains(t, p, "FILE NAME: cbc-jan.pdf")
	require.Contains(t, p, "attached")
	require.Contains(t, p, "TASKS:")
	require.Contains(t, p, "IMPORTANT FORMATTING:")
	require.Contains(t, p, "consult with their healthcare provider")

	require.Contains(t, PDFAnalysis("  "), "FILE NAME: lab report pdf")
}

func TestChat_UnderWindowEmbedsVerbatim(t *testing.T) {
	raw := strings.Repeat("a", 100)
	p := ChatWithWindow(raw, "", "What is my LDL?", 100)

	require.Contains(t, p, "=== RAW LAB REPORT TEXT (COMPLETE) ===\n"+raw+"\n=== END OF LAB REPORT TEXT ===")
	require.NotContains(t, p, TruncationNotice)
	require.NotContains(t, p, "PREVIOUS AI ANALYSIS SUMMARY")
	require.Contains(t, p, "PATIENT'S QUESTION:\nWhat is my LDL?")
	require.Contains(t, p, "DO NOT say you don't have access to the lab report data")
	require.Contains(t, p, "do not give any treatment plans")
}

func TestChat_OverWindowTruncates(t *testing.T) {
	raw := strings.Repeat("a", 100) + strings.Repeat("b", 50)
	p := ChatWithWindow(raw, "", "q", 100)

	require.Contains(t, p, "=== RAW LAB REPORT TEXT (COMPLETE) ===\n"+strings.Repeat("a", 100)+TruncationNotice+"\n")
	require.NotContains(t, p, "bbbb")
	require.Equal(t, 1, strings.Count(p, TruncationNotice))
}

func TestChat_DefaultWindow(t *testing.T) {
	raw := strings.Repeat("x", DefaultChatWindow+1)
	p := Chat(raw, "", "q")
	require.Contains(t, p, strings.Repeat("x", DefaultChatWindow)+TruncationNotice)
	require.NotContains(t, p, strings.Repeat("x", DefaultChatWindow+1))

	exact := strings.Repeat("y", DefaultChatWindow)
	require.NotContains(t, Chat(exact, "", "q"), TruncationNotice)
}

func TestChat_PriorAnalysis(t *testing.T) {
	p := Chat("raw", "Your LDL is slightly high.", "q")
	require.Contains(t, p, "=== PREVIOUS AI ANALYSIS SUMMARY ===\nYour LDL is slightly high.\n=== END OF ANALYSIS ===")

	require.NotContains(t, Chat("raw", "   ", "q"), "PREVIOUS AI ANALYSIS SUMMARY")
}

func TestWindow_CountsCharactersNotBytes(t *testing.T) {
	text := "µµµµ"
	require.Equal(t, "µµ"+TruncationNotice, Window(text, 2))
	require.Equal(t, text, Window(text, 4))
	require.Equal(t, text, Window(text, 0))
}
