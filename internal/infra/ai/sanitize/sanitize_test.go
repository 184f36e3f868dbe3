package sanitize

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClean(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain text untouched", "Hello, here are your results...", "Hello, here are your results..."},
		{"headings", "# Title\n\n### Details", "Title\n\nDetails"},
		{"bold", "Your **LDL** is high", "Your LDL is high"},
		{"bold underscore", "Your __LDL__ is high", "Your LDL is high"},
		{"italic", "Your *LDL* is high", "Your LDL is high"},
		{"italic underscore", "Your _LDL_ is high", "Your LDL is high"},
		{"identifier underscores kept", "see total_cholesterol value", "see total_cholesterol value"},
		{"strike", "~~old~~ new", "old new"},
		{"inline code", "Use `LDL-C` here", "Use LDL-C here"},
		{"code fence", "```\nHemoglobin 14.2\n```", "Hemoglobin 14.2"},
		{"block quote", "> note this", "note this"},
		{"horizontal rules", "above\n---\nbelow\n***\nend", "above\n\nbelow\n\nend"},
		{"unordered lists", "- one\n* two\n+ three", "• one\n• two\n• three"},
		{"ordered lists", "1. first\n2) second", "• first\n• second"},
		{"links keep text", "Visit [the lab](https://lab.example) now", "Visit the lab now"},
		{"images dropped", "![chart](chart.png)Result", "Result"},
		{"tags stripped", "<b>High</b> LDL<br/>", "High LDL"},
		{"comparison kept", "LDL < 100 mg/dL and HDL >40", "LDL < 100 mg/dL and HDL >40"},
		{"space runs", "a    b\t\tc", "a b c"},
		{"blank lines", "a\n\n\n\n\nb", "a\n\nb"},
		{"blank lines with spaces", "a\n  \n \n\nb", "a\n\nb"},
		{"crlf", "a\r\n\r\n\r\n\r\nb", "a\n\nb"},
		{"trim", "  padded \n", "padded"},
		{"heading inside bold", "**# text**", "text"},
		{"bold italic", "***both***", "both"},
		{"quoted rule", "> ---\ntext", "text"},
		{"crlf joined by tag", "a\r<br>\nb", "a\nb"},
		{"deep emphasis", strings.Repeat("*", 60) + "a" + strings.Repeat("*", 60), "a"},
		{"deep strike", strings.Repeat("~~", 20) + "a" + strings.Repeat("~~", 20), "a"},
		{"nested links", nest("x", 20, "[", "](u)"), "x"},
		{"nested tags", nest("", 20, "<b", ">"), ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Clean(tc.in))
		})
	}
}

func TestClean_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"# Hello\n\n**Summary**: your *results* look good.\n\n- item\n- item two\n\n---\n\n> quote",
		"**# text**",
		"1. 2. 3. nested numbers",
		"- - - dashes",
		"> > > nested quote",
		"* * *",
		"_a_ _b_ _c_",
		"2 * 3 * 4",
		"<div><p>**bold** in html</p></div>",
		"[**link**](http://x) and ![img](y)",
		"```go\nfmt.Println(\"x\")\n```",
		"a\n\n\n\n\n\n\nb\t\t\tc",
		"Odd ** markers * left ` over",
		"Hemoglobin: 11.2 g/dL (13.0 - 17.0)\nWBC: 12.5 x10^9/L (4.0 - 11.0)",
		strings.Repeat("# heading\n\n", 20),
		strings.Repeat("*", 60) + "a" + strings.Repeat("*", 60),
		strings.Repeat("~~", 20) + "a" + strings.Repeat("~~", 20),
		strings.Repeat("_", 41) + "a" + strings.Repeat("_", 41),
		nest("x", 20, "[", "](u)"),
		nest("y", 30, "![", "](i)"),
		nest("", 20, "<b", ">"),
		nest("z", 25, "`", "`"),
		nest("- 1. > ", 15, "> ", ""),
	}
	for _, in := range inputs {
		once := Clean(in)
		require.Equal(t, once, Clean(once), "input=%q", in)
	}
}

func nest(core string, depth int, open, close string) string {
	for i := 0; i < depth; i++ {
		core = open + core + close
	}
	return core
}

var fragments = []string{
	"*", "**", "_", "__", "~~", "`", "```", "#", "## ", "> ", "- ", "+ ", "1. ", "2) ",
	"---", "***", "[", "](u)", "![", "<b>", "</b>", "<br/>", "<", ">", "\n", "\r\n", "\r",
	"  ", "\t", "x", "LDL", " 125 mg/dL ", "•", "(", ")", "a_b",
}

// randomMarkup mixes flat fragment soup with randomly nested wrappers.
func randomMarkup(r *rand.Rand) string {
	var b strings.Builder
	for n := 1 + r.IntN(40); n > 0; n-- {
		b.WriteString(fragments[r.IntN(len(fragments))])
	}
	s := b.String()
	for d := r.IntN(30); d > 0; d-- {
		open := fragments[r.IntN(len(fragments))]
		close := fragments[r.IntN(len(fragments))]
		if r.IntN(2) == 0 {
			close = open
		}
		s = open + s + close
	}
	return s
}

func TestClean_IdempotentOnGeneratedMarkup(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	for i := 0; i < 3000; i++ {
		in := randomMarkup(r)
		once := Clean(in)
		require.Equal(t, once, Clean(once), "input=%q", in)
		require.NotContains(t, once, "\r\n", "input=%q", in)
	}
}

func TestRuleNames_DocumentedOrder(t *testing.T) {
	names := RuleNames()
	index := func(name string) int {
		for i, n := range names {
			if n == name {
				return i
			}
		}
		t.Fatalf("rule %s missing", name)
		return -1
	}
	require.Less(t, index("headings"), index("bold"))
	require.Less(t, index("bold"), index("strike"))
	require.Less(t, index("strike"), index("italic"))
	require.Less(t, index("italic"), index("code-fences"))
	require.Less(t, index("code-fences"), index("inline-code"))
	require.Less(t, index("inline-code"), index("block-quotes"))
	require.Less(t, index("block-quotes"), index("horizontal-rules"))
	require.Less(t, index("horizontal-rules"), index("unordered-lists"))
	require.Less(t, index("ordered-lists"), index("images"))
	require.Less(t, index("images"), index("links"))
	require.Less(t, index("links"), index("tags"))
	require.Less(t, index("tags"), index("spaces"))
	require.Equal(t, "blank-lines", names[len(names)-1])
}
