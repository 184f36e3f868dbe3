// Package sanitize strips markup artifacts from model output so the text can
// be stored and shown verbatim.
package sanitize

import (
	"regexp"
	"strings"
)

// Bullet replaces every list marker.
const Bullet = "• "

type rule struct {
	name string
	re   *regexp.Regexp
	repl string
}

// rules run top to bottom: headings, emphasis, code, quotes, horizontal
// rules, lists, images, links, tags, whitespace. Headings go first so
// "# **x**" loses its marker before emphasis is touched; quotes go before
// horizontal rules so "> ---" is dropped whole; images go before links so
// "![a](b)" is dropped instead of leaving "!a".
//
// Every rule either deletes characters or turns a list marker plus its
// spacing into one bullet, so each changing pass strictly shortens the text
// once bullets are discounted. That bounds the loop in Clean.
var rules = []rule{
	{"headings", regexp.MustCompile(`(?m)^[ \t]*(?:#{1,6}[ \t]*)+`), ""},
	{"bold", regexp.MustCompile(`\*\*([^*\n]+?)\*\*`), "$1"},
	{"bold-underscore", regexp.MustCompile(`__([^_\n]+?)__`), "$1"},
	{"strike", regexp.MustCompile(`~~([^~\n]+?)~~`), "$1"},
	{"italic", regexp.MustCompile(`\*([^*\n]+?)\*`), "$1"},
	{"italic-underscore", regexp.MustCompile(`(^|[^\w])_([^_\n]+?)_([^\w]|$)`), "$1$2$3"},
	{"code-fences", regexp.MustCompile("(?m)^[ \\t]*```[^\\n]*$"), ""},
	{"inline-code", regexp.MustCompile("`([^`\\n]+)`"), "$1"},
	{"block-quotes", regexp.MustCompile(`(?m)^[ \t]*(?:>[ \t]?)+`), ""},
	{"horizontal-rules", regexp.MustCompile(`(?m)^[ \t]*(?:-{3,}|_{3,}|\*{3,})[ \t]*$`), ""},
	{"unordered-lists", regexp.MustCompile(`(?m)^[ \t]*[-*+][ \t]+`), Bullet},
	{"ordered-lists", regexp.MustCompile(`(?m)^[ \t]*(?:\d+[.)][ \t]+)+`), Bullet},
	{"images", regexp.MustCompile(`!\[[^\]\n]*\]\([^)\n]*\)`), ""},
	{"links", regexp.MustCompile(`\[([^\]\n]+)\]\([^)\n]+\)`), "$1"},
	// A tag must start with a letter right after "<" so "< 200 mg/dL" survives.
	{"tags", regexp.MustCompile(`</?[A-Za-z][A-Za-z0-9-]*(?:\s[^<>]*)?/?>`), ""},
	{"spaces", regexp.MustCompile(`[ \t]{2,}`), " "},
	{"trailing-spaces", regexp.MustCompile(`(?m)[ \t]+$`), ""},
	{"blank-lines", regexp.MustCompile(`\n{3,}`), "\n\n"},
}

// Clean applies the rule chain until the text stops changing. Nested markup
// loses one layer per pass, so deep nesting just takes more passes.
// Clean(Clean(x)) == Clean(x).
func Clean(text string) string {
	if text == "" {
		return ""
	}
	out := text
	for {
		next := pass(out)
		if next == out {
			return out
		}
		out = next
	}
}

// pass normalizes line endings inside the loop: deleting a tag can join a
// "\r" and a "\n".
func pass(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	for _, r := range rules {
		text = r.re.ReplaceAllString(text, r.repl)
	}
	return strings.TrimSpace(text)
}

// RuleNames lists the rules in the order they run.
func RuleNames() []string {
	names := make([]string, len(rules))
	for i, r := range rules {
		names[i] = r.name
	}
	return names
}
