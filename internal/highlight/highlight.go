// Package highlight marks keyword occurrences in the analysed text.
package highlight

import (
	"regexp"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Span is one keyword occurrence, as byte offsets into the text
type Span struct {
	Start   int
	End     int
	Keyword string
}

// Pattern builds a case-insensitive pattern matching any keyword.
// Longer keywords win when two start at the same position.
func Pattern(keywords []string) *regexp.Regexp {
	uniq := make(map[string]string)
	for _, k := range keywords {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		uniq[strings.ToLower(k)] = k
	}
	if len(uniq) == 0 {
		return nil
	}

	terms := make([]string, 0, len(uniq))
	for _, k := range uniq {
		terms = append(terms, k)
	}
	sort.Slice(terms, func(i, j int) bool {
		if len(terms[i]) != len(terms[j]) {
			return len(terms[i]) > len(terms[j])
		}
		return terms[i] < terms[j]
	})

	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = regexp.QuoteMeta(t)
	}
	return regexp.MustCompile(`(?i)(` + strings.Join(quoted, "|") + `)`)
}

// Find returns the non-overlapping keyword occurrences, left to right
func Find(text string, keywords []string) []Span {
	re := Pattern(keywords)
	if re == nil {
		return nil
	}

	var spans []Span
	for _, loc := range re.FindAllStringIndex(text, -1) {
		spans = append(spans, Span{Start: loc[0], End: loc[1], Keyword: text[loc[0]:loc[1]]})
	}
	return spans
}

// Apply wraps every occurrence with mark, keeping the original casing
func Apply(text string, keywords []string, mark func(string) string) string {
	spans := Find(text, keywords)
	if len(spans) == 0 {
		return text
	}

	var sb strings.Builder
	last := 0
	for _, s := range spans {
		sb.WriteString(text[last:s.Start])
		sb.WriteString(mark(text[s.Start:s.End]))
		last = s.End
	}
	sb.WriteString(text[last:])
	return sb.String()
}

// Render styles every occurrence for terminal output
func Render(text string, keywords []string, style lipgloss.Style) string {
	return Apply(text, keywords, func(s string) string {
		return style.Render(s)
	})
}

// Counts returns how many times each keyword occurs, keyed by lowercase keyword
func Counts(text string, keywords []string) map[string]int {
	counts := make(map[string]int)
	for _, s := range Find(text, keywords) {
		counts[strings.ToLower(s.Keyword)]++
	}
	return counts
}
