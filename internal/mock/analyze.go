package mock

import (
	"sort"
	"strings"
	"unicode"

	"github.com/studiowebux/kwintel/internal/types"
)

const maxPhrases = 20

var stopWords = map[string]bool{
	"a": true, "about": true, "after": true, "all": true, "also": true, "an": true, "and": true,
	"any": true, "are": true, "as": true, "at": true, "be": true, "been": true, "but": true,
	"by": true, "can": true, "could": true, "did": true, "do": true, "does": true, "for": true,
	"from": true, "had": true, "has": true, "have": true, "he": true, "her": true, "his": true,
	"how": true, "i": true, "if": true, "in": true, "into": true, "is": true, "it": true,
	"its": true, "more": true, "most": true, "no": true, "not": true, "of": true, "on": true,
	"or": true, "our": true, "she": true, "so": true, "some": true, "such": true, "than": true,
	"that": true, "the": true, "their": true, "them": true, "then": true, "there": true,
	"these": true, "they": true, "this": true, "to": true, "was": true, "we": true, "were": true,
	"what": true, "when": true, "which": true, "while": true, "who": true, "will": true,
	"with": true, "would": true, "you": true, "your": true,
}

// labelTerms are the words that count toward each candidate topic
var labelTerms = map[string][]string{
	"crime":      {"crime", "police", "arrest", "theft", "court", "criminal", "investigation"},
	"business":   {"business", "company", "market", "customer", "startup", "sales", "industry"},
	"politics":   {"politics", "election", "government", "policy", "minister", "vote", "parliament"},
	"technology": {"technology", "software", "learning", "machine", "data", "ai", "computer", "search", "algorithm"},
	"health":     {"health", "medical", "disease", "patient", "hospital", "doctor", "vaccine"},
	"fraud":      {"fraud", "scam", "laundering", "fake", "phishing", "forgery"},
	"terrorism":  {"terrorism", "terrorist", "attack", "extremist", "bomb"},
	"finance":    {"finance", "bank", "investment", "stock", "loan", "interest", "revenue"},
}

// Analyze produces a deterministic stand-in for the real service's analysis
func Analyze(text string, p types.Params, labels []string) *types.ExtractionResult {
	ngMin := max(1, p.NgramMin)
	ngMax := max(ngMin, p.NgramMax)
	topN := max(1, p.TopN)

	words := tokenize(text)

	candidates := rankNgrams(words, ngMin, ngMax)
	rule := head(candidates, topN)

	// Multi-word candidates first, as an embedding model tends to prefer them
	ml := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if strings.Contains(c, " ") {
			ml = append(ml, c)
		}
	}
	for _, c := range candidates {
		if !strings.Contains(c, " ") {
			ml = append(ml, c)
		}
	}

	return &types.ExtractionResult{
		RuleKeywords: rule,
		MLKeywords:   head(ml, topN),
		Phrases:      phrases(words),
		Summary:      summarize(text),
		Topic:        rankLabels(words, labels),
	}
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	})
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, "-")
		if f != "" {
			words = append(words, f)
		}
	}
	return words
}

type scored struct {
	term  string
	count int
	first int
}

// rankNgrams ranks n-grams without stop words by frequency, then first occurrence
func rankNgrams(words []string, ngMin, ngMax int) []string {
	seen := make(map[string]*scored)
	var order []*scored

	for n := ngMin; n <= ngMax; n++ {
		for i := 0; i+n <= len(words); i++ {
			gram := words[i : i+n]
			if hasStopWord(gram) {
				continue
			}
			term := strings.Join(gram, " ")
			if s, ok := seen[term]; ok {
				s.count++
				continue
			}
			s := &scored{term: term, count: 1, first: i}
			seen[term] = s
			order = append(order, s)
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		if order[i].count != order[j].count {
			return order[i].count > order[j].count
		}
		return order[i].first < order[j].first
	})

	out := make([]string, len(order))
	for i, s := range order {
		out[i] = s.term
	}
	return out
}

func hasStopWord(gram []string) bool {
	for _, w := range gram {
		if stopWords[w] || len(w) < 2 {
			return true
		}
	}
	return false
}

// phrases collects runs of consecutive non-stop words
func phrases(words []string) []string {
	var out []string
	var run []string
	flush := func() {
		if len(run) > 1 {
			out = append(out, strings.Join(run, " "))
		}
		run = run[:0]
	}
	for _, w := range words {
		if stopWords[w] {
			flush()
			continue
		}
		run = append(run, w)
	}
	flush()
	return head(out, maxPhrases)
}

// summarize returns short texts as-is and the first two sentences otherwise
func summarize(text string) string {
	text = strings.TrimSpace(text)
	if len(text) <= 100 {
		return text
	}

	var sb strings.Builder
	sentences := 0
	for _, r := range text {
		sb.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			sentences++
			if sentences == 2 {
				break
			}
		}
	}
	return strings.TrimSpace(sb.String())
}

// rankLabels orders labels by how many of their terms occur in the text
func rankLabels(words []string, labels []string) []string {
	counts := make(map[string]int)
	for _, w := range words {
		counts[w]++
	}

	ranked := make([]string, len(labels))
	copy(ranked, labels)
	score := func(label string) int {
		total := counts[label]
		for _, term := range labelTerms[label] {
			if term != label {
				total += counts[term]
			}
		}
		return total
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return score(ranked[i]) > score(ranked[j])
	})
	return ranked
}

func head(s []string, n int) []string {
	if len(s) > n {
		s = s[:n]
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
