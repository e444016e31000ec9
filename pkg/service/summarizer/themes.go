package summarizer

import (
	"regexp"
	"sort"
	"strings"
)

var wordPattern = regexp.MustCompile(`\b[a-z]{4,}\b`)

// stopWords are excluded from fallback theme extraction
var stopWords = map[string]struct{}{
	"that":   {},
	"this":   {},
	"with":   {},
	"from":   {},
	"have":   {},
	"been":   {},
	"were":   {},
	"would":  {},
	"could":  {},
	"should": {},
}

// extractThemes returns the top-N most frequent eligible words across
// all texts. Eligible: lowercase words of length >= 4 outside the
// stop-word set. Ties break by first occurrence, keeping the output
// deterministic.
func extractThemes(texts []string, max int) []string {
	combined := strings.ToLower(strings.Join(texts, " "))
	words := wordPattern.FindAllString(combined, -1)

	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	for i, w := range words {
		if _, ok := stopWords[w]; ok {
			continue
		}
		counts[w]++
		if _, ok := firstSeen[w]; !ok {
			firstSeen[w] = i
		}
	}

	themes := make([]string, 0, len(counts))
	for w := range counts {
		themes = append(themes, w)
	}

	sort.Slice(themes, func(i, j int) bool {
		if counts[themes[i]] != counts[themes[j]] {
			return counts[themes[i]] > counts[themes[j]]
		}
		return firstSeen[themes[i]] < firstSeen[themes[j]]
	})

	if max > 0 && len(themes) > max {
		themes = themes[:max]
	}

	return themes
}
