package analysis

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Stands in for the periods of protected abbreviations while splitting.
const abbrevDot = "\uE000"

var (
	pageMarker = regexp.MustCompile(`^(?i)(page|p\.|pg\.?)\s*\d+(\s+of\s+\d+)?\.?$`)
	spaceRun   = regexp.MustCompile(`\s+`)
)

// Sentences splits text into cleaned sentences: abbreviations are protected, short
// fragments and page markers dropped, duplicates removed, and the result capped.
func (a *Analyzer) Sentences(text string) []string {
	text = strings.TrimSpace(spaceRun.ReplaceAllString(text, " "))
	if text == "" {
		return []string{}
	}
	for _, re := range a.abbrevRes {
		text = re.ReplaceAllStringFunc(text, func(m string) string {
			return strings.ReplaceAll(m, ".", abbrevDot)
		})
	}

	var out []string
	seen := map[string]struct{}{}
	for _, raw := range splitTerminals(text) {
		s := strings.TrimSpace(strings.ReplaceAll(raw, abbrevDot, "."))
		if !a.keepSentence(s) {
			continue
		}
		key := strings.ToLower(s)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
		if len(out) >= a.rules.Analysis.MaxSentences {
			break
		}
	}
	if out == nil {
		return []string{}
	}
	return out
}

// splitTerminals cuts after a run of . ! ? (plus closing quotes or brackets) followed by space or end.
func splitTerminals(text string) []string {
	var out []string
	start := 0
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if r != '.' && r != '!' && r != '?' {
			i += size
			continue
		}
		j := i + size
		for j < len(text) {
			nr, ns := utf8.DecodeRuneInString(text[j:])
			if !strings.ContainsRune(".!?\"')]”’", nr) {
				break
			}
			j += ns
		}
		if j == len(text) || text[j] == ' ' {
			out = append(out, text[start:j])
			start = j
		}
		i = j
	}
	if start < len(text) {
		out = append(out, text[start:])
	}
	return out
}

func (a *Analyzer) keepSentence(s string) bool {
	if utf8.RuneCountInString(s) < a.rules.Analysis.MinSentenceChars {
		return false
	}
	if len(strings.Fields(s)) < a.rules.Analysis.MinSentenceWords {
		return false
	}
	if pageMarker.MatchString(s) {
		return false
	}
	return strings.IndexFunc(s, unicode.IsLetter) >= 0
}
