// Package analysis extracts sentences, concept candidates, tagged sentences and relationship
// triples from chapter text using the lexical tables in rules.
package analysis

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/yungbote/studyforge-backend/internal/modules/learning/rules"
)

type ConceptSource string

const (
	SourceTechnicalTerm   ConceptSource = "technical-term"
	SourceIndicatorPhrase ConceptSource = "indicator-phrase"
	SourceCapitalized     ConceptSource = "capitalized-term"
)

// ConceptCandidate lives only for one analysis pass.
type ConceptCandidate struct {
	Term     string
	Sentence string
	Source   ConceptSource
}

type Relationship struct {
	Subject  string
	Kind     rules.RelationKind
	Object   string
	Sentence string
}

type Result struct {
	Sentences          []string
	ImportantSentences []string
	KeyConcepts        []string
	Candidates         []ConceptCandidate
	Definitions        []string
	Examples           []string
	Procedures         []string
	Relationships      []Relationship
}

func emptyResult() *Result {
	return &Result{
		Sentences:          []string{},
		ImportantSentences: []string{},
		KeyConcepts:        []string{},
		Candidates:         []ConceptCandidate{},
		Definitions:        []string{},
		Examples:           []string{},
		Procedures:         []string{},
		Relationships:      []Relationship{},
	}
}

// Empty reports whether nothing usable for question generation was found.
func (r *Result) Empty() bool {
	return r == nil || (len(r.ImportantSentences) == 0 && len(r.Relationships) == 0)
}

// TopConcepts ranks key concepts by how many sentences produced them; ties keep first-seen order.
func (r *Result) TopConcepts(n int) []string {
	if r == nil || n <= 0 {
		return nil
	}
	counts := map[string]int{}
	for _, c := range r.Candidates {
		counts[strings.ToLower(c.Term)]++
	}
	ranked := append([]string(nil), r.KeyConcepts...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return counts[strings.ToLower(ranked[i])] > counts[strings.ToLower(ranked[j])]
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

type relationMatcher struct {
	re   *regexp.Regexp
	kind rules.RelationKind
}

// Analyzer is safe for concurrent use once built.
type Analyzer struct {
	rules        *rules.Set
	abbrevRes    []*regexp.Regexp
	definitions  []*regexp.Regexp
	examples     []*regexp.Regexp
	procedures   []*regexp.Regexp
	conceptAfter []*regexp.Regexp
	relations    []relationMatcher
}

var (
	titleCaseTerm = regexp.MustCompile(`\b[A-Z][a-z]+(?:[ -][A-Z][a-z]+)+\b`)
	camelCaseTerm = regexp.MustCompile(`\b(?:[a-z]+|[A-Z][a-z]+)[A-Z][A-Za-z]*\b`)
)

func New(r *rules.Set) *Analyzer {
	if r == nil {
		r = rules.Default()
	}
	a := &Analyzer{rules: r}
	for _, abbr := range r.Analysis.Abbreviations {
		if strings.TrimSpace(abbr) == "" {
			continue
		}
		a.abbrevRes = append(a.abbrevRes, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(abbr)))
	}
	a.definitions = phraseMatchers(r.Analysis.DefinitionIndicators)
	a.examples = phraseMatchers(r.Analysis.ExampleIndicators)
	a.procedures = phraseMatchers(r.Analysis.ProcedureIndicators)
	for _, ind := range r.Analysis.ConceptIndicators {
		if strings.TrimSpace(ind) == "" {
			continue
		}
		a.conceptAfter = append(a.conceptAfter, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(ind)+`\s+([^.,;:!?()"]+)`))
	}
	for _, rk := range r.Analysis.RelationKeywords {
		if strings.TrimSpace(rk.Phrase) == "" {
			continue
		}
		a.relations = append(a.relations, relationMatcher{re: phraseRegexp(rk.Phrase), kind: rk.Kind})
	}
	return a
}

func phraseMatchers(phrases []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(phrases))
	for _, p := range phrases {
		if strings.TrimSpace(p) == "" {
			continue
		}
		out = append(out, phraseRegexp(p))
	}
	return out
}

// phraseRegexp matches p case-insensitively on word boundaries. A trailing boundary is only
// required when p ends in a word character, so "e.g." still matches before a space.
func phraseRegexp(p string) *regexp.Regexp {
	expr := `(?i)\b` + strings.ReplaceAll(regexp.QuoteMeta(p), ` `, `\s+`)
	if last := p[len(p)-1]; last == '_' || unicode.IsLetter(rune(last)) || unicode.IsDigit(rune(last)) {
		expr += `\b`
	}
	return regexp.MustCompile(expr)
}

func anyMatch(res []*regexp.Regexp, s string) bool {
	for _, re := range res {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// Analyze never fails: empty or unusable text yields a Result with empty collections.
func (a *Analyzer) Analyze(text string) (res *Result) {
	defer func() {
		if recover() != nil {
			res = emptyResult()
		}
	}()

	res = emptyResult()
	if strings.TrimSpace(text) == "" {
		return res
	}
	res.Sentences = a.Sentences(text)

	important := newOrderedSet()
	concepts := newOrderedSet()
	for _, s := range res.Sentences {
		if anyMatch(a.definitions, s) {
			res.Definitions = append(res.Definitions, s)
			important.add(s)
		}
		if anyMatch(a.examples, s) {
			res.Examples = append(res.Examples, s)
			important.add(s)
		}
		if anyMatch(a.procedures, s) {
			res.Procedures = append(res.Procedures, s)
			important.add(s)
		}
		if rel, ok := a.relationship(s); ok {
			res.Relationships = append(res.Relationships, rel)
			important.add(s)
		}
		for _, c := range a.concepts(s) {
			res.Candidates = append(res.Candidates, c)
			concepts.add(c.Term)
		}
	}
	res.ImportantSentences = important.items()
	res.KeyConcepts = concepts.items()
	return res
}

// concepts unions the three extraction sources for one sentence, deduplicated case-insensitively.
func (a *Analyzer) concepts(sentence string) []ConceptCandidate {
	var out []ConceptCandidate
	seen := map[string]struct{}{}
	add := func(term string, src ConceptSource) {
		term = strings.TrimSpace(term)
		if term == "" {
			return
		}
		key := strings.ToLower(term)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		out = append(out, ConceptCandidate{Term: term, Sentence: sentence, Source: src})
	}

	for _, m := range titleCaseTerm.FindAllString(sentence, -1) {
		words := a.trimLeadingStopWords(strings.Fields(m))
		if len(words) >= 2 {
			add(strings.Join(words, " "), SourceCapitalized)
		}
	}
	for _, m := range camelCaseTerm.FindAllString(sentence, -1) {
		add(m, SourceCapitalized)
	}
	for _, re := range a.conceptAfter {
		for _, m := range re.FindAllStringSubmatch(sentence, -1) {
			add(a.indicatorPhrase(m[1]), SourceIndicatorPhrase)
		}
	}
	for _, w := range strings.Fields(sentence) {
		w = strings.ToLower(cleanWord(w))
		switch {
		case a.rules.IsTechnicalTerm(w):
			add(w, SourceTechnicalTerm)
		case strings.HasSuffix(w, "s") && a.rules.IsTechnicalTerm(strings.TrimSuffix(w, "s")):
			add(strings.TrimSuffix(w, "s"), SourceTechnicalTerm)
		}
	}
	return out
}

// indicatorPhrase trims articles, stops at the first stop word after the head word and caps length.
func (a *Analyzer) indicatorPhrase(raw string) string {
	words := a.trimLeadingStopWords(strings.Fields(raw))
	var kept []string
	for i, w := range words {
		w = cleanWord(w)
		if w == "" || (i > 0 && a.rules.IsStopWord(w)) {
			break
		}
		kept = append(kept, w)
		if len(kept) == a.rules.Analysis.ConceptMaxWords {
			break
		}
	}
	return strings.Join(kept, " ")
}

func (a *Analyzer) trimLeadingStopWords(words []string) []string {
	for len(words) > 0 && a.rules.IsStopWord(cleanWord(words[0])) {
		words = words[1:]
	}
	return words
}

// relationship splits s at the first keyword in table order that occurs in it.
func (a *Analyzer) relationship(s string) (Relationship, bool) {
	for _, m := range a.relations {
		loc := m.re.FindStringIndex(s)
		if loc == nil {
			continue
		}
		before := strings.Fields(s[:loc[0]])
		after := strings.Fields(s[loc[1]:])
		var subject, object string
		if len(before) > 0 {
			subject = cleanWord(before[len(before)-1])
		}
		for _, w := range after {
			w = cleanWord(w)
			if w == "" {
				continue
			}
			lw := strings.ToLower(w)
			if lw == "a" || lw == "an" || lw == "the" {
				continue
			}
			object = w
			break
		}
		if subject == "" || object == "" || a.rules.IsStopWord(subject) || a.rules.IsStopWord(object) {
			return Relationship{}, false
		}
		return Relationship{Subject: subject, Kind: m.kind, Object: object, Sentence: s}, true
	}
	return Relationship{}, false
}

func cleanWord(w string) string {
	return strings.TrimFunc(w, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	})
}

type orderedSet struct {
	seen  map[string]struct{}
	order []string
}

func newOrderedSet() *orderedSet { return &orderedSet{seen: map[string]struct{}{}} }

func (o *orderedSet) add(s string) {
	key := strings.ToLower(s)
	if _, ok := o.seen[key]; ok {
		return
	}
	o.seen[key] = struct{}{}
	o.order = append(o.order, s)
}

func (o *orderedSet) items() []string {
	if o.order == nil {
		return []string{}
	}
	return o.order
}
