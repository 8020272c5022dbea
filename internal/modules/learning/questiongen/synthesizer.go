package questiongen

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"unicode"

	types "github.com/yungbote/studyforge-backend/internal/domain"
	"github.com/yungbote/studyforge-backend/internal/modules/learning/analysis"
	"github.com/yungbote/studyforge-backend/internal/modules/learning/rules"
	"github.com/yungbote/studyforge-backend/internal/platform/logger"
)

type Category string

const (
	CategoryConcept      Category = "concept"
	CategoryApplication  Category = "application"
	CategoryRelationship Category = "relationship"
	CategoryFallback     Category = "fallback"
	CategoryTrueFalse    Category = "true_false"
	CategoryShortAnswer  Category = "short_answer"
)

// Draft is a question ready to persist.
type Draft struct {
	QuestionText  string
	QuestionType  types.QuestionType
	Options       []string
	CorrectAnswer string
	// CorrectText is the correct option's text, fixed before shuffling.
	CorrectText string
	Difficulty  string
	Explanation string
	Category    Category
	Source      string
}

// Request describes one generation run. Extra kinds only top up when the
// multiple-choice categories could not fill Count.
type Request struct {
	Count      int
	Difficulty string
	Kinds      []types.QuestionType
}

func (r Request) allows(kind types.QuestionType) bool {
	for _, k := range r.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// errSkip marks material that cannot produce a question. It is not logged as a failure.
var errSkip = errors.New("skip")

type negation struct {
	re *regexp.Regexp
	to string
}

type Synthesizer struct {
	rules     *rules.Set
	log       *logger.Logger
	negations []negation
}

var listMarker = regexp.MustCompile(`^\s*(?:\(?\d+[.)]|[-•*]|[a-z][.)])\s+`)

func New(r *rules.Set, log *logger.Logger) *Synthesizer {
	if r == nil {
		r = rules.Default()
	}
	s := &Synthesizer{rules: r, log: log.With("component", "QuestionSynthesizer")}
	for _, sub := range r.Questions.Negations {
		if strings.TrimSpace(sub.From) == "" {
			continue
		}
		s.negations = append(s.negations, negation{
			re: regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(sub.From) + `\b`),
			to: sub.To,
		})
	}
	return s
}

// Synthesize returns up to req.Count drafts. Fewer is a valid outcome when the analysis is thin.
func (s *Synthesizer) Synthesize(ctx context.Context, res *analysis.Result, req Request, rng *rand.Rand) []Draft {
	n := req.Count
	if n <= 0 || res == nil {
		return nil
	}
	perCategory := n / 3
	used := map[string]struct{}{}
	var drafts []Draft

	generate := func(cat Category, inputs []string, limit int, build func(string) (Draft, error)) {
		made := 0
		for _, in := range inputs {
			if made >= limit || ctx.Err() != nil {
				return
			}
			d, ok := s.isolate(cat, in, build)
			if !ok {
				continue
			}
			used[strings.ToLower(d.Source)] = struct{}{}
			drafts = append(drafts, d)
			made++
		}
	}

	generate(CategoryConcept, res.Definitions, perCategory, func(sent string) (Draft, error) {
		return s.conceptQuestion(sent, res, rng)
	})
	generate(CategoryApplication, res.Examples, perCategory, func(sent string) (Draft, error) {
		return s.applicationQuestion(sent, res, rng)
	})

	relSentences := make([]string, len(res.Relationships))
	relBySentence := make(map[string]analysis.Relationship, len(res.Relationships))
	for i, r := range res.Relationships {
		relSentences[i] = r.Sentence
		relBySentence[r.Sentence] = r
	}
	generate(CategoryRelationship, relSentences, perCategory, func(sent string) (Draft, error) {
		return s.relationshipQuestion(relBySentence[sent], res, rng)
	})

	pool := unused(res.ImportantSentences, used)
	if len(drafts) < n {
		generate(CategoryFallback, pool, n-len(drafts), func(sent string) (Draft, error) {
			return s.fallbackQuestion(sent, res.ImportantSentences, rng)
		})
	}
	if len(drafts) < n && req.allows(types.QuestionTrueFalse) {
		generate(CategoryTrueFalse, unused(res.ImportantSentences, used), n-len(drafts), func(sent string) (Draft, error) {
			return s.trueFalseQuestion(sent, rng)
		})
	}
	if len(drafts) < n && req.allows(types.QuestionShortAnswer) {
		generate(CategoryShortAnswer, unused(res.Definitions, used), n-len(drafts), func(sent string) (Draft, error) {
			return s.shortAnswerQuestion(sent)
		})
	}

	rng.Shuffle(len(drafts), func(i, j int) { drafts[i], drafts[j] = drafts[j], drafts[i] })
	if len(drafts) > n {
		drafts = drafts[:n]
	}
	difficulty := s.difficulty(req.Difficulty)
	for i := range drafts {
		drafts[i].Difficulty = difficulty
	}
	return drafts
}

// unused drops sentences that already back a draft in this batch.
func unused(sentences []string, used map[string]struct{}) []string {
	var out []string
	for _, sent := range sentences {
		if _, ok := used[strings.ToLower(sent)]; !ok {
			out = append(out, sent)
		}
	}
	return out
}

func (s *Synthesizer) difficulty(requested string) string {
	switch strings.ToLower(strings.TrimSpace(requested)) {
	case types.DifficultyEasy, types.DifficultyMedium, types.DifficultyHard:
		return strings.ToLower(strings.TrimSpace(requested))
	default:
		return s.rules.Questions.DefaultDifficulty
	}
}

// isolate runs build for one sentence so that a failure or panic only loses that sentence.
func (s *Synthesizer) isolate(cat Category, sentence string, build func(string) (Draft, error)) (d Draft, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			s.log.Warn("question generation panicked for sentence", "category", cat, "sentence", truncate(sentence, 120), "panic", rec)
			ok = false
		}
	}()
	d, err := build(sentence)
	switch {
	case errors.Is(err, errSkip):
		return Draft{}, false
	case err != nil:
		s.log.Warn("question generation failed for sentence", "category", cat, "sentence", truncate(sentence, 120), "error", err)
		return Draft{}, false
	}
	d.Category = cat
	return d, true
}

func (s *Synthesizer) conceptQuestion(sentence string, res *analysis.Result, rng *rand.Rand) (Draft, error) {
	correct := stripListMarker(sentence)
	term, ok := s.extractTerm(correct, s.rules.TermPatterns(), true)
	if !ok {
		return Draft{}, errSkip
	}
	distractors := s.templatedDistractors(term, correct, res.KeyConcepts, s.rules.Questions.ConceptDistractorTemplates, rng)
	if len(distractors) < OptionCount-1 {
		return Draft{}, errSkip
	}
	return s.multipleChoice(
		fmt.Sprintf(pick(s.rules.Questions.ConceptPhrasings, rng), term),
		correct, distractors, sentence, rng,
	)
}

func (s *Synthesizer) applicationQuestion(sentence string, res *analysis.Result, rng *rand.Rand) (Draft, error) {
	correct := stripListMarker(sentence)
	term, ok := s.extractTerm(correct, s.rules.ExampleTermPatterns(), false)
	if !ok {
		return Draft{}, errSkip
	}
	distractors := s.templatedDistractors(term, correct, res.KeyConcepts, s.rules.Questions.ApplicationDistractorTemplates, rng)
	if len(distractors) < OptionCount-1 {
		return Draft{}, errSkip
	}
	return s.multipleChoice(
		fmt.Sprintf(pick(s.rules.Questions.ApplicationPhrasings, rng), term),
		correct, distractors, sentence, rng,
	)
}

func (s *Synthesizer) relationshipQuestion(rel analysis.Relationship, res *analysis.Result, rng *rand.Rand) (Draft, error) {
	if rel.Subject == "" || rel.Object == "" {
		return Draft{}, errSkip
	}
	correct := fmt.Sprintf("%s %s %s", rel.Subject, s.rules.RenderRelation(rel.Kind), rel.Object)
	seen := map[string]struct{}{strings.ToLower(correct): {}}
	var distractors []string
	add := func(d string) {
		key := strings.ToLower(d)
		if _, dup := seen[key]; dup || len(distractors) >= OptionCount-1 {
			return
		}
		seen[key] = struct{}{}
		distractors = append(distractors, d)
	}

	others := make([]analysis.Relationship, 0, len(res.Relationships))
	for _, o := range res.Relationships {
		if o.Sentence != rel.Sentence {
			others = append(others, o)
		}
	}
	rng.Shuffle(len(others), func(i, j int) { others[i], others[j] = others[j], others[i] })
	for _, o := range others {
		add(fmt.Sprintf("%s %s %s", o.Subject, s.rules.RenderRelation(o.Kind), o.Object))
	}

	kinds := s.rules.RelationKinds()
	rng.Shuffle(len(kinds), func(i, j int) { kinds[i], kinds[j] = kinds[j], kinds[i] })
	for _, k := range kinds {
		if k == rel.Kind {
			continue
		}
		add(fmt.Sprintf("%s %s %s", rel.Subject, pick(s.rules.Questions.RelationSynonyms[k], rng), rel.Object))
	}
	if len(distractors) < OptionCount-1 {
		return Draft{}, errSkip
	}
	return s.multipleChoice(
		fmt.Sprintf(pick(s.rules.Questions.RelationshipPhrasings, rng), rel.Subject, rel.Object),
		correct, distractors, rel.Sentence, rng,
	)
}

func (s *Synthesizer) fallbackQuestion(sentence string, pool []string, rng *rand.Rand) (Draft, error) {
	correct := stripListMarker(sentence)
	seen := map[string]struct{}{strings.ToLower(correct): {}}
	var distractors []string
	add := func(d string) {
		key := strings.ToLower(d)
		if _, dup := seen[key]; dup || len(distractors) >= OptionCount-1 {
			return
		}
		seen[key] = struct{}{}
		distractors = append(distractors, d)
	}

	if neg, ok := s.Negate(correct); ok && len(strings.Fields(neg)) >= s.rules.Questions.MinNegationWords {
		add(neg)
	}
	others := make([]string, 0, len(pool))
	for _, p := range pool {
		if p != sentence {
			others = append(others, stripListMarker(p))
		}
	}
	rng.Shuffle(len(others), func(i, j int) { others[i], others[j] = others[j], others[i] })
	for _, o := range others {
		add(o)
	}
	if len(distractors) < OptionCount-1 {
		return Draft{}, errSkip
	}
	return s.multipleChoice(s.rules.Questions.FallbackPhrasing, correct, distractors, sentence, rng)
}

func (s *Synthesizer) trueFalseQuestion(sentence string, rng *rand.Rand) (Draft, error) {
	statement := stripListMarker(sentence)
	answer := "True"
	if neg, ok := s.Negate(statement); ok && rng.Intn(2) == 0 {
		statement, answer = neg, "False"
	}
	return Draft{
		QuestionText:  fmt.Sprintf(s.rules.Questions.TrueFalsePhrasing, statement),
		QuestionType:  types.QuestionTrueFalse,
		Options:       []string{"True", "False"},
		CorrectAnswer: answer,
		CorrectText:   answer,
		Explanation:   "From the chapter: " + stripListMarker(sentence),
		Source:        sentence,
	}, nil
}

func (s *Synthesizer) shortAnswerQuestion(sentence string) (Draft, error) {
	clean := stripListMarker(sentence)
	term, ok := s.extractTerm(clean, s.rules.TermPatterns(), true)
	if !ok {
		return Draft{}, errSkip
	}
	blanked := regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(term)+`\b`).ReplaceAllString(clean, "_____")
	if blanked == clean {
		return Draft{}, errSkip
	}
	return Draft{
		QuestionText:  fmt.Sprintf(s.rules.Questions.ShortAnswerPhrasing, blanked),
		QuestionType:  types.QuestionShortAnswer,
		Options:       []string{},
		CorrectAnswer: term,
		CorrectText:   term,
		Explanation:   "From the chapter: " + clean,
		Source:        sentence,
	}, nil
}

func (s *Synthesizer) multipleChoice(text, correct string, distractors []string, source string, rng *rand.Rand) (Draft, error) {
	options, letter, err := ShuffleAndLetter(correct, distractors[:OptionCount-1], rng)
	if err != nil {
		return Draft{}, err
	}
	return Draft{
		QuestionText:  text,
		QuestionType:  types.QuestionMultipleChoice,
		Options:       options,
		CorrectAnswer: letter,
		CorrectText:   correct,
		Explanation:   "From the chapter: " + correct,
		Source:        source,
	}, nil
}

// templatedDistractors pairs term with other key concepts through rotating templates.
func (s *Synthesizer) templatedDistractors(term, correct string, concepts []string, templates []string, rng *rand.Rand) []string {
	if len(templates) == 0 {
		return nil
	}
	lowerTerm := strings.ToLower(term)
	var others []string
	for _, c := range concepts {
		lc := strings.ToLower(c)
		if lc == lowerTerm || strings.Contains(lc, lowerTerm) || strings.Contains(lowerTerm, lc) {
			continue
		}
		others = append(others, c)
	}
	rng.Shuffle(len(others), func(i, j int) { others[i], others[j] = others[j], others[i] })

	seen := map[string]struct{}{strings.ToLower(correct): {}}
	offset := rng.Intn(len(templates))
	var out []string
	for i, other := range others {
		if len(out) == OptionCount-1 {
			break
		}
		d := upperFirst(fmt.Sprintf(templates[(offset+i)%len(templates)], term, other))
		key := strings.ToLower(d)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, d)
	}
	return out
}

// extractTerm returns the first capture of the first matching pattern. anchoredStart keeps
// the term as written; otherwise leading stop words are trimmed and the tail kept.
func (s *Synthesizer) extractTerm(sentence string, patterns []*regexp.Regexp, anchoredStart bool) (string, bool) {
	maxWords := s.rules.Analysis.ConceptMaxWords
	for _, re := range patterns {
		m := re.FindStringSubmatch(sentence)
		if len(m) < 2 {
			continue
		}
		words := strings.Fields(m[1])
		if !anchoredStart {
			for len(words) > 0 && s.rules.IsStopWord(words[0]) {
				words = words[1:]
			}
			if len(words) > maxWords {
				words = words[len(words)-maxWords:]
			}
		}
		if len(words) == 0 || len(words) > maxWords {
			continue
		}
		if len(words) == 1 && s.rules.IsStopWord(words[0]) {
			continue
		}
		return lowerFirstIfCommon(strings.Join(words, " ")), true
	}
	return "", false
}

// Negate applies the first matching substitution from the negation table.
func (s *Synthesizer) Negate(sentence string) (string, bool) {
	for _, n := range s.negations {
		loc := n.re.FindStringIndex(sentence)
		if loc == nil {
			continue
		}
		to := n.to
		if r := []rune(sentence[loc[0]:loc[1]]); len(r) > 0 && unicode.IsUpper(r[0]) {
			to = upperFirst(to)
		}
		return sentence[:loc[0]] + to + sentence[loc[1]:], true
	}
	return sentence, false
}

func pick(options []string, rng *rand.Rand) string {
	if len(options) == 0 {
		return ""
	}
	return options[rng.Intn(len(options))]
}

func stripListMarker(s string) string {
	return strings.TrimSpace(listMarker.ReplaceAllString(s, ""))
}

func upperFirst(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// lowerFirstIfCommon lowercases a sentence-initial capital unless the word looks like an acronym or name.
func lowerFirstIfCommon(s string) string {
	r := []rune(s)
	if len(r) < 2 || !unicode.IsUpper(r[0]) || unicode.IsUpper(r[1]) {
		return s
	}
	for _, w := range strings.Fields(s)[1:] {
		if wr := []rune(w); len(wr) > 0 && unicode.IsUpper(wr[0]) {
			return s
		}
	}
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
