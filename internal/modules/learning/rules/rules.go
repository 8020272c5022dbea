// Package rules holds every lexical heuristic used by the content pipeline as named tables.
// A Set is built once at startup (Default or Load) and shared read-only by the segmenter,
// analyzer and question synthesizer.
package rules

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

type RelationKind string

const (
	RelationIsA      RelationKind = "is-a"
	RelationHasA     RelationKind = "has-a"
	RelationCan      RelationKind = "can"
	RelationRequires RelationKind = "requires"
	RelationLeadsTo  RelationKind = "leads-to"
)

// RelationKeyword maps a phrase found in a sentence to a relation kind.
type RelationKeyword struct {
	Phrase string       `yaml:"phrase"`
	Kind   RelationKind `yaml:"kind"`
}

// Substitution is a whole-word rewrite used to negate a sentence.
type Substitution struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

type Segmentation struct {
	// HeaderPatterns are tried in order against a trimmed line.
	HeaderPatterns  []string `yaml:"header_patterns"`
	MaxHeaderLength int      `yaml:"max_header_length"`
	// AllCapsMaxWords bounds the all-caps heading heuristic.
	AllCapsMaxWords int    `yaml:"all_caps_max_words"`
	SummaryMaxChars int    `yaml:"summary_max_chars"`
	FallbackTitle   string `yaml:"fallback_title"`
	PreambleTitle   string `yaml:"preamble_title"`
}

type Analysis struct {
	Abbreviations        []string          `yaml:"abbreviations"`
	MinSentenceWords     int               `yaml:"min_sentence_words"`
	MinSentenceChars     int               `yaml:"min_sentence_chars"`
	MaxSentences         int               `yaml:"max_sentences"`
	DefinitionIndicators []string          `yaml:"definition_indicators"`
	ExampleIndicators    []string          `yaml:"example_indicators"`
	ProcedureIndicators  []string          `yaml:"procedure_indicators"`
	ConceptIndicators    []string          `yaml:"concept_indicators"`
	ConceptMaxWords      int               `yaml:"concept_max_words"`
	TechnicalTerms       []string          `yaml:"technical_terms"`
	StopWords            []string          `yaml:"stop_words"`
	RelationKeywords     []RelationKeyword `yaml:"relation_keywords"`
	KeywordLimit         int               `yaml:"keyword_limit"`
}

type Questions struct {
	DefaultDifficulty              string                    `yaml:"default_difficulty"`
	ConceptPhrasings               []string                  `yaml:"concept_phrasings"`
	ConceptDistractorTemplates     []string                  `yaml:"concept_distractor_templates"`
	ApplicationPhrasings           []string                  `yaml:"application_phrasings"`
	ApplicationDistractorTemplates []string                  `yaml:"application_distractor_templates"`
	RelationshipPhrasings          []string                  `yaml:"relationship_phrasings"`
	RelationSynonyms               map[RelationKind][]string `yaml:"relation_synonyms"`
	FallbackPhrasing               string                    `yaml:"fallback_phrasing"`
	Negations                      []Substitution            `yaml:"negations"`
	MinNegationWords               int                       `yaml:"min_negation_words"`
	TermPatterns                   []string                  `yaml:"term_patterns"`
	ExampleTermPatterns            []string                  `yaml:"example_term_patterns"`
	TrueFalsePhrasing              string                    `yaml:"true_false_phrasing"`
	ShortAnswerPhrasing            string                    `yaml:"short_answer_phrasing"`
}

// Set is the full rule configuration plus its compiled regular expressions.
type Set struct {
	Segmentation Segmentation `yaml:"segmentation"`
	Analysis     Analysis     `yaml:"analysis"`
	Questions    Questions    `yaml:"questions"`

	headers      []*regexp.Regexp
	termPatterns []*regexp.Regexp
	exampleTerms []*regexp.Regexp
	stopWords    map[string]struct{}
	technical    map[string]struct{}
}

// Load returns Default overlaid with the YAML file at path. An empty path yields Default.
func Load(path string) (*Set, error) {
	s := defaults()
	path = strings.TrimSpace(path)
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read rules file: %w", err)
		}
		if err := yaml.Unmarshal(raw, s); err != nil {
			return nil, fmt.Errorf("parse rules file %s: %w", path, err)
		}
	}
	if err := s.compile(); err != nil {
		return nil, err
	}
	return s, nil
}

// Default returns the built-in rule set.
func Default() *Set {
	s := defaults()
	if err := s.compile(); err != nil {
		panic(fmt.Sprintf("rules: default set does not compile: %v", err))
	}
	return s
}

func (s *Set) compile() error {
	var err error
	if s.headers, err = compileAll("header pattern", s.Segmentation.HeaderPatterns); err != nil {
		return err
	}
	if s.termPatterns, err = compileAll("term pattern", s.Questions.TermPatterns); err != nil {
		return err
	}
	if s.exampleTerms, err = compileAll("example term pattern", s.Questions.ExampleTermPatterns); err != nil {
		return err
	}
	if s.Segmentation.MaxHeaderLength <= 0 {
		return fmt.Errorf("rules: max_header_length must be positive")
	}
	if s.Analysis.MaxSentences <= 0 {
		return fmt.Errorf("rules: max_sentences must be positive")
	}
	for _, rk := range s.Analysis.RelationKeywords {
		if _, ok := s.Questions.RelationSynonyms[rk.Kind]; !ok {
			return fmt.Errorf("rules: relation kind %q has no synonyms", rk.Kind)
		}
	}
	s.stopWords = toSet(s.Analysis.StopWords)
	s.technical = toSet(s.Analysis.TechnicalTerms)
	return nil
}

func compileAll(what string, patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("rules: bad %s %q: %w", what, p, err)
		}
		out = append(out, re)
	}
	return out, nil
}

func toSet(words []string) map[string]struct{} {
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		out[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}
	return out
}

func (s *Set) HeaderPatterns() []*regexp.Regexp      { return s.headers }
func (s *Set) TermPatterns() []*regexp.Regexp        { return s.termPatterns }
func (s *Set) ExampleTermPatterns() []*regexp.Regexp { return s.exampleTerms }

func (s *Set) IsStopWord(w string) bool {
	_, ok := s.stopWords[strings.ToLower(w)]
	return ok
}

func (s *Set) IsTechnicalTerm(w string) bool {
	_, ok := s.technical[strings.ToLower(w)]
	return ok
}

// RenderRelation renders kind with its first synonym, e.g. is-a -> "is a".
func (s *Set) RenderRelation(kind RelationKind) string {
	if syn := s.Questions.RelationSynonyms[kind]; len(syn) > 0 {
		return syn[0]
	}
	return string(kind)
}

// RelationKinds lists the distinct kinds in keyword-table order.
func (s *Set) RelationKinds() []RelationKind {
	seen := map[RelationKind]bool{}
	var out []RelationKind
	for _, rk := range s.Analysis.RelationKeywords {
		if !seen[rk.Kind] {
			seen[rk.Kind] = true
			out = append(out, rk.Kind)
		}
	}
	return out
}
