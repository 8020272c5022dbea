package rules

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultCompiles(t *testing.T) {
	s := Default()
	if len(s.HeaderPatterns()) != len(s.Segmentation.HeaderPatterns) {
		t.Fatalf("header patterns not compiled")
	}
	if !s.IsStopWord("The") || s.IsStopWord("stack") {
		t.Fatalf("stop word lookup is wrong")
	}
	if !s.IsTechnicalTerm("Algorithm") {
		t.Fatalf("technical term lookup should be case-insensitive")
	}
	if got := s.RenderRelation(RelationIsA); got != "is a" {
		t.Fatalf("RenderRelation(is-a) = %q", got)
	}
	kinds := s.RelationKinds()
	if len(kinds) != 5 || kinds[0] != RelationIsA {
		t.Fatalf("RelationKinds = %v", kinds)
	}
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	body := []byte(`
segmentation:
  fallback_title: Whole Document
analysis:
  max_sentences: 10
  technical_terms: [enzyme]
`)
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Segmentation.FallbackTitle != "Whole Document" {
		t.Fatalf("fallback title not overridden: %q", s.Segmentation.FallbackTitle)
	}
	if s.Analysis.MaxSentences != 10 {
		t.Fatalf("max sentences = %d", s.Analysis.MaxSentences)
	}
	if s.Segmentation.MaxHeaderLength != 100 {
		t.Fatalf("unspecified fields must keep defaults, got %d", s.Segmentation.MaxHeaderLength)
	}
	if !s.IsTechnicalTerm("enzyme") || s.IsTechnicalTerm("algorithm") {
		t.Fatalf("list overrides replace the default list")
	}
}

func TestLoadRejectsBadPattern(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("segmentation:\n  header_patterns: ['([']\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected compile error for invalid regex")
	}
}

func TestLoadEmptyPath(t *testing.T) {
	s, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\"): %v", err)
	}
	if s.Segmentation.FallbackTitle != "Document" {
		t.Fatalf("expected defaults")
	}
}
