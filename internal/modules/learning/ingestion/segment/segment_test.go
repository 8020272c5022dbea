package segment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/yungbote/studyforge-backend/internal/domain/aggregates"
	"github.com/yungbote/studyforge-backend/internal/modules/learning/ingestion/document"
	"github.com/yungbote/studyforge-backend/internal/modules/learning/rules"
	"github.com/yungbote/studyforge-backend/internal/platform/logger"
)

func newSegmenter() *Segmenter {
	return New(rules.Default(), logger.Nop())
}

func collect(t *testing.T, pages []string) ([]Chapter, []Chapter, error) {
	t.Helper()
	var sunk []Chapter
	out, err := newSegmenter().Segment(context.Background(), document.FromPages(pages), func(_ context.Context, ch Chapter) error {
		sunk = append(sunk, ch)
		return nil
	})
	return out, sunk, err
}

func TestSegmentTwoChapters(t *testing.T) {
	out, sunk, err := collect(t, []string{"Chapter 1\nFoo bar baz qux.", "Chapter 2\nQuux corge grault."})
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	if len(out) != 2 || len(sunk) != 2 {
		t.Fatalf("expected 2 chapters, got %d (sunk %d)", len(out), len(sunk))
	}
	for i, ch := range out {
		if ch.Number != i+1 {
			t.Fatalf("chapter %d has number %d", i, ch.Number)
		}
	}
	if out[0].Title != "Chapter 1" || out[0].Content != "Foo bar baz qux." {
		t.Fatalf("unexpected first chapter: %+v", out[0])
	}
	if out[1].Title != "Chapter 2" || out[1].Content != "Quux corge grault." {
		t.Fatalf("unexpected second chapter: %+v", out[1])
	}
}

func TestSegmentFallbackChapter(t *testing.T) {
	pages := []string{"just some prose without headings.", "and a second page of prose."}
	out, _, err := collect(t, pages)
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected a single fallback chapter, got %d", len(out))
	}
	if out[0].Title != "Document" || out[0].Number != 1 {
		t.Fatalf("unexpected fallback chapter: %+v", out[0])
	}
	for _, p := range pages {
		if !strings.Contains(out[0].Content, p) {
			t.Fatalf("fallback content missing %q", p)
		}
	}
}

func TestSegmentEmptyDocument(t *testing.T) {
	cases := map[string][]string{
		"whitespace":    {"   ", "\n\t\n"},
		"empty headers": {"Chapter 1\n\nChapter 2\n   "},
	}
	for name, pages := range cases {
		t.Run(name, func(t *testing.T) {
			_, sunk, err := collect(t, pages)
			if !aggregates.IsCode(err, aggregates.CodeEmptyDocument) {
				t.Fatalf("expected empty_document, got %v", err)
			}
			if len(sunk) != 0 {
				t.Fatalf("nothing should be persisted, got %d", len(sunk))
			}
		})
	}
}

func TestSegmentNoPages(t *testing.T) {
	_, _, err := collect(t, nil)
	if !aggregates.IsCode(err, aggregates.CodeInvalidDocument) {
		t.Fatalf("expected invalid_document, got %v", err)
	}
}

type flakyDoc struct {
	pages []string
	bad   map[int]bool
}

func (d *flakyDoc) NumPages() int { return len(d.pages) }
func (d *flakyDoc) PageText(_ context.Context, p int) (string, error) {
	if d.bad[p] {
		return "", fmt.Errorf("corrupt page %d", p)
	}
	return d.pages[p-1], nil
}
func (d *flakyDoc) Close() error { return nil }

func TestSegmentSkipsFailedPages(t *testing.T) {
	doc := &flakyDoc{
		pages: []string{"Chapter 1\nAlpha text here.", "garbage", "Chapter 2\nBeta text here."},
		bad:   map[int]bool{2: true},
	}
	out, err := newSegmenter().Segment(context.Background(), doc, func(context.Context, Chapter) error { return nil })
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 chapters, got %d", len(out))
	}

	allBad := &flakyDoc{pages: []string{"a", "b"}, bad: map[int]bool{1: true, 2: true}}
	_, err = newSegmenter().Segment(context.Background(), allBad, func(context.Context, Chapter) error { return nil })
	if !aggregates.IsCode(err, aggregates.CodeInvalidDocument) {
		t.Fatalf("all pages failing should be invalid_document, got %v", err)
	}
}

func TestSegmentSinkErrorKeepsProgress(t *testing.T) {
	boom := errors.New("db down")
	calls := 0
	out, err := newSegmenter().Segment(context.Background(),
		document.FromPages([]string{"Chapter 1\nOne.\nChapter 2\nTwo.\nChapter 3\nThree."}),
		func(_ context.Context, ch Chapter) error {
			calls++
			if ch.Number == 2 {
				return boom
			}
			return nil
		})
	if !errors.Is(err, boom) {
		t.Fatalf("expected sink error, got %v", err)
	}
	if len(out) != 1 || out[0].Number != 1 {
		t.Fatalf("chapters before the failure should be reported, got %+v", out)
	}
	if calls != 2 {
		t.Fatalf("segmentation should stop at the failing chapter, calls=%d", calls)
	}
}

func TestSegmentPreamble(t *testing.T) {
	out, _, err := collect(t, []string{"Some foreword text.\nCHAPTER ONE\nBody one."})
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	if len(out) != 2 || out[0].Title != "Introduction" || out[1].Title != "CHAPTER ONE" {
		t.Fatalf("unexpected chapters: %+v", out)
	}
}

func TestIsHeader(t *testing.T) {
	s := newSegmenter()
	cases := []struct {
		line string
		want bool
	}{
		{"Chapter 1", true},
		{"chapter iv: The Middle Ages", true},
		{"INTRODUCTION", true},
		{"1. Getting Started", true},
		{"2.3 Data Types", true},
		{"IV. Results", true},
		{"Foo bar baz qux.", false},
		{"1. First, mix the flour.", false},
		{"NOTE.", false},
		{"42", false},
		{"", false},
		{"Chapter 1 " + strings.Repeat("x", 120), false},
		{"THIS IS A VERY LONG SHOUTED LINE THAT KEEPS GOING", false},
	}
	for _, tc := range cases {
		t.Run(tc.line, func(t *testing.T) {
			if got := s.IsHeader(tc.line); got != tc.want {
				t.Fatalf("IsHeader(%q) = %v, want %v", tc.line, got, tc.want)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	short := "First paragraph.\n\nSecond paragraph."
	if got := Summarize(short, 500); got != "First paragraph." {
		t.Fatalf("Summarize short = %q", got)
	}

	long := strings.Repeat("This sentence is filler. ", 30)
	got := Summarize(long, 100)
	if len(got) > 100 || !strings.HasSuffix(got, ".") {
		t.Fatalf("summary should end at a sentence boundary within 100 chars, got %q", got)
	}

	noStop := strings.Repeat("word ", 200)
	got = Summarize(noStop, 50)
	if !strings.HasSuffix(got, "...") || len(got) > 53 {
		t.Fatalf("summary without sentence boundary = %q", got)
	}
}
