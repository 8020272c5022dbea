package segment

import (
	"context"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/yungbote/studyforge-backend/internal/domain/aggregates"
	"github.com/yungbote/studyforge-backend/internal/modules/learning/ingestion/document"
	"github.com/yungbote/studyforge-backend/internal/modules/learning/rules"
	"github.com/yungbote/studyforge-backend/internal/platform/logger"
)

// Chapter is a completed segment ready to persist. Number is assigned in emission order from 1.
type Chapter struct {
	Number  int
	Title   string
	Content string
	Summary string
}

// Sink receives each chapter as soon as it is complete. An error aborts segmentation;
// chapters already handed to the sink stay where the sink put them.
type Sink func(ctx context.Context, ch Chapter) error

type Segmenter struct {
	rules *rules.Set
	log   *logger.Logger
}

func New(r *rules.Set, log *logger.Logger) *Segmenter {
	if r == nil {
		r = rules.Default()
	}
	return &Segmenter{rules: r, log: log.With("component", "Segmenter")}
}

type scanState struct {
	pendingTitle string
	buf          strings.Builder
	headers      int
	next         int
	out          []Chapter
}

// Segment scans doc page by page and emits chapters to sink in order.
func (s *Segmenter) Segment(ctx context.Context, doc document.Document, sink Sink) ([]Chapter, error) {
	const op = "segment"
	if doc == nil {
		return nil, aggregates.InvalidDocument(op, "no document", nil)
	}
	pages := doc.NumPages()
	if pages <= 0 {
		return nil, aggregates.InvalidDocument(op, "document has no pages", nil)
	}

	st := &scanState{next: 1}
	failed := 0
	for p := 1; p <= pages; p++ {
		if err := ctx.Err(); err != nil {
			return st.out, err
		}
		text, err := doc.PageText(ctx, p)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return st.out, ctxErr
			}
			failed++
			s.log.Warn("page extraction failed, skipping", "page", p, "error", err)
			continue
		}
		for _, line := range strings.Split(text, "\n") {
			line = strings.TrimRight(line, " \t\r")
			if s.IsHeader(line) {
				st.headers++
				if err := s.flush(ctx, st, sink); err != nil {
					return st.out, err
				}
				st.pendingTitle = strings.TrimSpace(line)
				continue
			}
			st.buf.WriteString(line)
			st.buf.WriteByte('\n')
		}
	}
	if failed == pages {
		return nil, aggregates.InvalidDocument(op, "no page could be extracted", nil)
	}

	if st.headers == 0 {
		content := strings.TrimSpace(st.buf.String())
		if content == "" {
			return nil, aggregates.EmptyDocument(op, "document contains no text")
		}
		ch := Chapter{
			Number:  st.next,
			Title:   s.rules.Segmentation.FallbackTitle,
			Content: content,
			Summary: Summarize(content, s.rules.Segmentation.SummaryMaxChars),
		}
		if err := sink(ctx, ch); err != nil {
			return nil, err
		}
		return []Chapter{ch}, nil
	}

	if err := s.flush(ctx, st, sink); err != nil {
		return st.out, err
	}
	if len(st.out) == 0 {
		return nil, aggregates.EmptyDocument(op, "headings found but every chapter is empty")
	}
	s.log.Debug("segmentation complete", "pages", pages, "failed_pages", failed, "chapters", len(st.out))
	return st.out, nil
}

// flush emits the buffered text under the pending title. Empty buffers are dropped.
func (s *Segmenter) flush(ctx context.Context, st *scanState, sink Sink) error {
	content := strings.TrimSpace(st.buf.String())
	title := st.pendingTitle
	st.buf.Reset()
	if content == "" {
		if title != "" {
			s.log.Debug("dropping empty chapter", "title", title)
		}
		return nil
	}
	if title == "" {
		title = s.rules.Segmentation.PreambleTitle
	}
	ch := Chapter{
		Number:  st.next,
		Title:   title,
		Content: content,
		Summary: Summarize(content, s.rules.Segmentation.SummaryMaxChars),
	}
	if err := sink(ctx, ch); err != nil {
		return err
	}
	st.next++
	st.out = append(st.out, ch)
	return nil
}

// IsHeader reports whether line looks like a chapter heading.
func (s *Segmenter) IsHeader(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" || utf8.RuneCountInString(line) > s.rules.Segmentation.MaxHeaderLength {
		return false
	}
	for _, re := range s.rules.HeaderPatterns() {
		if re.MatchString(line) {
			return true
		}
	}
	return s.isAllCapsHeading(line)
}

func (s *Segmenter) isAllCapsHeading(line string) bool {
	if strings.ContainsAny(line[len(line)-1:], ".!?,;") {
		return false
	}
	if len(strings.Fields(line)) > s.rules.Segmentation.AllCapsMaxWords {
		return false
	}
	letters := 0
	for _, r := range line {
		if !unicode.IsLetter(r) {
			continue
		}
		if !unicode.IsUpper(r) {
			return false
		}
		letters++
	}
	return letters >= 3
}

var (
	paragraphBreak = regexp.MustCompile(`\n\s*\n`)
	sentenceEnd    = regexp.MustCompile(`[.!?]["')\]]?(\s|$)`)
)

// Summarize returns the first paragraph of content, cut to at most max runes at the last
// sentence boundary that fits. Without one it cuts at a word boundary and appends "...".
func Summarize(content string, max int) string {
	var first string
	for _, p := range paragraphBreak.Split(strings.TrimSpace(content), -1) {
		if p = strings.Join(strings.Fields(p), " "); p != "" {
			first = p
			break
		}
	}
	if max <= 0 || utf8.RuneCountInString(first) <= max {
		return first
	}
	cut := string([]rune(first)[:max])
	if locs := sentenceEnd.FindAllStringIndex(cut, -1); len(locs) > 0 {
		end := locs[len(locs)-1][1]
		return strings.TrimSpace(cut[:end])
	}
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimSpace(cut) + "..."
}
