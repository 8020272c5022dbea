// Package document exposes uploaded files as page-addressable text.
package document

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/yungbote/studyforge-backend/internal/domain/aggregates"
)

// Document is a readable handle with page-by-page text extraction. Pages are 1-based.
// PageText may fail for individual pages; callers skip those pages.
type Document interface {
	NumPages() int
	PageText(ctx context.Context, page int) (string, error)
	Close() error
}

// Open sniffs the file at path and returns the matching Document.
// Unreadable or unsupported files yield an invalid_document error.
func Open(ctx context.Context, path string) (Document, error) {
	const op = "document.open"
	f, err := os.Open(path)
	if err != nil {
		return nil, aggregates.InvalidDocument(op, "cannot open source file", err)
	}
	head := make([]byte, 4096)
	n, err := io.ReadFull(f, head)
	_ = f.Close()
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, aggregates.InvalidDocument(op, "cannot read source file", err)
	}
	head = head[:n]
	if len(head) == 0 {
		return nil, aggregates.InvalidDocument(op, "source file is empty", nil)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case isPDF(head):
		return OpenPDF(ctx, path)
	case ext == ".pdf":
		return nil, aggregates.InvalidDocument(op, "file claims pdf but has no %PDF header", nil)
	case isProbablyText(head):
		return OpenText(path)
	default:
		return nil, aggregates.InvalidDocument(op, fmt.Sprintf("unsupported file type %q", ext), nil)
	}
}

// OpenText reads a UTF-8 text file. Form feeds separate pages.
func OpenText(path string) (Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, aggregates.InvalidDocument("document.open_text", "cannot read text file", err)
	}
	return FromPages(strings.Split(string(raw), "\f")), nil
}

type pagesDocument struct {
	pages []string
}

// FromPages wraps already-extracted page texts.
func FromPages(pages []string) Document {
	cp := make([]string, len(pages))
	copy(cp, pages)
	return &pagesDocument{pages: cp}
}

func (d *pagesDocument) NumPages() int { return len(d.pages) }

func (d *pagesDocument) PageText(ctx context.Context, page int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if page < 1 || page > len(d.pages) {
		return "", fmt.Errorf("page %d out of range [1,%d]", page, len(d.pages))
	}
	return d.pages[page-1], nil
}

func (d *pagesDocument) Close() error { return nil }

func isPDF(b []byte) bool {
	return bytes.HasPrefix(b, []byte("%PDF-"))
}

// isProbablyText treats a sample with no NULs and mostly printable bytes as text.
func isProbablyText(b []byte) bool {
	good := 0
	for _, c := range b {
		if c == 0x00 {
			return false
		}
		if c == '\n' || c == '\r' || c == '\t' || c == '\f' || (c >= 0x20 && c <= 0x7E) || c >= 0x80 {
			good++
		}
	}
	return float64(good)/float64(len(b)) > 0.95
}
