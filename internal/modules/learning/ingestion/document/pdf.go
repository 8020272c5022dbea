package document

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/yungbote/studyforge-backend/internal/domain/aggregates"
)

type pdfDocument struct {
	file   *os.File
	reader *pdf.Reader
}

// OpenPDF opens path with the native reader. When the native parser rejects the file and
// pdftotext is installed, the text is extracted through it instead.
func OpenPDF(ctx context.Context, path string) (Document, error) {
	const op = "document.open_pdf"
	f, err := os.Open(path)
	if err != nil {
		return nil, aggregates.InvalidDocument(op, "cannot open pdf", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, aggregates.InvalidDocument(op, "cannot stat pdf", err)
	}
	reader, err := newReader(f, info.Size())
	if err != nil {
		_ = f.Close()
		pages, fbErr := pdfToTextLocal(ctx, path)
		if fbErr != nil {
			return nil, aggregates.InvalidDocument(op, "pdf is unreadable", fmt.Errorf("%w (pdftotext: %v)", err, fbErr))
		}
		return FromPages(pages), nil
	}
	if reader.NumPage() == 0 {
		_ = f.Close()
		return nil, aggregates.InvalidDocument(op, "pdf has no pages", nil)
	}
	return &pdfDocument{file: f, reader: reader}, nil
}

// newReader guards against parser panics on malformed cross-reference tables.
func newReader(f *os.File, size int64) (r *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r, err = nil, fmt.Errorf("pdf parser panic: %v", rec)
		}
	}()
	return pdf.NewReader(f, size)
}

func (d *pdfDocument) NumPages() int { return d.reader.NumPage() }

func (d *pdfDocument) PageText(ctx context.Context, page int) (text string, err error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if page < 1 || page > d.reader.NumPage() {
		return "", fmt.Errorf("page %d out of range [1,%d]", page, d.reader.NumPage())
	}
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("page %d: parser panic: %v", page, rec)
		}
	}()
	p := d.reader.Page(page)
	if p.V.IsNull() {
		return "", nil
	}
	return p.GetPlainText(nil)
}

func (d *pdfDocument) Close() error {
	if d.file == nil {
		return nil
	}
	return d.file.Close()
}

func pdfToTextLocal(ctx context.Context, path string) ([]string, error) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return nil, fmt.Errorf("pdftotext not found in PATH: %w", err)
	}
	callCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(callCtx, "pdftotext", "-layout", "-enc", "UTF-8", path, "-")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("pdftotext failed: %w (stderr=%s)", err, strings.TrimSpace(stderr.String()))
	}
	// pdftotext terminates every page with a form feed.
	pages := strings.Split(strings.TrimSuffix(stdout.String(), "\f"), "\f")
	if len(pages) == 0 || strings.TrimSpace(strings.Join(pages, "")) == "" {
		return nil, fmt.Errorf("pdftotext produced no text")
	}
	return pages, nil
}
