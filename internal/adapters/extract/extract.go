// Package extract turns uploaded documents into plain text for analysis.
//
// Plain text, Markdown, Word (.docx) and PDF inputs are supported. Formats
// are picked by file extension first and by content type second.
package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/russross/blackfriday/v2"

	"github.com/okian/sentiscope/internal/domain/model"
	"github.com/okian/sentiscope/pkg/logger"
	"github.com/okian/sentiscope/pkg/metrics"
)

const defaultMaxBytes = 10 << 20

// Format is a supported input format.
type Format string

// Formats.
const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatDocx     Format = "docx"
	FormatPDF      Format = "pdf"
)

const (
	mimeText     = "text/plain"
	mimeMarkdown = "text/markdown"
	mimeDocx     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimePDF      = "application/pdf"

	docxBody = "word/document.xml"
	wordNS   = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
)

// DetectFormat resolves the format of a named input. The extension wins over
// the content type; unknown combinations return ErrUnsupportedFormat.
func DetectFormat(filename, contentType string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".text":
		return FormatText, nil
	case ".md", ".markdown":
		return FormatMarkdown, nil
	case ".docx":
		return FormatDocx, nil
	case ".pdf":
		return FormatPDF, nil
	case "":
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(filename))
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", fmt.Errorf("%w: content type %q", ErrUnsupportedFormat, contentType)
	}
	switch mediaType {
	case mimeText:
		return FormatText, nil
	case mimeMarkdown:
		return FormatMarkdown, nil
	case mimeDocx:
		return FormatDocx, nil
	case mimePDF:
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, mediaType)
	}
}

// Extractor reads documents up to a size cap.
type Extractor struct {
	maxBytes int64
	logger   logger.Logger
}

// New creates an extractor with configuration options.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		maxBytes: defaultMaxBytes,
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MaxBytes returns the configured size cap.
func (e *Extractor) MaxBytes() int64 { return e.maxBytes }

// Extract reads r and returns its text. Inputs larger than the cap return
// ErrTooLarge and text with nothing but whitespace returns
// model.ErrEmptyInput.
func (e *Extractor) Extract(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	format, err := DetectFormat(filename, contentType)
	if err != nil {
		metrics.RecordExtraction("unknown", "unsupported", 0)
		return "", err
	}

	raw, err := io.ReadAll(io.LimitReader(r, e.maxBytes+1))
	if err != nil {
		metrics.RecordExtraction(string(format), "read_error", 0)
		return "", fmt.Errorf("read %s: %w", filename, err)
	}
	if int64(len(raw)) > e.maxBytes {
		metrics.RecordExtraction(string(format), "too_large", 0)
		return "", fmt.Errorf("%w: more than %d bytes", ErrTooLarge, e.maxBytes)
	}

	var text string
	switch format {
	case FormatText:
		text, err = plainText(raw)
	case FormatMarkdown:
		text, err = markdownText(raw)
	case FormatDocx:
		text, err = docxText(raw)
	case FormatPDF:
		text, err = pdfText(raw)
	}
	if err != nil {
		metrics.RecordExtraction(string(format), "decode_error", 0)
		e.logger.Warn(ctx, "extraction failed",
			logger.String("file", filename),
			logger.String("format", string(format)),
			logger.Error(err),
		)
		return "", err
	}

	if strings.TrimSpace(text) == "" {
		metrics.RecordExtraction(string(format), "empty", 0)
		return "", model.ErrEmptyInput
	}

	metrics.RecordExtraction(string(format), "ok", len(text))
	e.logger.Debug(ctx, "document extracted",
		logger.String("file", filename),
		logger.String("format", string(format)),
		logger.Int("bytes", len(raw)),
		logger.Int("text_bytes", len(text)),
	)
	return text, nil
}

func plainText(raw []byte) (string, error) {
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("%w: text is not valid UTF-8", ErrDecode)
	}
	return string(raw), nil
}

// markdownText keeps the visible text of a Markdown document, one line per
// block with whitespace collapsed. Link targets and bare autolinks are
// dropped.
func markdownText(raw []byte) (string, error) {
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("%w: markdown is not valid UTF-8", ErrDecode)
	}

	root := blackfriday.New(blackfriday.WithExtensions(blackfriday.CommonExtensions)).Parse(raw)

	var (
		out  strings.Builder
		line strings.Builder
	)
	flush := func() {
		if s := strings.Join(strings.Fields(line.String()), " "); s != "" {
			out.WriteString(s)
			out.WriteByte('\n')
		}
		line.Reset()
	}

	root.Walk(func(n *blackfriday.Node, entering bool) blackfriday.WalkStatus {
		switch n.Type {
		case blackfriday.Text, blackfriday.Code:
			if entering && !isAutolinkText(n) {
				line.Write(n.Literal)
			}
		case blackfriday.Softbreak, blackfriday.Hardbreak:
			line.WriteByte(' ')
		case blackfriday.CodeBlock:
			line.Write(n.Literal)
			flush()
		case blackfriday.Paragraph, blackfriday.Heading, blackfriday.Item, blackfriday.TableCell:
			if !entering {
				flush()
			}
		case blackfriday.HTMLBlock, blackfriday.HTMLSpan:
			return blackfriday.SkipChildren
		}
		return blackfriday.GoToNext
	})
	flush()

	return out.String(), nil
}

// isAutolinkText reports whether a text node is just the URL of its parent
// link.
func isAutolinkText(n *blackfriday.Node) bool {
	p := n.Parent
	return p != nil && p.Type == blackfriday.Link && bytes.Equal(n.Literal, p.LinkData.Destination)
}

// docxText reads the w:t runs of word/document.xml, one line per w:p
// paragraph.
func docxText(raw []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", fmt.Errorf("%w: docx archive: %v", ErrDecode, err)
	}

	var body *zip.File
	for _, f := range zr.File {
		if f.Name == docxBody {
			body = f
			break
		}
	}
	if body == nil {
		return "", fmt.Errorf("%w: docx has no %s", ErrDecode, docxBody)
	}

	rc, err := body.Open()
	if err != nil {
		return "", fmt.Errorf("%w: open %s: %v", ErrDecode, docxBody, err)
	}
	defer rc.Close()

	var (
		out    strings.Builder
		inText bool
	)
	dec := xml.NewDecoder(rc)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrDecode, docxBody, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != wordNS {
				continue
			}
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				out.WriteByte('\t')
			case "br", "cr":
				out.WriteByte(' ')
			}
		case xml.EndElement:
			if t.Name.Space != wordNS {
				continue
			}
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				out.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				out.Write(t)
			}
		}
	}

	return out.String(), nil
}

// pdfText reads the text layer of every page in page order. Pages without a
// text layer, such as scans, contribute nothing.
func pdfText(raw []byte) (text string, err error) {
	// The reader panics on some malformed object graphs.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%w: pdf: %v", ErrDecode, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", fmt.Errorf("%w: pdf: %v", ErrDecode, err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: pdf text: %v", ErrDecode, err)
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("%w: pdf text: %v", ErrDecode, err)
	}
	if !utf8.Valid(b) {
		return "", fmt.Errorf("%w: pdf text is not valid UTF-8", ErrDecode)
	}
	return string(b), nil
}
