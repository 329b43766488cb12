package services

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
)

const (
	MimeText  = "text/plain"
	MimePDF   = "application/pdf"
	MimeDOCX  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeDOC   = "application/msword"
	MimeJPEG  = "image/jpeg"
	MimeJPG   = "image/jpg"
	MimePNG   = "image/png"
	PDFNotice = "PDF processing is temporarily unavailable. Please convert your PDF to text format or use an image of the PDF."
)

var allowedMimeTypes = map[string]bool{
	MimeText: true,
	MimePDF:  true,
	MimeDOCX: true,
	MimeDOC:  true,
	MimeJPEG: true,
	MimeJPG:  true,
	MimePNG:  true,
}

// IsAllowedMimeType reports whether uploads of this type are accepted.
func IsAllowedMimeType(mimeType string) bool {
	return allowedMimeTypes[normalizeMime(mimeType)]
}

func normalizeMime(mimeType string) string {
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = mimeType[:i]
	}
	return strings.ToLower(strings.TrimSpace(mimeType))
}

type FileExtractService struct {
	ocr        ImageTranscriber
	pdfEnabled bool
	ocrTimeout time.Duration
}

// NewFileExtractService builds the extractor. ocr may be nil, in which case
// image uploads fail with an ExtractionError. ocrTimeout bounds each OCR call
// when positive.
func NewFileExtractService(ocr ImageTranscriber, pdfEnabled bool, ocrTimeout time.Duration) *FileExtractService {
	return &FileExtractService{ocr: ocr, pdfEnabled: pdfEnabled, ocrTimeout: ocrTimeout}
}

// Extract dispatches on the declared MIME type. Every extractor failure is
// reported as *ExtractionError; unknown types as *UnsupportedFileTypeError.
func (s *FileExtractService) Extract(ctx context.Context, path, mimeType string) (string, error) {
	mimeType = normalizeMime(mimeType)
	if !allowedMimeTypes[mimeType] {
		return "", &UnsupportedFileTypeError{MimeType: mimeType}
	}

	var (
		text string
		err  error
	)
	switch mimeType {
	case MimeText:
		text, err = s.extractTXT(path)
	case MimePDF:
		if !s.pdfEnabled {
			return PDFNotice, nil
		}
		text, err = s.extractPDF(path)
	case MimeDOCX, MimeDOC:
		text, err = s.extractDOCX(path)
	case MimeJPEG, MimeJPG, MimePNG:
		text, err = s.extractImage(ctx, path, mimeType)
	}
	if err != nil {
		return "", &ExtractionError{Message: err.Error(), Err: err}
	}

	return text, nil
}

func (s *FileExtractService) extractTXT(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	text := normalizeExtractedText(string(b))
	if text == "" {
		return "", fmt.Errorf("text file is empty")
	}

	return text, nil
}

func (s *FileExtractService) extractPDF(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var b strings.Builder
	totalPage := reader.NumPage()
	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(content)
		b.WriteString("\n")
	}

	text := normalizeExtractedText(b.String())
	if text == "" {
		return "", fmt.Errorf("no extractable text found in pdf")
	}

	return text, nil
}

// extractDOCX also serves legacy .doc uploads that are really OOXML; true
// binary .doc files fail with a zip error.
func (s *FileExtractService) extractDOCX(path string) (string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open word document: %w", err)
	}
	defer r.Close()

	var documentXML []byte
	for _, f := range r.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		documentXML, err = io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", err
		}
		break
	}

	if len(documentXML) == 0 {
		return "", fmt.Errorf("docx document.xml not found")
	}

	text := normalizeExtractedText(stripDOCXML(documentXML))
	if text == "" {
		return "", fmt.Errorf("no extractable text found in docx")
	}

	return text, nil
}

func (s *FileExtractService) extractImage(ctx context.Context, path, mimeType string) (string, error) {
	if s.ocr == nil {
		return "", fmt.Errorf("image text recognition is not configured")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	if s.ocrTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.ocrTimeout)
		defer cancel()
	}

	text, err := s.ocr.TranscribeImage(ctx, data, mimeType)
	if err != nil {
		return "", err
	}
	return normalizeExtractedText(text), nil
}

var xmlTagPattern = regexp.MustCompile(`<[^>]+>`)

func stripDOCXML(src []byte) string {
	s := string(src)

	// paragraphs and breaks
	s = strings.ReplaceAll(s, "</w:p>", "\n")
	s = strings.ReplaceAll(s, "<w:br/>", "\n")
	s = strings.ReplaceAll(s, "<w:br />", "\n")
	s = strings.ReplaceAll(s, "<w:tab/>", "\t")

	s = xmlTagPattern.ReplaceAllString(s, "")

	replacer := strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&apos;", "'",
	)
	return replacer.Replace(s)
}

func normalizeExtractedText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	lines := strings.Split(s, "\n")
	buf := bytes.Buffer{}

	emptyCount := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			emptyCount++
			if emptyCount > 1 {
				continue
			}
			buf.WriteString("\n")
			continue
		}
		emptyCount = 0
		buf.WriteString(trimmed)
		buf.WriteString("\n")
	}

	return strings.TrimSpace(buf.String())
}
