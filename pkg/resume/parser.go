package resume

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	pdf "github.com/ledongthuc/pdf"
)

var ErrUnsupportedFormat = errors.New("unsupported file format: only pdf, docx and txt are allowed")

var (
	reXMLTags  = regexp.MustCompile(`<[^>]+>`)
	reHSpace   = regexp.MustCompile(`[ \t\r\f\v]+`)
	reNewlines = regexp.MustCompile(`\n+`)
)

// ParseResumeText extracts plain text from supported resume formats.
// Supports: .pdf, .docx and .txt/.md
func ParseResumeText(filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return extractTextFromPDF(data)
	case ".docx":
		return extractTextFromDocx(data)
	case ".txt", ".md":
		if !utf8.Valid(data) {
			return "", errors.New("text resume is not valid utf-8")
		}
		return normalizeWhitespace(string(data)), nil
	default:
		return "", ErrUnsupportedFormat
	}
}

func extractTextFromPDF(data []byte) (string, error) {
	reader := bytes.NewReader(data)
	r, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", err
	}
	// GetPlainText loses line structure; rebuild it row by row so position
	// headers stay on their own lines.
	var buf strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		for _, row := range rows {
			for _, word := range row.Content {
				buf.WriteString(word.S)
			}
			buf.WriteByte('\n')
		}
	}
	if strings.TrimSpace(buf.String()) == "" {
		rs, err := r.GetPlainText()
		if err != nil {
			return "", err
		}
		var plain bytes.Buffer
		if _, err = io.Copy(&plain, rs); err != nil {
			return "", err
		}
		return normalizeWhitespace(plain.String()), nil
	}
	return normalizeWhitespace(buf.String()), nil
}

func extractTextFromDocx(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	var docXML []byte
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			rc, err := f.Open()
			if err != nil {
				return "", err
			}
			docXML, err = io.ReadAll(rc)
			rc.Close()
			if err != nil {
				return "", err
			}
			break
		}
	}
	if len(docXML) == 0 {
		return "", errors.New("no document.xml found in docx")
	}
	xml := string(docXML)
	// Convert paragraph boundaries to newlines (very naive but effective).
	xml = strings.ReplaceAll(xml, "</w:p>", "\n")
	xml = strings.ReplaceAll(xml, "<w:tab/>", "\t")
	txt := reXMLTags.ReplaceAllString(xml, "")
	return normalizeWhitespace(txt), nil
}

func normalizeWhitespace(s string) string {
	// Collapse excessive whitespace and trim
	s = strings.ReplaceAll(s, "\u00A0", " ")
	s = reHSpace.ReplaceAllString(s, " ")
	// Preserve newlines but collapse runs
	s = reNewlines.ReplaceAllString(s, "\n")
	return strings.TrimSpace(s)
}
