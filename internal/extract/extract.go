package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

const (
	MimePlain    = "text/plain"
	MimeMarkdown = "text/markdown"
	MimePDF      = "application/pdf"
	MimeDOCX     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var (
	// ErrInvalidEncoding is returned for text payloads that are not valid UTF-8
	// or that carry NUL bytes, which Postgres TEXT columns reject.
	ErrInvalidEncoding = errors.New("text is not valid UTF-8")
	// ErrUnsupported is returned for payloads no extractor understands.
	ErrUnsupported = errors.New("unsupported document type")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Text extracts plain text from an uploaded payload. The declared mime type
// wins when specific; otherwise the file extension and content sniffing decide.
// PDFs go through github.com/ledongthuc/pdf, DOCX through its document.xml part.
func Text(ctx context.Context, data []byte, mimeType string, fileName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	switch kind := DetectType(mimeType, fileName, data); kind {
	case MimePlain, MimeMarkdown:
		return decodeUTF8(data)
	case MimePDF:
		text, err := extractPDF(data)
		if err != nil {
			return "", fmt.Errorf("extract pdf: %w", err)
		}
		return text, nil
	case MimeDOCX:
		text, err := extractDOCX(data)
		if err != nil {
			return "", fmt.Errorf("extract docx: %w", err)
		}
		return text, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupported, kind)
	}
}

// DetectType resolves the effective document type of a payload.
func DetectType(mimeType string, fileName string, data []byte) string {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
	switch clean {
	case MimePlain, MimeMarkdown, "text/x-markdown":
		if clean == "text/x-markdown" {
			return MimeMarkdown
		}
		return clean
	case MimePDF, MimeDOCX:
		return clean
	case "application/zip":
		if mapped := mapOOXMLFromZip(data); mapped != "" {
			return mapped
		}
		return clean
	}

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".txt", ".text":
		return MimePlain
	case ".md", ".markdown":
		return MimeMarkdown
	case ".pdf":
		return MimePDF
	case ".docx":
		return MimeDOCX
	}

	sniffed := strings.Split(http.DetectContentType(data), ";")[0]
	switch {
	case sniffed == MimePDF:
		return MimePDF
	case sniffed == "application/zip":
		if mapped := mapOOXMLFromZip(data); mapped != "" {
			return mapped
		}
		return sniffed
	case strings.HasPrefix(sniffed, "text/"), utf8.Valid(data):
		return MimePlain
	}
	if clean != "" {
		return clean
	}
	return sniffed
}

func decodeUTF8(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) || bytes.IndexByte(data, 0) >= 0 {
		return "", ErrInvalidEncoding
	}
	return string(data), nil
}

func extractPDF(data []byte) (string, error) {
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return strings.ReplaceAll(buf.String(), "\x00", ""), nil
}

func extractDOCX(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty docx data")
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var docFile *zip.File
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", errors.New("document.xml file not found")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	return stripDocxXML(string(raw)), nil
}

// stripDocxXML keeps the character data of w:t runs and turns paragraph
// and break ends into newlines. Layout whitespace between elements is dropped.
func stripDocxXML(raw string) string {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var buf strings.Builder
	inText := 0
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return raw
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText++
			}
		case xml.CharData:
			if inText > 0 {
				buf.WriteString(string(t))
			}
		case xml.EndElement:
			if t.Name.Local == "t" && inText > 0 {
				inText--
			}
			if t.Name.Local == "tab" {
				buf.WriteString("\t")
			}
			if (t.Name.Local == "p" || t.Name.Local == "br") && buf.Len() > 0 {
				buf.WriteString("\n")
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

func mapOOXMLFromZip(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ""
	}
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == "word/document.xml" {
			return MimeDOCX
		}
	}
	return ""
}
