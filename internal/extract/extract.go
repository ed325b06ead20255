// Package extract turns uploaded resume files into plain text.
package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

const (
	MimePDF   = "application/pdf"
	MimeDOCX  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimePlain = "text/plain"
)

// ErrUnsupported is returned for payloads that are not PDF, DOCX or plain text.
var ErrUnsupported = errors.New("unsupported mime type")

// Text extracts text from an in-memory payload.
func Text(ctx context.Context, data []byte, mimeType string, fileName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	normalized := NormalizeMimeType(mimeType, fileName, data)
	switch normalized {
	case MimePDF:
		return extractPDF(data)
	case MimeDOCX:
		return extractDOCX(data)
	case MimePlain:
		if !utf8.Valid(data) {
			return "", errors.New("text file is not valid utf-8")
		}
		return strings.TrimSpace(string(data)), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupported, normalized)
	}
}

// NormalizeMimeType strips parameters and resolves generic types (zip,
// octet-stream, empty) from the archive contents or the file extension.
func NormalizeMimeType(mimeType string, fileName string, data []byte) string {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
	switch clean {
	case "", "application/octet-stream", "application/zip":
	default:
		return clean
	}

	if mapped := mapOOXMLFromZip(data); mapped != "" {
		return mapped
	}

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return MimePDF
	case ".docx":
		return MimeDOCX
	case ".txt":
		return MimePlain
	}
	if clean == "" {
		return "application/octet-stream"
	}
	return clean
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
	return strings.TrimSpace(buf.String()), nil
}

func extractDOCX(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty docx data")
	}
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err == nil {
		defer doc.Close()
		if content := doc.Editable().GetContent(); content != "" {
			return stripDocxXML(content), nil
		}
	}
	return extractDOCXFromZip(data)
}

func extractDOCXFromZip(data []byte) (string, error) {
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

// stripDocxXML keeps only w:t run text. Field codes (w:instrText), deleted
// revisions (w:delText) and inter-element whitespace are dropped.
func stripDocxXML(raw string) string {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var buf strings.Builder
	inText := false
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
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				buf.WriteString("\t")
			}
		case xml.CharData:
			if inText {
				buf.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p", "br":
				if buf.Len() > 0 {
					buf.WriteString("\n")
				}
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
		switch strings.ReplaceAll(f.Name, "\\", "/") {
		case "word/document.xml":
			return MimeDOCX
		case "xl/workbook.xml":
			return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		case "ppt/presentation.xml":
			return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
		}
	}
	return ""
}
