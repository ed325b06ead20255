package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>
<w:p><w:r><w:t>Senior Go engineer, Kubernetes and Postgres</w:t></w:r></w:p>
</w:body>
</w:document>`

func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create zip entry: %v", err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("write zip entry: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func minimalDocx(t *testing.T) []byte {
	return buildZip(t, map[string]string{
		"[Content_Types].xml": `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"></Types>`,
		"word/document.xml":   documentXML,
	})
}

func TestText_DocxParagraphs(t *testing.T) {
	got, err := Text(context.Background(), minimalDocx(t), MimeDOCX, "cv.docx")
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if got != "Jane Doe\nSenior Go engineer, Kubernetes and Postgres" {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestText_DocxSkipsFieldCodesAndDeletions(t *testing.T) {
	body := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p>
      <w:r><w:t>Portfolio:</w:t></w:r>
      <w:r><w:instrText xml:space="preserve"> HYPERLINK "https://jane.dev" </w:instrText></w:r>
      <w:r><w:tab/><w:t>jane.dev</w:t></w:r>
    </w:p>
    <w:p>
      <w:del><w:r><w:delText>Junior</w:delText></w:r></w:del>
      <w:r><w:t xml:space="preserve">Staff </w:t></w:r><w:r><w:t>engineer</w:t></w:r>
    </w:p>
  </w:body>
</w:document>`
	data := buildZip(t, map[string]string{
		"[Content_Types].xml": `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"></Types>`,
		"word/document.xml":   body,
	})

	got, err := Text(context.Background(), data, MimeDOCX, "cv.docx")
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if got != "Portfolio:\tjane.dev\nStaff engineer" {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestStripDocxXMLIgnoresWhitespaceBetweenElements(t *testing.T) {
	if got := stripDocxXML(documentXML); got != "Jane Doe\nSenior Go engineer, Kubernetes and Postgres" {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestText_ZipDocxNormalizes(t *testing.T) {
	got, err := Text(context.Background(), minimalDocx(t), "application/zip", "test.docx")
	if err != nil {
		t.Fatalf("expected docx to extract from zip mime, got error: %v", err)
	}
	if !strings.Contains(got, "Jane Doe") {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestText_RealZipRejected(t *testing.T) {
	data := buildZip(t, map[string]string{"notes.txt": "hello"})

	_, err := Text(context.Background(), data, "application/zip", "notes.zip")
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
	if !strings.Contains(err.Error(), "application/zip") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestText_PlainText(t *testing.T) {
	got, err := Text(context.Background(), []byte("  hello resume \n"), "text/plain; charset=utf-8", "cv.txt")
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if got != "hello resume" {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestNormalizeMimeType_ExtensionFallback(t *testing.T) {
	cases := map[string]string{
		"cv.pdf":  MimePDF,
		"cv.txt":  MimePlain,
		"cv.DOCX": MimeDOCX,
		"cv.png":  "application/octet-stream",
	}
	for name, want := range cases {
		if got := NormalizeMimeType("application/octet-stream", name, nil); got != want {
			t.Fatalf("%s: expected %s, got %s", name, want, got)
		}
	}
}

func TestText_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Text(ctx, []byte("x"), MimePlain, "a.txt"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
