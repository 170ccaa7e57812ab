package format

import (
	"archive/zip"
	"bytes"
	"testing"
)

// buildZip assembles an in-memory zip archive from name/content pairs.
func buildZip(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("creating %s in zip: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}
	return buf.Bytes()
}

const docxContentTypes = `<?xml version="1.0" encoding="UTF-8"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

func TestDetectMagicBytes(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Kind
	}{
		{"pdf", []byte("%PDF-1.7 rest"), PDF},
		{"rtf", []byte(`{\rtf1\ansi hello}`), RTF},
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00}, JPEG},
		{"png", []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n', 0x00}, PNG},
		{"tiff le", []byte{'I', 'I', 0x2A, 0x00, 0x08}, TIFF},
		{"tiff be", []byte{'M', 'M', 0x00, 0x2A, 0x08}, TIFF},
		{"webp", append([]byte("RIFF"), append([]byte{0, 0, 0, 0}, []byte("WEBPVP8 ")...)...), WebP},
		{"xml decl", []byte(`<?xml version="1.0"?><root/>`), XML},
		{"svg via decl", []byte(`<?xml version="1.0"?><svg xmlns="http://www.w3.org/2000/svg"/>`), SVG},
		{"svg bare", []byte(`<svg xmlns="http://www.w3.org/2000/svg"/>`), SVG},
		{"html doctype", []byte("<!doctype html><html></html>"), HTML},
		{"html tag", []byte("<HTML><body></body></HTML>"), HTML},
		{"plain text", []byte("just some words"), Text},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect(tt.data, ""); got != tt.want {
				t.Errorf("Detect = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectZipSubKinds(t *testing.T) {
	tests := []struct {
		name    string
		entries map[string]string
		want    Kind
	}{
		{
			"docx by content types",
			map[string]string{
				"[Content_Types].xml": docxContentTypes,
				"word/document.xml":   "<w:document/>",
			},
			DOCX,
		},
		{
			"docx by prefix fallback",
			map[string]string{"word/document.xml": "<w:document/>"},
			DOCX,
		},
		{
			"pptx by prefix",
			map[string]string{"ppt/presentation.xml": "<p:presentation/>"},
			PPTX,
		},
		{
			"xlsx by prefix",
			map[string]string{"xl/workbook.xml": "<workbook/>"},
			XLSX,
		},
		{
			"odt by mimetype",
			map[string]string{
				"mimetype":    "application/vnd.oasis.opendocument.text",
				"content.xml": "<office:document-content/>",
			},
			ODT,
		},
		{
			"ods by mimetype",
			map[string]string{"mimetype": "application/vnd.oasis.opendocument.spreadsheet"},
			ODS,
		},
		{
			"plain zip",
			map[string]string{"readme.txt": "hello"},
			Zip,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect(buildZip(t, tt.entries), ""); got != tt.want {
				t.Errorf("Detect = %v, want %v", got, tt.want)
			}
		})
	}
}

// The manifest decides the zip sub-kind even when the extension claims
// something else.
func TestDetectZipIgnoresExtension(t *testing.T) {
	data := buildZip(t, map[string]string{
		"mimetype": "application/vnd.oasis.opendocument.text",
	})
	if got := Detect(data, "misnamed.xlsx"); got != ODT {
		t.Errorf("Detect = %v, want ODT despite .xlsx extension", got)
	}
}

func TestDetectExtensionTieBreak(t *testing.T) {
	// Printable content with no signature: the extension decides.
	data := []byte("id,name\n1,alpha\n")
	if got := Detect(data, "data.csv"); got != Text {
		t.Errorf("Detect(csv) = %v, want Text", got)
	}
	// An XML declaration outranks a misleading .txt extension.
	if got := Detect([]byte(`<?xml version="1.0"?><r/>`), "doc.txt"); got != XML {
		t.Errorf("Detect = %v, want XML over extension", got)
	}
}

func TestDetectUnknown(t *testing.T) {
	if got := Detect([]byte{0x00, 0x01, 0x02, 0x03}, ""); got != Unknown {
		t.Errorf("Detect(binary junk) = %v, want Unknown", got)
	}
	if got := Detect(nil, ""); got != Unknown {
		t.Errorf("Detect(nil) = %v, want Unknown", got)
	}
}

func TestDetectDeterministic(t *testing.T) {
	data := buildZip(t, map[string]string{
		"[Content_Types].xml": docxContentTypes,
		"word/document.xml":   "<w:document/>",
	})
	first := Detect(data, "a.docx")
	for i := 0; i < 5; i++ {
		if got := Detect(data, "a.docx"); got != first {
			t.Fatalf("run %d: Detect = %v, want %v", i, got, first)
		}
	}
}

func TestKindPredicates(t *testing.T) {
	if !DOCX.IsZipKind() || !ODT.IsZipKind() || PDF.IsZipKind() {
		t.Error("IsZipKind misclassifies")
	}
	if !JPEG.IsImageKind() || PDF.IsImageKind() {
		t.Error("IsImageKind misclassifies")
	}
	if DOCX.Extension() != ".docx" || Unknown.Extension() != "" {
		t.Error("Extension misclassifies")
	}
}
