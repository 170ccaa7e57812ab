// Package format provides file format detection for the linkscrape library.
package format

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"path/filepath"
	"strings"
)

// Kind represents a supported document format.
type Kind int

const (
	// Unknown indicates an unrecognized format.
	Unknown Kind = iota
	// Text indicates a plain text document.
	Text
	// PDF indicates a PDF document.
	PDF
	// RTF indicates a Rich Text Format document.
	RTF
	// XML indicates a generic XML document.
	XML
	// SVG indicates an SVG image (XML-based).
	SVG
	// HTML indicates an HTML document.
	HTML
	// DOCX indicates a Microsoft Word (.docx) document.
	DOCX
	// PPTX indicates a Microsoft PowerPoint (.pptx) document.
	PPTX
	// XLSX indicates a Microsoft Excel (.xlsx) document.
	XLSX
	// ODT indicates an OpenDocument Text (.odt) document.
	ODT
	// ODS indicates an OpenDocument Spreadsheet (.ods) document.
	ODS
	// ODP indicates an OpenDocument Presentation (.odp) document.
	ODP
	// OTT indicates an OpenDocument Text template (.ott) document.
	OTT
	// Zip indicates a zip archive whose sub-kind could not be determined.
	Zip
	// JPEG indicates a JPEG image.
	JPEG
	// PNG indicates a PNG image.
	PNG
	// TIFF indicates a TIFF image.
	TIFF
	// WebP indicates a WebP image.
	WebP
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case Text:
		return "Text"
	case PDF:
		return "PDF"
	case RTF:
		return "RTF"
	case XML:
		return "XML"
	case SVG:
		return "SVG"
	case HTML:
		return "HTML"
	case DOCX:
		return "DOCX"
	case PPTX:
		return "PPTX"
	case XLSX:
		return "XLSX"
	case ODT:
		return "ODT"
	case ODS:
		return "ODS"
	case ODP:
		return "ODP"
	case OTT:
		return "OTT"
	case Zip:
		return "Zip"
	case JPEG:
		return "JPEG"
	case PNG:
		return "PNG"
	case TIFF:
		return "TIFF"
	case WebP:
		return "WebP"
	default:
		return "Unknown"
	}
}

// Extension returns the typical file extension for the kind.
func (k Kind) Extension() string {
	switch k {
	case Text:
		return ".txt"
	case PDF:
		return ".pdf"
	case RTF:
		return ".rtf"
	case XML:
		return ".xml"
	case SVG:
		return ".svg"
	case HTML:
		return ".html"
	case DOCX:
		return ".docx"
	case PPTX:
		return ".pptx"
	case XLSX:
		return ".xlsx"
	case ODT:
		return ".odt"
	case ODS:
		return ".ods"
	case ODP:
		return ".odp"
	case OTT:
		return ".ott"
	case Zip:
		return ".zip"
	case JPEG:
		return ".jpg"
	case PNG:
		return ".png"
	case TIFF:
		return ".tiff"
	case WebP:
		return ".webp"
	default:
		return ""
	}
}

// IsZipKind reports whether the kind is a zip-based container format.
func (k Kind) IsZipKind() bool {
	switch k {
	case DOCX, PPTX, XLSX, ODT, ODS, ODP, OTT, Zip:
		return true
	}
	return false
}

// IsImageKind reports whether the kind is a raster image format.
func (k Kind) IsImageKind() bool {
	switch k {
	case JPEG, PNG, TIFF, WebP:
		return true
	}
	return false
}

// Confidence expresses how certain a detector is about its answer.
type Confidence int

const (
	// NoMatch means the detector found none of its signatures.
	NoMatch Confidence = iota
	// Weak means the content is plausible but carries no signature
	// (e.g. printable bytes for plain text).
	Weak
	// Strong means a magic-byte signature matched.
	Strong
	// Definitive means a signature matched and internal structure
	// confirmed the sub-kind (e.g. zip manifest inspection).
	Definitive
)

// detector is a pure function from leading bytes to a kind with a
// confidence. Detectors never mutate state; the same bytes always yield
// the same answer.
type detector func(data []byte) (Kind, Confidence)

// detectors is the statically ordered candidate list. Highest confidence
// wins; ties go to the earlier entry.
var detectors = []detector{
	detectZip,
	detectPDF,
	detectRTF,
	detectImage,
	detectHTML,
	detectXML,
	detectText,
}

// Detect determines the format of data. The filename is consulted only
// to break ties when magic bytes are inconclusive; zip sub-kinds are
// always resolved from the archive's own manifest, never by extension.
// Detection is deterministic: the same input always maps to the same
// Kind.
func Detect(data []byte, filename string) Kind {
	best, bestConf := Unknown, NoMatch
	for _, d := range detectors {
		if k, conf := d(data); conf > bestConf {
			best, bestConf = k, conf
		}
	}
	if bestConf >= Strong {
		return best
	}
	if ext := detectByExtension(filename); ext != Unknown {
		return ext
	}
	return best
}

// detectByExtension maps a filename extension to a kind. Used only as a
// tie-break for inconclusive content.
func detectByExtension(filename string) Kind {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".csv", ".md", ".log":
		return Text
	case ".pdf":
		return PDF
	case ".rtf":
		return RTF
	case ".xml":
		return XML
	case ".svg":
		return SVG
	case ".html", ".htm":
		return HTML
	case ".docx":
		return DOCX
	case ".pptx":
		return PPTX
	case ".xlsx":
		return XLSX
	case ".odt":
		return ODT
	case ".ods":
		return ODS
	case ".odp":
		return ODP
	case ".ott":
		return OTT
	case ".jpg", ".jpeg":
		return JPEG
	case ".png":
		return PNG
	case ".tif", ".tiff":
		return TIFF
	case ".webp":
		return WebP
	default:
		return Unknown
	}
}

func detectPDF(data []byte) (Kind, Confidence) {
	if bytes.HasPrefix(data, []byte("%PDF")) {
		return PDF, Strong
	}
	return Unknown, NoMatch
}

func detectRTF(data []byte) (Kind, Confidence) {
	if bytes.HasPrefix(data, []byte(`{\rtf`)) {
		return RTF, Strong
	}
	return Unknown, NoMatch
}

func detectImage(data []byte) (Kind, Confidence) {
	switch {
	case bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}):
		return JPEG, Strong
	case bytes.HasPrefix(data, []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}):
		return PNG, Strong
	case bytes.HasPrefix(data, []byte{'I', 'I', 0x2A, 0x00}),
		bytes.HasPrefix(data, []byte{'M', 'M', 0x00, 0x2A}):
		return TIFF, Strong
	case len(data) >= 12 && bytes.HasPrefix(data, []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return WebP, Strong
	}
	return Unknown, NoMatch
}

// detectXML matches an XML declaration or a leading svg element, and
// upgrades to SVG when the root element is svg.
func detectXML(data []byte) (Kind, Confidence) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if !bytes.HasPrefix(trimmed, []byte("<?xml")) {
		if bytes.HasPrefix(trimmed, []byte("<svg")) {
			return SVG, Strong
		}
		return Unknown, NoMatch
	}
	head := trimmed
	if len(head) > 1024 {
		head = head[:1024]
	}
	if bytes.Contains(head, []byte("<svg")) {
		return SVG, Definitive
	}
	return XML, Strong
}

// detectHTML checks for HTML signatures, case-insensitive for the
// doctype. An XML declaration followed by html-like content is XHTML.
func detectHTML(data []byte) (Kind, Confidence) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return Unknown, NoMatch
	}
	head := trimmed
	if len(head) > 512 {
		head = head[:512]
	}
	upper := strings.ToUpper(string(head))
	switch {
	case strings.HasPrefix(upper, "<!DOCTYPE HTML"), strings.HasPrefix(upper, "<HTML"):
		return HTML, Strong
	case strings.HasPrefix(upper, "<?XML") && strings.Contains(upper, "<HTML"):
		return HTML, Definitive
	}
	return Unknown, NoMatch
}

// detectText accepts content that looks like printable text. Weak on
// purpose: any signature-bearing format beats it, and the extension may
// still override the answer.
func detectText(data []byte) (Kind, Confidence) {
	if len(data) == 0 {
		return Unknown, NoMatch
	}
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	for _, b := range head {
		if b == 0 {
			return Unknown, NoMatch
		}
	}
	return Text, Weak
}

// detectZip identifies a zip container and resolves its document
// sub-kind by inspecting the archive's own manifest entries: the ODF
// mimetype entry, or the OOXML content-types list.
func detectZip(data []byte) (Kind, Confidence) {
	if !bytes.HasPrefix(data, []byte{0x50, 0x4B, 0x03, 0x04}) {
		return Unknown, NoMatch
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		// Signature matched but the central directory is unreadable;
		// report the container so the caller can fail it properly.
		return Zip, Strong
	}
	if k := odfKind(zr); k != Unknown {
		return k, Definitive
	}
	if k := ooxmlKind(zr); k != Unknown {
		return k, Definitive
	}
	return Zip, Strong
}

// odfKind reads the ODF mimetype entry, which the ODF packaging rules
// require to be the first, uncompressed entry of the archive.
func odfKind(zr *zip.Reader) Kind {
	for _, f := range zr.File {
		if f.Name != "mimetype" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return Unknown
		}
		data := make([]byte, 256)
		n, _ := rc.Read(data)
		rc.Close()
		switch strings.TrimSpace(string(data[:n])) {
		case "application/vnd.oasis.opendocument.text":
			return ODT
		case "application/vnd.oasis.opendocument.spreadsheet":
			return ODS
		case "application/vnd.oasis.opendocument.presentation":
			return ODP
		case "application/vnd.oasis.opendocument.text-template":
			return OTT
		}
		return Unknown
	}
	return Unknown
}

// contentTypesXML is the [Content_Types].xml package content-type list.
type contentTypesXML struct {
	XMLName   xml.Name `xml:"Types"`
	Overrides []struct {
		PartName    string `xml:"PartName,attr"`
		ContentType string `xml:"ContentType,attr"`
	} `xml:"Override"`
}

// ooxmlKind resolves the OOXML sub-kind from [Content_Types].xml,
// falling back to the well-known part prefixes when the content-type
// list is unreadable.
func ooxmlKind(zr *zip.Reader) Kind {
	for _, f := range zr.File {
		if f.Name != "[Content_Types].xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			break
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			break
		}
		var types contentTypesXML
		if err := xml.Unmarshal(data, &types); err != nil {
			break
		}
		for _, o := range types.Overrides {
			switch {
			case strings.Contains(o.ContentType, "wordprocessingml.document"),
				strings.Contains(o.ContentType, "wordprocessingml.template"):
				return DOCX
			case strings.Contains(o.ContentType, "presentationml.presentation"),
				strings.Contains(o.ContentType, "presentationml.template"),
				strings.Contains(o.ContentType, "presentationml.slideshow"):
				return PPTX
			case strings.Contains(o.ContentType, "spreadsheetml.sheet"),
				strings.Contains(o.ContentType, "spreadsheetml.template"):
				return XLSX
			}
		}
		break
	}
	// Content-type list absent or inconclusive: use part prefixes.
	for _, f := range zr.File {
		switch {
		case strings.HasPrefix(f.Name, "word/"):
			return DOCX
		case strings.HasPrefix(f.Name, "ppt/"):
			return PPTX
		case strings.HasPrefix(f.Name, "xl/"):
			return XLSX
		}
	}
	return Unknown
}
