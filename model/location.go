package model

import (
	"encoding/json"
	"fmt"
)

// Location identifies where in a source document a link or diagnostic
// originates. It is a closed union: the concrete types in this package
// are the only implementations.
type Location interface {
	fmt.Stringer
	isLocation()
}

// ByteOffset locates a finding at an absolute byte position in the
// source document.
type ByteOffset int64

func (ByteOffset) isLocation() {}

// String returns the offset in "byte N" form.
func (b ByteOffset) String() string {
	return fmt.Sprintf("byte %d", int64(b))
}

// TextSpan locates a finding within a line of text. Line is 1-based;
// Column and EndColumn are byte offsets within the line, 0-based, with
// EndColumn exclusive.
type TextSpan struct {
	Line      int `json:"line"`
	Column    int `json:"column"`
	EndColumn int `json:"end_column"`
}

func (TextSpan) isLocation() {}

// String returns the span in "line:col-end" form.
func (s TextSpan) String() string {
	return fmt.Sprintf("%d:%d-%d", s.Line, s.Column, s.EndColumn)
}

// XMLPath locates a finding at an element path within an XML document,
// with the byte offset of the reporting token.
type XMLPath struct {
	Path   string `json:"path"`
	Offset int64  `json:"offset"`
}

func (XMLPath) isLocation() {}

// String returns the path with its byte offset.
func (p XMLPath) String() string {
	return fmt.Sprintf("%s @ byte %d", p.Path, p.Offset)
}

// ArchivePart locates a finding inside a named entry of a zip-based
// container document. Path is the XML element path within that entry.
type ArchivePart struct {
	Part string `json:"part"`
	Path string `json:"path"`
}

func (ArchivePart) isLocation() {}

// String returns the part name and the path within it.
func (a ArchivePart) String() string {
	if a.Path == "" {
		return a.Part
	}
	return a.Part + ":" + a.Path
}

// PDFPage locates a finding on a page of a PDF document. Pages are
// 1-based.
type PDFPage struct {
	Page int `json:"page"`
}

func (PDFPage) isLocation() {}

// String returns the page in "page N" form.
func (p PDFPage) String() string {
	return fmt.Sprintf("page %d", p.Page)
}

// ExifTag locates a finding in a named image metadata field.
type ExifTag struct {
	Field string `json:"field"`
}

func (ExifTag) isLocation() {}

// String returns the metadata field name.
func (e ExifTag) String() string {
	return e.Field
}

// MarshalLocation encodes a location as a tagged JSON object, e.g.
// {"kind":"text_span","line":1,"column":4,"end_column":22}. Callers that
// serialize Link values should use it for the location field.
func MarshalLocation(loc Location) ([]byte, error) {
	if loc == nil {
		return []byte("null"), nil
	}
	switch v := loc.(type) {
	case ByteOffset:
		return json.Marshal(struct {
			Kind   string `json:"kind"`
			Offset int64  `json:"offset"`
		}{"byte_offset", int64(v)})
	case TextSpan:
		return json.Marshal(struct {
			Kind string `json:"kind"`
			TextSpan
		}{"text_span", v})
	case XMLPath:
		return json.Marshal(struct {
			Kind string `json:"kind"`
			XMLPath
		}{"xml_path", v})
	case ArchivePart:
		return json.Marshal(struct {
			Kind string `json:"kind"`
			ArchivePart
		}{"archive_part", v})
	case PDFPage:
		return json.Marshal(struct {
			Kind string `json:"kind"`
			PDFPage
		}{"pdf_page", v})
	case ExifTag:
		return json.Marshal(struct {
			Kind string `json:"kind"`
			ExifTag
		}{"exif_tag", v})
	default:
		return nil, fmt.Errorf("unknown location type %T", loc)
	}
}
