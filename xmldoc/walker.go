// Package xmldoc provides streaming XML link extraction with XLink
// structural validation.
//
// The walker tokenizes input as a stream of element and text events over
// an explicit path stack, so memory stays bounded regardless of document
// size or depth. The higher-level [Scrape] maps attributes to link roles
// through a closed lookup table and validates the XLink attribute
// grammar; the archive package drives [Walk] directly for container
// parts.
package xmldoc

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/tsawler/linkscrape/model"
)

// StartElement is an element-open event.
type StartElement struct {
	Name  xml.Name
	Attrs []xml.Attr
	// Path is the slash-separated chain of open element local names,
	// including this element.
	Path string
	// Offset is the byte offset at which the start tag begins.
	Offset int64
}

// Handler receives walk events. Nil callbacks are skipped. A callback
// returning an error aborts the walk.
type Handler struct {
	Start   func(el StartElement) error
	End     func(name xml.Name, path string, offset int64) error
	Text    func(text string, path string, offset int64) error
	Comment func(text string, path string, offset int64) error
}

// Walk tokenizes data and invokes the handler for each event. Malformed
// XML is fatal: Walk returns a *model.ParseError carrying the byte
// offset after which the stream is no longer well-formed, and the
// handler sees no further events. Input without a root element, empty
// input included, is malformed. Character encodings declared in the
// XML prolog are decoded through x/net's charset reader.
func Walk(data []byte, h Handler) error {
	d := xml.NewDecoder(bytes.NewReader(data))
	d.Strict = true
	d.CharsetReader = charset.NewReaderLabel

	var stack []string
	sawRoot := false
	for {
		offset := d.InputOffset()
		tok, err := d.Token()
		if err == io.EOF {
			if len(stack) > 0 {
				return model.NewParseError(d.InputOffset(), "unexpected end of input: unclosed element <"+stack[len(stack)-1]+">", nil)
			}
			if !sawRoot {
				return model.NewParseError(d.InputOffset(), "document has no root element", nil)
			}
			return nil
		}
		if err != nil {
			return model.NewParseError(d.InputOffset(), err.Error(), err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			sawRoot = true
			stack = append(stack, t.Name.Local)
			if h.Start != nil {
				el := StartElement{
					Name:   t.Name,
					Attrs:  t.Attr,
					Path:   "/" + strings.Join(stack, "/"),
					Offset: offset,
				}
				if err := h.Start(el); err != nil {
					return err
				}
			}
		case xml.EndElement:
			path := "/" + strings.Join(stack, "/")
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			if h.End != nil {
				if err := h.End(t.Name, path, offset); err != nil {
					return err
				}
			}
		case xml.CharData:
			if h.Text != nil {
				path := "/" + strings.Join(stack, "/")
				if err := h.Text(string(t), path, offset); err != nil {
					return err
				}
			}
		case xml.Comment:
			if h.Comment != nil {
				path := "/" + strings.Join(stack, "/")
				if err := h.Comment(string(t), path, offset); err != nil {
					return err
				}
			}
		}
	}
}
