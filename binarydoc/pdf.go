package binarydoc

import (
	"bytes"
	"fmt"
	"io"
	"iter"
	"regexp"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/tsawler/linkscrape/model"
)

// pdfEngine extracts link annotations and page text from PDF documents
// through pdfcpu.
type pdfEngine struct{}

func (pdfEngine) Name() string { return "pdfcpu" }

// pdfStringPattern matches PDF string literals in parentheses.
var pdfStringPattern = regexp.MustCompile(`\(([^)]*)\)`)

// Extract validates the document up front, then yields items lazily:
// annotation items on the first pull, page text as each page is
// reached. A consumer that stops after a few links never decompresses
// the remaining pages' content streams.
func (e pdfEngine) Extract(data []byte, diags *model.Diagnostics) (iter.Seq[RawItem], error) {
	conf := pdfmodel.NewDefaultConfiguration()

	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("reading pdf: %w", err)
	}

	return func(yield func(RawItem) bool) {
		for _, item := range e.annotations(data, conf, ctx.PageCount, diags) {
			if !yield(item) {
				return
			}
		}

		for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
			r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
			if err != nil {
				diags.Add(model.DiagExternalEngineError, model.PDFPage{Page: pageNr},
					fmt.Sprintf("extracting page %d content: %v", pageNr, err))
				continue
			}
			stream, err := io.ReadAll(r)
			if err != nil || len(stream) == 0 {
				continue
			}
			item := RawItem{
				Value:    pageStreamText(stream),
				Role:     model.RolePlainText,
				Location: model.PDFPage{Page: pageNr},
			}
			if !yield(item) {
				return
			}
		}
	}, nil
}

// annotations collects URI actions from link annotations. Annotation
// decoding failures degrade to a diagnostic; page text extraction still
// proceeds.
func (e pdfEngine) annotations(data []byte, conf *pdfmodel.Configuration, pageCount int, diags *model.Diagnostics) []RawItem {
	pageAnnots, err := api.Annotations(bytes.NewReader(data), nil, conf)
	if err != nil {
		diags.Add(model.DiagExternalEngineError, model.ByteOffset(0),
			fmt.Sprintf("reading annotations: %v", err))
		return nil
	}

	var items []RawItem
	for pageNr := 1; pageNr <= pageCount; pageNr++ {
		annots, ok := pageAnnots[pageNr]
		if !ok {
			continue
		}
		linkAnnots, ok := annots[pdfmodel.AnnLink]
		if !ok {
			continue
		}
		for _, renderer := range linkAnnots.Map {
			link, ok := renderer.(pdfmodel.LinkAnnotation)
			if !ok || link.URI == "" {
				continue
			}
			items = append(items, RawItem{
				Value:    link.URI,
				Verbatim: true,
				Role:     model.RoleAnnotation,
				Location: model.PDFPage{Page: pageNr},
			})
		}
	}
	return items
}

// pageStreamText pulls the string literals of text-showing operators
// (Tj, TJ, ') out of a page content stream. Layout operators are
// collapsed to whitespace; this is enough for URI scanning, not a
// faithful text rendering.
func pageStreamText(stream []byte) string {
	var sb bytes.Buffer
	for _, line := range bytes.Split(stream, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		show := bytes.HasSuffix(line, []byte("Tj")) ||
			bytes.HasSuffix(line, []byte("TJ")) ||
			(bytes.HasSuffix(line, []byte("'")) && bytes.Contains(line, []byte("(")))
		if !show {
			continue
		}
		for _, m := range pdfStringPattern.FindAllSubmatch(line, -1) {
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
			sb.Write(decodePDFString(m[1]))
		}
	}
	return sb.String()
}

// decodePDFString resolves backslash escapes in a PDF string literal.
func decodePDFString(raw []byte) []byte {
	var out bytes.Buffer
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 == len(raw) {
			out.WriteByte(raw[i])
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			out.WriteByte('\n')
		case 'r':
			out.WriteByte('\r')
		case 't':
			out.WriteByte('\t')
		case '\\', '(', ')':
			out.WriteByte(raw[i])
		default:
			if raw[i] >= '0' && raw[i] <= '7' {
				val := int(raw[i] - '0')
				for n := 0; n < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; n++ {
					i++
					val = val*8 + int(raw[i]-'0')
				}
				out.WriteByte(byte(val))
			} else {
				out.WriteByte(raw[i])
			}
		}
	}
	return out.Bytes()
}
