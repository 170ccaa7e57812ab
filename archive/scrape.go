// Package archive extracts links from zip-container document formats:
// the Office Open XML family (DOCX, PPTX, XLSX) and the OpenDocument
// family (ODT, ODS, ODP, OTT).
//
// Extraction runs in two phases. Phase one parses every relationships
// part (*.rels) into an immutable [RelationshipTable], scoped per source
// part because OOXML relationship IDs are only unique within one part.
// Phase two walks the format's known content parts and resolves indirect
// references (r:id and friends) against the table. Entries outside a
// format's part list are never decompressed.
package archive

import (
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/tsawler/linkscrape/format"
	"github.com/tsawler/linkscrape/model"
	"github.com/tsawler/linkscrape/plaintext"
	"github.com/tsawler/linkscrape/xmldoc"
)

// relationshipNS is the OOXML namespace of indirect-reference
// attributes (r:id, r:embed, r:link).
const relationshipNS = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"

// kindSpec describes the container layout of one archive format: which
// entries must exist, and which entries hold scannable content.
type kindSpec struct {
	// required entries; a missing one aborts the scrape
	required []string
	// fixed content parts, scanned when present
	fixed []string
	// prefixes of additional content parts (slides, worksheets)
	prefixes []string
	// odf selects OpenDocument attribute handling over OOXML
	odf bool
}

var kindSpecs = map[format.Kind]kindSpec{
	format.DOCX: {
		required: []string{"word/document.xml", "word/_rels/document.xml.rels"},
		fixed: []string{
			"word/document.xml",
			"word/footnotes.xml",
			"word/endnotes.xml",
			"word/comments.xml",
		},
		prefixes: []string{"word/header", "word/footer"},
	},
	format.PPTX: {
		required: []string{"ppt/presentation.xml", "ppt/_rels/presentation.xml.rels"},
		fixed:    []string{"ppt/presentation.xml"},
		prefixes: []string{"ppt/slides/slide", "ppt/notesSlides/notesSlide"},
	},
	format.XLSX: {
		required: []string{"xl/workbook.xml", "xl/_rels/workbook.xml.rels"},
		fixed:    []string{"xl/workbook.xml", "xl/sharedStrings.xml"},
		prefixes: []string{"xl/worksheets/sheet"},
	},
	format.ODT: odfSpec,
	format.ODS: odfSpec,
	format.ODP: odfSpec,
	format.OTT: odfSpec,
}

var odfSpec = kindSpec{
	required: []string{"META-INF/manifest.xml", "content.xml"},
	fixed:    []string{"content.xml", "styles.xml", "meta.xml"},
	odf:      true,
}

// Scrape extracts links from a zip-container document of the given
// kind. It returns the link sequence and the diagnostics recorded while
// scanning. A missing required entry yields a *model.MissingEntryError;
// a malformed content part yields a *model.ParseError wrapped with the
// part name.
func Scrape(data []byte, kind format.Kind) (iter.Seq[model.Link], *model.Diagnostics, error) {
	spec, ok := kindSpecs[kind]
	if !ok {
		return nil, nil, fmt.Errorf("no archive layout for format %s", kind)
	}

	r, err := newReader(data)
	if err != nil {
		return nil, nil, err
	}
	for _, name := range spec.required {
		if !r.has(name) {
			return nil, nil, &model.MissingEntryError{Entry: name}
		}
	}

	var links []model.Link
	diags := &model.Diagnostics{}
	emit := func(l model.Link) { links = append(links, l) }

	table := newRelationshipTable()
	if !spec.odf {
		for _, name := range r.names {
			if !strings.HasSuffix(name, ".rels") {
				continue
			}
			content, err := r.content(name)
			if err != nil {
				return nil, nil, err
			}
			if err := table.parseRels(name, content, emit); err != nil {
				return nil, nil, err
			}
		}
	}

	for _, name := range r.names {
		if !spec.scans(name) {
			continue
		}
		content, err := r.content(name)
		if err != nil {
			return nil, nil, err
		}
		ps := &partScanner{
			part:  name,
			table: table,
			odf:   spec.odf,
			emit:  emit,
			diags: diags,
		}
		if err := xmldoc.Walk(content, ps.handler()); err != nil {
			return nil, nil, fmt.Errorf("parsing %s: %w", name, err)
		}
	}

	return slices.Values(links), diags, nil
}

// Sniff inspects a zip archive's entry layout and reports which
// supported document kind it holds. It decompresses nothing. The second
// result is false when no supported layout matches.
func Sniff(data []byte) (format.Kind, bool) {
	r, err := newReader(data)
	if err != nil {
		return format.Unknown, false
	}
	probe := func(spec kindSpec) bool {
		for _, name := range spec.required {
			if !r.has(name) {
				return false
			}
		}
		return true
	}
	for _, kind := range []format.Kind{format.DOCX, format.PPTX, format.XLSX} {
		if probe(kindSpecs[kind]) {
			return kind, true
		}
	}
	if probe(odfSpec) {
		return format.ODT, true
	}
	return format.Unknown, false
}

// scans reports whether an entry name is a content part of this layout.
func (s kindSpec) scans(name string) bool {
	if slices.Contains(s.fixed, name) {
		return true
	}
	if !strings.HasSuffix(name, ".xml") {
		return false
	}
	for _, p := range s.prefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// partScanner extracts links from one content part.
type partScanner struct {
	part  string
	table *RelationshipTable
	odf   bool
	emit  func(model.Link)
	diags *model.Diagnostics
}

func (p *partScanner) handler() xmldoc.Handler {
	return xmldoc.Handler{
		Start: p.start,
		Text:  p.text,
	}
}

func (p *partScanner) start(el xmldoc.StartElement) error {
	loc := model.ArchivePart{Part: p.part, Path: el.Path}

	for _, attr := range el.Attrs {
		switch {
		case attr.Name.Space == "xmlns" || (attr.Name.Space == "" && attr.Name.Local == "xmlns"):
			// Namespace boilerplate, not document content.
		case !p.odf && attr.Name.Space == relationshipNS:
			p.indirect(el.Name.Local, attr.Name.Local, attr.Value, loc)
		case p.odf && attr.Name.Space == xmldoc.XLinkNamespace && attr.Name.Local == "href":
			p.odfHref(el.Name.Local, attr.Value, loc)
		case attr.Name.Space == xmldoc.XLinkNamespace:
			// Other xlink attributes carry no targets here.
		default:
			for _, m := range plaintext.FindAll(attr.Value) {
				p.emit(model.Link{Target: m.Target, Role: model.RoleUnknown, Location: loc, Valid: true})
			}
		}
	}
	return nil
}

func (p *partScanner) text(text, path string, offset int64) error {
	loc := model.ArchivePart{Part: p.part, Path: path}
	for _, m := range plaintext.FindAll(text) {
		p.emit(model.Link{Target: m.Target, Role: model.RolePlainText, Location: loc, Valid: true})
	}
	return nil
}

// indirect resolves an indirect-reference attribute against the
// relationship table. A reference to an undefined ID records a
// dangling-reference diagnostic and yields no link. Internal targets
// name sibling archive entries and are not links.
func (p *partScanner) indirect(element, attr, id string, loc model.ArchivePart) {
	if id == "" {
		return
	}
	rel, ok := p.table.Resolve(p.part, id)
	if !ok {
		p.diags.Add(model.DiagDanglingReference, loc, fmt.Sprintf("relationship %q is not defined for part %s", id, p.part))
		return
	}
	if !rel.External {
		return
	}
	p.emit(model.Link{
		Target:   rel.Target,
		Role:     indirectRole(element, attr),
		Location: loc,
		Valid:    true,
	})
}

// indirectRole maps an indirect-reference site to a link role.
func indirectRole(element, attr string) model.Role {
	switch element {
	case "hyperlink", "hlinkClick", "hlinkHover":
		return model.RoleHyperlink
	case "blip":
		if attr == "embed" || attr == "link" {
			return model.RoleImage
		}
	case "oleObject", "objectEmbed":
		return model.RoleEmbed
	}
	return model.RoleRelationship
}

// odfHref maps a direct xlink:href in OpenDocument content to a role by
// its host element.
func (p *partScanner) odfHref(element, target string, loc model.ArchivePart) {
	if target == "" {
		return
	}
	var role model.Role
	switch element {
	case "a":
		role = model.RoleHyperlink
	case "image":
		role = model.RoleImage
	default:
		role = model.RoleReference
	}
	p.emit(model.Link{Target: target, Role: role, Location: loc, Valid: true})
}
