package xmldoc

import (
	"encoding/xml"
	"iter"
	"slices"

	"github.com/tsawler/linkscrape/model"
	"github.com/tsawler/linkscrape/plaintext"
)

// XLinkNamespace is the XML namespace of the XLink attribute vocabulary.
const XLinkNamespace = "http://www.w3.org/1999/xlink"

// attrKey identifies an attribute by namespace, element local name, and
// attribute local name. An empty Element matches any element.
type attrKey struct {
	Space   string
	Element string
	Attr    string
}

// roleTable is the closed mapping from attribute occurrence to link
// role. Combinations not listed here default to RoleUnknown rather than
// inferring intent.
var roleTable = map[attrKey]model.Role{
	{"", "a", "href"}:                             model.RoleHyperlink,
	{"http://www.w3.org/1999/xhtml", "a", "href"}: model.RoleHyperlink,
	{"", "img", "src"}:                            model.RoleImage,
	{"", "image", "href"}:                         model.RoleImage,
	{"", "image", "src"}:                          model.RoleImage,
	{"", "link", "href"}:                          model.RoleReference,
	{"", "use", "href"}:                           model.RoleReference,
	{"", "script", "src"}:                         model.RoleEmbed,
	{"", "object", "data"}:                        model.RoleEmbed,
	{"", "embed", "src"}:                          model.RoleEmbed,
}

// lookupRole resolves the role for an attribute occurrence, trying the
// exact element first and then the any-element entry.
func lookupRole(space, element, attr string) (model.Role, bool) {
	if r, ok := roleTable[attrKey{space, element, attr}]; ok {
		return r, true
	}
	if r, ok := roleTable[attrKey{space, "", attr}]; ok {
		return r, true
	}
	return model.RoleUnknown, false
}

// Scrape extracts links from an XML document. It returns the link
// sequence and the diagnostics recorded during the scan. Malformed XML
// is fatal: Scrape returns a *model.ParseError with the offending byte
// offset and no partial link sequence.
func Scrape(data []byte) (iter.Seq[model.Link], *model.Diagnostics, error) {
	s := newScanner()
	if err := Walk(data, s.handler()); err != nil {
		return nil, nil, err
	}
	s.finish()
	return slices.Values(s.links), s.diags, nil
}

// scanner accumulates links and diagnostics over one walk.
type scanner struct {
	links []model.Link
	diags *model.Diagnostics
	xlink *xlinkScanner

	// namespace URI occurrences, deduplicated by prefix+URI
	seenNS map[[2]string]bool
}

func newScanner() *scanner {
	s := &scanner{
		diags:  &model.Diagnostics{},
		seenNS: make(map[[2]string]bool),
	}
	s.xlink = newXLinkScanner(s.emit, s.diags)
	return s
}

func (s *scanner) emit(l model.Link) {
	s.links = append(s.links, l)
}

func (s *scanner) handler() Handler {
	return Handler{
		Start:   s.start,
		End:     s.end,
		Text:    s.text,
		Comment: s.comment,
	}
}

func (s *scanner) start(el StartElement) error {
	loc := model.XMLPath{Path: el.Path, Offset: el.Offset}

	for _, attr := range el.Attrs {
		switch {
		case attr.Name.Space == "xmlns" || (attr.Name.Space == "" && attr.Name.Local == "xmlns"):
			s.namespaceDecl(attr, loc)
		case attr.Name.Space == XLinkNamespace:
			// Consumed below by the xlink scanner.
		default:
			s.attribute(el, attr, loc)
		}
	}

	s.xlink.start(el, loc)
	return nil
}

// attribute applies the closed role table to one attribute. Mapped
// combinations emit the raw attribute value; unmapped attributes emit a
// link only when the value contains a recognizable URI.
func (s *scanner) attribute(el StartElement, attr xml.Attr, loc model.XMLPath) {
	role, mapped := lookupRole(attr.Name.Space, el.Name.Local, attr.Name.Local)
	if mapped {
		if attr.Value != "" {
			s.emit(model.Link{Target: attr.Value, Role: role, Location: loc, Valid: true})
		}
		return
	}
	for _, m := range plaintext.FindAll(attr.Value) {
		s.emit(model.Link{Target: m.Target, Role: model.RoleUnknown, Location: loc, Valid: true})
	}
}

// namespaceDecl emits a reference link for a namespace URI, once per
// prefix/URI pair.
func (s *scanner) namespaceDecl(attr xml.Attr, loc model.XMLPath) {
	key := [2]string{attr.Name.Local, attr.Value}
	if s.seenNS[key] {
		return
	}
	s.seenNS[key] = true
	for _, m := range plaintext.FindAll(attr.Value) {
		s.emit(model.Link{Target: m.Target, Role: model.RoleReference, Location: loc, Valid: true})
	}
}

func (s *scanner) end(name xml.Name, path string, offset int64) error {
	s.xlink.end(path, model.XMLPath{Path: path, Offset: offset})
	return nil
}

func (s *scanner) text(text, path string, offset int64) error {
	loc := model.XMLPath{Path: path, Offset: offset}
	for _, m := range plaintext.FindAll(text) {
		s.emit(model.Link{Target: m.Target, Role: model.RolePlainText, Location: loc, Valid: true})
	}
	return nil
}

func (s *scanner) comment(text, path string, offset int64) error {
	return s.text(text, path, offset)
}

// finish flushes any xlink scope state left open by a document that
// ended cleanly (the walker already guarantees well-formedness).
func (s *scanner) finish() {
	s.xlink.finish()
}
