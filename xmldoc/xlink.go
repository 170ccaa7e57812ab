package xmldoc

import (
	"github.com/tsawler/linkscrape/model"
	"github.com/tsawler/linkscrape/plaintext"
)

// XLink structural validation, covering the subset needed to extract and
// sanity-check links: element typing via xlink:type, the simple and
// extended forms, and label resolution for arcs. Violations never abort
// extraction; they degrade the affected link (Valid=false) or suppress
// it, and record a ValidationWarning either way.

// xlinkType is the closed set of xlink:type values.
type xlinkType int

const (
	xlinkNone xlinkType = iota
	xlinkSimple
	xlinkExtended
	xlinkLocator
	xlinkArc
	xlinkResource
	xlinkTitle
)

// closed value enumerations for simple-link behavior attributes
var (
	showValues    = map[string]bool{"new": true, "replace": true, "embed": true, "other": true, "none": true}
	actuateValues = map[string]bool{"onLoad": true, "onRequest": true, "other": true, "none": true}
)

// xlinkNode is the transient parse-time view of one element's XLink
// attributes. It is built per element-open event and not retained.
type xlinkNode struct {
	typ     xlinkType
	href    string
	role    string
	arcrole string
	show    string
	actuate string
	label   string
	from    string
	to      string

	hasType bool
	hasHref bool
}

// xlinkAttrsOf gathers the xlink-namespace attributes of an element.
// A bare xlink:href with no xlink:type implies a simple link. The bool
// result reports whether the element participates in XLink at all; an
// unknown type value is reported through typeValue for the caller to
// diagnose.
func xlinkAttrsOf(el StartElement) (node xlinkNode, typeValue string, ok bool) {
	for _, attr := range el.Attrs {
		if attr.Name.Space != XLinkNamespace {
			continue
		}
		ok = true
		switch attr.Name.Local {
		case "type":
			node.hasType = true
			typeValue = attr.Value
		case "href":
			node.hasHref = true
			node.href = attr.Value
		case "role":
			node.role = attr.Value
		case "arcrole":
			node.arcrole = attr.Value
		case "show":
			node.show = attr.Value
		case "actuate":
			node.actuate = attr.Value
		case "label":
			node.label = attr.Value
		case "from":
			node.from = attr.Value
		case "to":
			node.to = attr.Value
		}
	}
	if !ok {
		return node, "", false
	}
	switch typeValue {
	case "simple":
		node.typ = xlinkSimple
	case "extended":
		node.typ = xlinkExtended
	case "locator":
		node.typ = xlinkLocator
	case "arc":
		node.typ = xlinkArc
	case "resource":
		node.typ = xlinkResource
	case "title":
		node.typ = xlinkTitle
	case "":
		if node.hasHref {
			node.typ = xlinkSimple
		}
	default:
		node.typ = xlinkNone
	}
	return node, typeValue, true
}

// pendingArc is an arc awaiting label resolution at the close of its
// extended-link scope.
type pendingArc struct {
	from, to string
	arcrole  string
	loc      model.XMLPath
}

// extendedScope tracks one open extended-link element.
type extendedScope struct {
	path   string
	labels map[string]bool
	arcs   []pendingArc
}

// xlinkScanner validates XLink structure across element events.
type xlinkScanner struct {
	emit   func(model.Link)
	diags  *model.Diagnostics
	scopes []*extendedScope
}

func newXLinkScanner(emit func(model.Link), diags *model.Diagnostics) *xlinkScanner {
	return &xlinkScanner{emit: emit, diags: diags}
}

func (x *xlinkScanner) inExtended() bool {
	return len(x.scopes) > 0
}

func (x *xlinkScanner) top() *extendedScope {
	return x.scopes[len(x.scopes)-1]
}

// start processes the XLink aspect of an element-open event.
func (x *xlinkScanner) start(el StartElement, loc model.XMLPath) {
	node, typeValue, ok := xlinkAttrsOf(el)
	if !ok {
		return
	}
	if node.typ == xlinkNone {
		if node.hasType {
			x.diags.Add(model.DiagValidationWarning, loc, "unknown xlink:type value "+quoteVal(typeValue))
		}
		return
	}

	switch node.typ {
	case xlinkSimple:
		x.simple(node, loc)
	case xlinkExtended:
		x.extended(node, el, loc)
	case xlinkLocator:
		x.locator(node, loc)
	case xlinkArc:
		x.arc(node, loc)
	case xlinkResource:
		x.resource(node, loc)
	case xlinkTitle:
		// Titles carry no target.
	}
}

// simple validates a simple link: href is optional, show/actuate values
// must come from their closed enumerations, and a simple link may not
// appear inside an extended scope.
func (x *xlinkScanner) simple(node xlinkNode, loc model.XMLPath) {
	valid := true
	if x.inExtended() {
		valid = false
		x.diags.Add(model.DiagValidationWarning, loc, "simple-type element inside an extended link")
	}
	if node.show != "" && !showValues[node.show] {
		valid = false
		x.diags.Add(model.DiagValidationWarning, loc, "invalid xlink:show value "+quoteVal(node.show))
	}
	if node.actuate != "" && !actuateValues[node.actuate] {
		valid = false
		x.diags.Add(model.DiagValidationWarning, loc, "invalid xlink:actuate value "+quoteVal(node.actuate))
	}
	if node.href != "" {
		x.emit(model.Link{Target: node.href, Role: model.RoleXLinkSimple, Location: loc, Valid: valid})
	}
	x.emitURIs(node.role, model.RoleXLinkSimple, loc, valid)
	x.emitURIs(node.arcrole, model.RoleXLinkSimple, loc, valid)
}

// extended opens a new extended-link scope. Nesting extended links is a
// structural violation but the inner scope is still tracked so its own
// children validate consistently.
func (x *xlinkScanner) extended(node xlinkNode, el StartElement, loc model.XMLPath) {
	valid := true
	if x.inExtended() {
		valid = false
		x.diags.Add(model.DiagValidationWarning, loc, "extended-type element inside an extended link")
	}
	x.emitURIs(node.role, model.RoleXLinkExtended, loc, valid)
	x.scopes = append(x.scopes, &extendedScope{
		path:   el.Path,
		labels: make(map[string]bool),
	})
}

// locator requires an href and a label, and must sit inside an extended
// scope. A locator with an href but a missing label still yields its
// link, marked invalid.
func (x *xlinkScanner) locator(node xlinkNode, loc model.XMLPath) {
	valid := true
	if !x.inExtended() {
		valid = false
		x.diags.Add(model.DiagValidationWarning, loc, "locator-type element outside an extended link")
	}
	if node.label == "" {
		valid = false
		x.diags.Add(model.DiagValidationWarning, loc, "locator-type element missing xlink:label")
	} else if x.inExtended() {
		x.top().labels[node.label] = true
	}
	if node.href == "" {
		x.diags.Add(model.DiagValidationWarning, loc, "locator-type element missing xlink:href")
	} else {
		x.emit(model.Link{Target: node.href, Role: model.RoleXLinkExtended, Location: loc, Valid: valid})
	}
	x.emitURIs(node.role, model.RoleXLinkExtended, loc, valid)
}

// arc defers to scope close, where sibling locator labels are known.
// An arc outside any extended scope can never resolve; it is diagnosed
// immediately.
func (x *xlinkScanner) arc(node xlinkNode, loc model.XMLPath) {
	if !x.inExtended() {
		x.diags.Add(model.DiagValidationWarning, loc, "arc-type element outside an extended link")
		return
	}
	x.top().arcs = append(x.top().arcs, pendingArc{
		from:    node.from,
		to:      node.to,
		arcrole: node.arcrole,
		loc:     loc,
	})
}

func (x *xlinkScanner) resource(node xlinkNode, loc model.XMLPath) {
	valid := true
	if !x.inExtended() {
		valid = false
		x.diags.Add(model.DiagValidationWarning, loc, "resource-type element outside an extended link")
	}
	x.emitURIs(node.role, model.RoleXLinkExtended, loc, valid)
}

// end closes an extended scope when its element closes, resolving the
// arcs recorded within it against the locator labels of that scope.
func (x *xlinkScanner) end(path string, loc model.XMLPath) {
	if !x.inExtended() || x.top().path != path {
		return
	}
	scope := x.top()
	x.scopes = x.scopes[:len(x.scopes)-1]

	for _, arc := range scope.arcs {
		if arc.from == "" || arc.to == "" || !scope.labels[arc.from] || !scope.labels[arc.to] {
			x.diags.Add(model.DiagValidationWarning, arc.loc, "arc-type element references no matching locator label")
			continue
		}
		x.emitURIs(arc.arcrole, model.RoleXLinkExtended, arc.loc, true)
	}
}

// finish resolves scopes a well-formed document should already have
// closed; kept as a safety net for handler reuse.
func (x *xlinkScanner) finish() {
	for x.inExtended() {
		x.end(x.top().path, model.XMLPath{Path: x.top().path})
	}
}

// emitURIs scans an attribute value for URIs and emits each as a link
// with the given role and validity.
func (x *xlinkScanner) emitURIs(value string, role model.Role, loc model.XMLPath, valid bool) {
	for _, m := range plaintext.FindAll(value) {
		x.emit(model.Link{Target: m.Target, Role: role, Location: loc, Valid: valid})
	}
}

// quoteVal quotes a value for a diagnostic message.
func quoteVal(s string) string {
	return `"` + s + `"`
}
