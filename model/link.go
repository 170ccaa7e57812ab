// Package model provides the shared data types for extracted links.
//
// All format packages ultimately produce these types, making them the
// primary API for consuming extraction results. A [Link] pairs the raw
// target text with the semantic [Role] it plays in the source document
// and a [Location] that resolves unambiguously within that document.
package model

import (
	"encoding/json"
	"fmt"
)

// Role classifies the semantic function of a link within its document.
type Role int

const (
	// RoleUnknown indicates an attribute or field that carried a URI but
	// whose (namespace, element, attribute) combination is not mapped.
	RoleUnknown Role = iota
	// RoleHyperlink is a user-facing clickable link.
	RoleHyperlink
	// RoleReference is a structural reference such as a namespace URI or
	// a stylesheet link.
	RoleReference
	// RoleEmbed is an embedded resource (object, script, OLE part).
	RoleEmbed
	// RoleRelationship is an entry resolved from an archive relationship
	// manifest rather than from document content.
	RoleRelationship
	// RoleImage is an image reference.
	RoleImage
	// RoleXLinkSimple is a link declared via xlink:type="simple" (or a
	// bare xlink:href).
	RoleXLinkSimple
	// RoleXLinkExtended is a link found inside an xlink extended-link
	// scope (locator href, arc arcrole, resource role).
	RoleXLinkExtended
	// RolePlainText is a URI found in running text.
	RolePlainText
	// RoleAnnotation is a link carried by a PDF annotation.
	RoleAnnotation
	// RoleExifField is a URI found in an image metadata field.
	RoleExifField
)

// String returns the string representation of the role.
func (r Role) String() string {
	switch r {
	case RoleHyperlink:
		return "Hyperlink"
	case RoleReference:
		return "Reference"
	case RoleEmbed:
		return "Embed"
	case RoleRelationship:
		return "Relationship"
	case RoleImage:
		return "Image"
	case RoleXLinkSimple:
		return "XLinkSimple"
	case RoleXLinkExtended:
		return "XLinkExtended"
	case RolePlainText:
		return "PlainText"
	case RoleAnnotation:
		return "Annotation"
	case RoleExifField:
		return "ExifField"
	default:
		return "Unknown"
	}
}

// MarshalJSON encodes the role as its enum tag.
func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// Link is a single extracted reference.
type Link struct {
	// Target is the raw URI or reference text. Never empty.
	Target string `json:"target"`
	// Role is the semantic function of the link in its document.
	Role Role `json:"role"`
	// Location identifies where in the source document the link was
	// found. The concrete shape depends on the source format; callers
	// must not assume a single variant.
	Location Location `json:"location"`
	// Valid reports whether the link passed structural validation.
	// Always true for links that are not subject to validation.
	Valid bool `json:"valid"`
}

// NewLink builds a Link, enforcing the non-empty target invariant.
func NewLink(target string, role Role, loc Location) (Link, error) {
	if target == "" {
		return Link{}, fmt.Errorf("link target must not be empty")
	}
	return Link{Target: target, Role: role, Location: loc, Valid: true}, nil
}

// String returns the link target, matching fmt.Stringer expectations for
// log output.
func (l Link) String() string {
	return l.Target
}

// MarshalJSON encodes the link in its wire shape, with the location as a
// tagged variant object.
func (l Link) MarshalJSON() ([]byte, error) {
	loc, err := MarshalLocation(l.Location)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		Target   string          `json:"target"`
		Role     Role            `json:"role"`
		Location json.RawMessage `json:"location"`
		Valid    bool            `json:"valid"`
	}{l.Target, l.Role, loc, l.Valid})
}
