package archive

import (
	"encoding/xml"
	"fmt"
	"path"
	"strings"

	"github.com/tsawler/linkscrape/model"
)

// relationshipsXML represents _rels/*.rels files.
type relationshipsXML struct {
	XMLName       xml.Name          `xml:"Relationships"`
	Relationships []relationshipXML `xml:"Relationship"`
}

// relationshipXML represents a single relationship.
type relationshipXML struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr"` // External or empty (internal)
}

// relationship is one resolved entry of the table.
type relationship struct {
	Target   string
	External bool
}

// relKey scopes a relationship ID to the part whose .rels file defined
// it. OOXML relationship IDs are unique only within one part.
type relKey struct {
	Part string
	ID   string
}

// RelationshipTable maps part-scoped relationship IDs to their targets.
// The table is built once, before any content part is scanned, and is
// not modified afterward.
type RelationshipTable struct {
	rels map[relKey]relationship
}

func newRelationshipTable() *RelationshipTable {
	return &RelationshipTable{rels: make(map[relKey]relationship)}
}

// Resolve looks up a relationship ID in the scope of the given part.
func (t *RelationshipTable) Resolve(part, id string) (relationship, bool) {
	rel, ok := t.rels[relKey{Part: part, ID: id}]
	return rel, ok
}

// Len returns the number of relationships in the table.
func (t *RelationshipTable) Len() int {
	return len(t.rels)
}

// relsPathFor returns the .rels entry name that scopes relationship IDs
// for the given part, following the OPC layout convention.
func relsPathFor(part string) string {
	dir, base := path.Split(part)
	return dir + "_rels/" + base + ".rels"
}

// sourcePartFor inverts relsPathFor: given a .rels entry name, it
// returns the part whose IDs the file defines. The package-level
// _rels/.rels file scopes to the empty part name.
func sourcePartFor(relsName string) (string, bool) {
	dir, base := path.Split(relsName)
	if !strings.HasSuffix(base, ".rels") {
		return "", false
	}
	dir = strings.TrimSuffix(dir, "/")
	if dir != "_rels" && !strings.HasSuffix(dir, "/_rels") {
		return "", false
	}
	parent := strings.TrimSuffix(dir, "_rels")
	parent = strings.TrimSuffix(parent, "/")
	source := strings.TrimSuffix(base, ".rels")
	if parent == "" {
		return source, true
	}
	return parent + "/" + source, true
}

// parseRels parses one .rels entry into the table and emits a link for
// each external-mode target. The Type attribute is a schema identifier,
// not document content, and is never scanned.
func (t *RelationshipTable) parseRels(relsName string, data []byte, emit func(model.Link)) error {
	source, ok := sourcePartFor(relsName)
	if !ok {
		return fmt.Errorf("entry %s is not a relationships part", relsName)
	}

	var parsed relationshipsXML
	if err := xml.Unmarshal(data, &parsed); err != nil {
		return model.NewParseError(0, fmt.Sprintf("parsing %s: %v", relsName, err), err)
	}

	for _, rel := range parsed.Relationships {
		external := strings.EqualFold(rel.TargetMode, "External")
		t.rels[relKey{Part: source, ID: rel.ID}] = relationship{
			Target:   rel.Target,
			External: external,
		}
		if !external || rel.Target == "" {
			continue
		}
		// Relative external targets exist, so the target is emitted
		// verbatim rather than filtered through URI matching.
		emit(model.Link{
			Target:   rel.Target,
			Role:     model.RoleRelationship,
			Location: model.ArchivePart{Part: relsName, Path: "Relationships/Relationship"},
			Valid:    true,
		})
	}
	return nil
}
