package xmldoc

import (
	"errors"
	"testing"

	"github.com/tsawler/linkscrape/model"
)

func TestWalkPaths(t *testing.T) {
	doc := `<root><child attr="v"><leaf/></child>text</root>`

	var starts []string
	var texts []string
	h := Handler{
		Start: func(el StartElement) error {
			starts = append(starts, el.Path)
			return nil
		},
		Text: func(text, path string, offset int64) error {
			if text != "" {
				texts = append(texts, path+"="+text)
			}
			return nil
		},
	}
	if err := Walk([]byte(doc), h); err != nil {
		t.Fatalf("Walk failed: %v", err)
	}

	wantStarts := []string{"/root", "/root/child", "/root/child/leaf"}
	if len(starts) != len(wantStarts) {
		t.Fatalf("starts = %v, want %v", starts, wantStarts)
	}
	for i := range starts {
		if starts[i] != wantStarts[i] {
			t.Errorf("start %d = %q, want %q", i, starts[i], wantStarts[i])
		}
	}
	if len(texts) != 1 || texts[0] != "/root=text" {
		t.Errorf("texts = %v, want [/root=text]", texts)
	}
}

func TestWalkOffsets(t *testing.T) {
	doc := `<root><a/></root>`
	var offsets []int64
	h := Handler{
		Start: func(el StartElement) error {
			offsets = append(offsets, el.Offset)
			return nil
		},
	}
	if err := Walk([]byte(doc), h); err != nil {
		t.Fatalf("Walk failed: %v", err)
	}
	if len(offsets) != 2 {
		t.Fatalf("got %d starts, want 2", len(offsets))
	}
	if offsets[0] != 0 {
		t.Errorf("root offset = %d, want 0", offsets[0])
	}
	if offsets[1] != 6 {
		t.Errorf("a offset = %d, want 6", offsets[1])
	}
}

func TestWalkTruncatedInput(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unclosed element", `<root><child>`},
		{"mismatched close", `<root><a></b></root>`},
		{"bare close", `</root>`},
		{"garbage after ampersand", `<root>&nope</root>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Walk([]byte(tt.doc), Handler{})
			if err == nil {
				t.Fatal("expected error for malformed input")
			}
			var pe *model.ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("error type %T, want *model.ParseError", err)
			}
			if pe.Offset < 0 || pe.Offset > int64(len(tt.doc)) {
				t.Errorf("offset %d outside input bounds", pe.Offset)
			}
		})
	}
}

func TestWalkRootlessInput(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty", ""},
		{"whitespace only", "  \n\t "},
		{"prolog only", `<?xml version="1.0"?>`},
		{"comment only", `<!-- nothing here -->`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Walk([]byte(tt.doc), Handler{})
			if err == nil {
				t.Fatal("expected error for input with no root element")
			}
			var pe *model.ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("error type %T, want *model.ParseError", err)
			}
		})
	}
}

func TestWalkHandlerErrorAborts(t *testing.T) {
	doc := `<root><a/><b/></root>`
	sentinel := errors.New("stop")
	count := 0
	h := Handler{
		Start: func(el StartElement) error {
			count++
			if el.Path == "/root/a" {
				return sentinel
			}
			return nil
		},
	}
	if err := Walk([]byte(doc), h); !errors.Is(err, sentinel) {
		t.Errorf("Walk error = %v, want sentinel", err)
	}
	if count != 2 {
		t.Errorf("handler ran %d times after abort, want 2", count)
	}
}

func TestWalkDeclaredCharset(t *testing.T) {
	// ISO-8859-1 content with a declared encoding decodes through the
	// charset reader instead of failing.
	doc := []byte(`<?xml version="1.0" encoding="ISO-8859-1"?><r a="caf` + "\xe9" + `"/>`)
	var got string
	h := Handler{
		Start: func(el StartElement) error {
			for _, a := range el.Attrs {
				if a.Name.Local == "a" {
					got = a.Value
				}
			}
			return nil
		},
	}
	if err := Walk(doc, h); err != nil {
		t.Fatalf("Walk failed: %v", err)
	}
	if got != "café" {
		t.Errorf("decoded attr = %q, want café", got)
	}
}
