package plaintext

import (
	"testing"

	"github.com/tsawler/linkscrape/model"
)

func TestFindAll(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"scheme url", "see https://example.com for details", []string{"https://example.com"}},
		{"mailto", "contact mailto:bob@example.com today", []string{"mailto:bob@example.com"}},
		{"bare www", "visit www.example.com now", []string{"www.example.com"}},
		{"trailing period", "go to https://example.com/a.", []string{"https://example.com/a"}},
		{"trailing comma and quote", `"https://example.com/a", he said`, []string{"https://example.com/a"}},
		{"unbalanced paren", "(see https://example.com/a)", []string{"https://example.com/a"}},
		{"balanced paren kept", "https://en.example.org/wiki/Go_(language)", []string{"https://en.example.org/wiki/Go_(language)"}},
		{"two on one line", "https://a.example.com and https://b.example.com", []string{"https://a.example.com", "https://b.example.com"}},
		{"no urls", "nothing to see here", nil},
		{"custom scheme", "open tel+fax://call/me", []string{"tel+fax://call/me"}},
		{"www inside word skipped", "awww.shucks is not a url", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches := FindAll(tt.in)
			if len(matches) != len(tt.want) {
				t.Fatalf("got %d matches %v, want %d", len(matches), matches, len(tt.want))
			}
			for i, m := range matches {
				if m.Target != tt.want[i] {
					t.Errorf("match %d = %q, want %q", i, m.Target, tt.want[i])
				}
				if tt.in[m.Start:m.End] != m.Target {
					t.Errorf("offsets [%d:%d] do not slice back to target", m.Start, m.End)
				}
			}
		})
	}
}

func TestFindAllOrdering(t *testing.T) {
	matches := FindAll("first https://a.example.com then https://b.example.com done")
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
	if matches[0].Start >= matches[1].Start {
		t.Error("matches not in order of appearance")
	}
}

func collect(data []byte) []model.Link {
	var links []model.Link
	for l := range Scrape(data) {
		links = append(links, l)
	}
	return links
}

func TestScrapeLocations(t *testing.T) {
	data := []byte("first line\nsee https://example.com here\nmailto:a@b.example\n")
	links := collect(data)
	if len(links) != 2 {
		t.Fatalf("got %d links, want 2: %v", len(links), links)
	}

	first := links[0]
	if first.Target != "https://example.com" {
		t.Errorf("target = %q", first.Target)
	}
	span, ok := first.Location.(model.TextSpan)
	if !ok {
		t.Fatalf("location type %T, want TextSpan", first.Location)
	}
	if span.Line != 2 {
		t.Errorf("line = %d, want 2 (1-based)", span.Line)
	}
	if span.Column != 4 {
		t.Errorf("column = %d, want 4 (0-based)", span.Column)
	}
	if span.EndColumn != 4+len("https://example.com") {
		t.Errorf("end column = %d", span.EndColumn)
	}
	if first.Role != model.RolePlainText {
		t.Errorf("role = %v, want PlainText", first.Role)
	}

	if second, _ := links[1].Location.(model.TextSpan); second.Line != 3 {
		t.Errorf("second link line = %d, want 3", second.Line)
	}
}

func TestScrapeRestartable(t *testing.T) {
	data := []byte("https://a.example.com\nhttps://b.example.com")
	seq := Scrape(data)

	var first []model.Link
	for l := range seq {
		first = append(first, l)
	}
	var second []model.Link
	for l := range seq {
		second = append(second, l)
	}

	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("got %d then %d links, want 2 and 2", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("iteration %d differs: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestScrapeEarlyStop(t *testing.T) {
	data := []byte("https://a.example.com https://b.example.com https://c.example.com")
	var got []model.Link
	for l := range Scrape(data) {
		got = append(got, l)
		if len(got) == 1 {
			break
		}
	}
	if len(got) != 1 {
		t.Errorf("early stop yielded %d links, want 1", len(got))
	}
}

func TestScrapeEmptyInput(t *testing.T) {
	if links := collect(nil); links != nil {
		t.Errorf("empty input yielded %v", links)
	}
	if links := collect([]byte("plain words only")); links != nil {
		t.Errorf("plain words yielded %v", links)
	}
}
