package htmldoc

import (
	"strings"
	"testing"

	"github.com/tsawler/linkscrape/model"
)

func scrapeAll(t *testing.T, doc string) ([]model.Link, *model.Diagnostics) {
	t.Helper()
	seq, diags, err := Scrape([]byte(doc))
	if err != nil {
		t.Fatalf("Scrape failed: %v", err)
	}
	var links []model.Link
	for l := range seq {
		links = append(links, l)
	}
	return links, diags
}

func TestScrapeTagRoles(t *testing.T) {
	doc := `<html><head>
<link href="style.css" rel="stylesheet">
<script src="app.js"></script>
</head><body>
<a href="https://example.com/page">click</a>
<img src="photo.jpg">
<iframe src="frame.html"></iframe>
<form action="/submit"></form>
</body></html>`
	links, _ := scrapeAll(t, doc)

	wantRoles := map[string]model.Role{
		"style.css":                model.RoleReference,
		"app.js":                   model.RoleEmbed,
		"https://example.com/page": model.RoleHyperlink,
		"photo.jpg":                model.RoleImage,
		"frame.html":               model.RoleEmbed,
		"/submit":                  model.RoleReference,
	}
	for target, want := range wantRoles {
		found := false
		for _, l := range links {
			if l.Target == target {
				found = true
				if l.Role != want {
					t.Errorf("%s: role = %v, want %v", target, l.Role, want)
				}
			}
		}
		if !found {
			t.Errorf("target %s not extracted", target)
		}
	}
}

func TestScrapeTextOffsets(t *testing.T) {
	doc := `<p>go to https://example.com/x now</p>`
	links, _ := scrapeAll(t, doc)

	var plain []model.Link
	for _, l := range links {
		if l.Role == model.RolePlainText {
			plain = append(plain, l)
		}
	}
	if len(plain) != 1 {
		t.Fatalf("plain-text links = %v, want 1", plain)
	}
	off, ok := plain[0].Location.(model.ByteOffset)
	if !ok {
		t.Fatalf("location type %T, want ByteOffset", plain[0].Location)
	}
	if want := int64(strings.Index(doc, "https")); int64(off) != want {
		t.Errorf("offset = %d, want %d", off, want)
	}
}

func TestScrapeMalformedNeverFatal(t *testing.T) {
	tests := []string{
		`<a href="https://example.com/a">unclosed`,
		`<p><b>bad nesting</p></b>`,
		`<<<>><a href="https://example.com/b">`,
		``,
	}
	for _, doc := range tests {
		if _, _, err := Scrape([]byte(doc)); err != nil {
			t.Errorf("Scrape(%q) failed: %v", doc, err)
		}
	}
}

func TestScrapeRecoversLinksFromBrokenMarkup(t *testing.T) {
	links, _ := scrapeAll(t, `<div><a href="https://example.com/kept">text`)
	found := false
	for _, l := range links {
		if l.Target == "https://example.com/kept" && l.Role == model.RoleHyperlink {
			found = true
		}
	}
	if !found {
		t.Errorf("link in unclosed markup not recovered: %v", links)
	}
}

func TestScrapeCommentURIs(t *testing.T) {
	doc := `<body><!-- staging at https://example.com/staging --></body>`
	links, _ := scrapeAll(t, doc)
	found := false
	for _, l := range links {
		if l.Target != "https://example.com/staging" || l.Role != model.RolePlainText {
			continue
		}
		found = true
		if want := model.ByteOffset(int64(strings.Index(doc, "https"))); l.Location != want {
			t.Errorf("comment URI location = %v, want %v", l.Location, want)
		}
	}
	if !found {
		t.Errorf("comment URI not extracted: %v", links)
	}
}

func TestScrapeUnmappedAttrScanned(t *testing.T) {
	links, _ := scrapeAll(t, `<div data-endpoint="https://example.com/api"></div>`)
	found := false
	for _, l := range links {
		if l.Target == "https://example.com/api" && l.Role == model.RoleUnknown {
			found = true
		}
	}
	if !found {
		t.Errorf("unmapped attribute URI not extracted: %v", links)
	}
}
