// Package htmldoc extracts links from HTML documents.
//
// HTML gets its own scanner rather than the generic XML path because
// real-world HTML is rarely well-formed XML: the tokenizer recovers
// from unclosed tags and attribute soup, so extraction here is never
// fatal.
package htmldoc

import (
	"bytes"
	"iter"
	"slices"
	"strings"

	"golang.org/x/net/html"

	"github.com/tsawler/linkscrape/model"
	"github.com/tsawler/linkscrape/plaintext"
)

// tagRoles maps tag/attribute pairs to link roles.
var tagRoles = map[[2]string]model.Role{
	{"a", "href"}:      model.RoleHyperlink,
	{"area", "href"}:   model.RoleHyperlink,
	{"img", "src"}:     model.RoleImage,
	{"source", "src"}:  model.RoleImage,
	{"link", "href"}:   model.RoleReference,
	{"script", "src"}:  model.RoleEmbed,
	{"iframe", "src"}:  model.RoleEmbed,
	{"embed", "src"}:   model.RoleEmbed,
	{"object", "data"}: model.RoleEmbed,
	{"form", "action"}: model.RoleReference,
}

// Scrape extracts links from an HTML document. The tokenizer recovers
// from malformed markup, so the returned error is always nil; the
// signature matches the other format scrapers.
func Scrape(data []byte) (iter.Seq[model.Link], *model.Diagnostics, error) {
	var links []model.Link
	diags := &model.Diagnostics{}

	z := html.NewTokenizer(bytes.NewReader(data))
	var offset int64

	for {
		tt := z.Next()
		raw := z.Raw()
		tokenOffset := offset
		offset += int64(len(raw))

		switch tt {
		case html.ErrorToken:
			return slices.Values(links), diags, nil

		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			tag := string(name)
			for hasAttr {
				var key, val []byte
				key, val, hasAttr = z.TagAttr()
				emitAttr(&links, tag, string(key), string(val), tokenOffset)
			}

		case html.TextToken:
			text := string(z.Text())
			for _, m := range plaintext.FindAll(text) {
				links = append(links, model.Link{
					Target:   m.Target,
					Role:     model.RolePlainText,
					Location: model.ByteOffset(tokenOffset + int64(m.Start)),
					Valid:    true,
				})
			}

		case html.CommentToken:
			text := string(z.Text())
			// Offset of the comment body within the raw token; -1 when
			// entity unescaping rewrote the text.
			body := bytes.Index(raw, []byte(text))
			if body < 0 {
				body = 0
			}
			for _, m := range plaintext.FindAll(text) {
				links = append(links, model.Link{
					Target:   m.Target,
					Role:     model.RolePlainText,
					Location: model.ByteOffset(tokenOffset + int64(body) + int64(m.Start)),
					Valid:    true,
				})
			}
		}
	}
}

// emitAttr emits links for one tag attribute: mapped pairs yield the
// raw value, everything else is scanned for URIs.
func emitAttr(links *[]model.Link, tag, key, val string, offset int64) {
	val = strings.TrimSpace(val)
	if val == "" {
		return
	}
	if role, ok := tagRoles[[2]string{tag, key}]; ok {
		*links = append(*links, model.Link{
			Target:   val,
			Role:     role,
			Location: model.ByteOffset(offset),
			Valid:    true,
		})
		return
	}
	for _, m := range plaintext.FindAll(val) {
		*links = append(*links, model.Link{
			Target:   m.Target,
			Role:     model.RoleUnknown,
			Location: model.ByteOffset(offset),
			Valid:    true,
		})
	}
}
