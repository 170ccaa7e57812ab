// Package plaintext provides URI scanning over raw text.
//
// The scanner applies a maximal-munch grammar covering scheme URIs
// (scheme://...), mailto: addresses, and bare www. forms. It is the
// shared URI finder for every other format package: XML character data,
// archive part text, PDF page text, and RTF visible text all go through
// [FindAll].
package plaintext

import (
	"bytes"
	"iter"
	"regexp"
	"strings"

	"github.com/tsawler/linkscrape/model"
)

// uriPattern implements the URI grammar. Alternatives are ordered so the
// scheme form wins over the bare www. form at the same start position;
// the greedy tail takes the longest valid span (maximal munch).
var uriPattern = regexp.MustCompile(`(?:[a-zA-Z][a-zA-Z0-9+.\-]*://|mailto:|\bwww\.)[^\s<>"']+`)

// trailingPunct holds characters stripped from the end of a raw match.
// They legally terminate a sentence far more often than a URI.
const trailingPunct = ".,;:!?"

// Match is a URI found by FindAll, with byte offsets into the scanned
// string. End is exclusive.
type Match struct {
	Target string
	Start  int
	End    int
}

// FindAll returns all URIs in s, in order of appearance. Overlapping
// candidates resolve to the longest span at each start position.
func FindAll(s string) []Match {
	idxs := uriPattern.FindAllStringIndex(s, -1)
	if len(idxs) == 0 {
		return nil
	}
	matches := make([]Match, 0, len(idxs))
	for _, idx := range idxs {
		start, end := idx[0], idx[1]
		end = trimMatch(s, start, end)
		if end <= start {
			continue
		}
		matches = append(matches, Match{Target: s[start:end], Start: start, End: end})
	}
	return matches
}

// trimMatch shrinks a raw regexp match: trailing sentence punctuation is
// never part of the URI, and a trailing close bracket is dropped unless
// its opening counterpart appears inside the match.
func trimMatch(s string, start, end int) int {
	for end > start {
		c := s[end-1]
		if strings.IndexByte(trailingPunct, c) >= 0 {
			end--
			continue
		}
		if opener, ok := closers[c]; ok && !balanced(s[start:end], opener, c) {
			end--
			continue
		}
		break
	}
	return end
}

var closers = map[byte]byte{')': '(', ']': '[', '}': '{'}

func balanced(s string, opener, closer byte) bool {
	return strings.Count(s, string(opener)) >= strings.Count(s, string(closer))
}

// Scrape scans data line by line and returns a lazy sequence of
// plain-text links with line/column span locations. Lines are 1-based;
// columns are 0-based byte offsets within the line. The sequence is
// restartable: each iteration re-scans data from the start and yields an
// identical result. Scrape never fails; data without URIs yields an
// empty sequence.
func Scrape(data []byte) iter.Seq[model.Link] {
	return func(yield func(model.Link) bool) {
		line := 0
		for start := 0; start <= len(data); {
			line++
			rel := bytes.IndexByte(data[start:], '\n')
			var text string
			next := len(data) + 1
			if rel >= 0 {
				text = string(data[start : start+rel])
				next = start + rel + 1
			} else {
				text = string(data[start:])
			}
			for _, m := range FindAll(text) {
				link := model.Link{
					Target: m.Target,
					Role:   model.RolePlainText,
					Location: model.TextSpan{
						Line:      line,
						Column:    m.Start,
						EndColumn: m.End,
					},
					Valid: true,
				}
				if !yield(link) {
					return
				}
			}
			start = next
		}
	}
}
