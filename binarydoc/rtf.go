package binarydoc

import (
	"bytes"
	"iter"
	"regexp"
	"slices"
	"strings"

	"github.com/tsawler/linkscrape/model"
)

// rtfEngine extracts HYPERLINK field targets and visible text from RTF
// documents.
type rtfEngine struct{}

func (rtfEngine) Name() string { return "rtf" }

// hyperlinkPattern matches the instruction text of a HYPERLINK field:
// {\field{\*\fldinst HYPERLINK "target"} ...}. The target may appear
// quoted or bare.
var hyperlinkPattern = regexp.MustCompile(`\\fldinst[^{}]*?HYPERLINK\s+(?:\\l\s+)?(?:"([^"]+)"|([^\s"{}\\]+))`)

// rtfSkipGroups are destination groups whose content is not document
// text.
var rtfSkipGroups = map[string]bool{
	"fonttbl":    true,
	"colortbl":   true,
	"stylesheet": true,
	"info":       true,
	"pict":       true,
	"fldinst":    true,
	"themedata":  true,
}

// Extract scans the whole document eagerly; RTF field instructions
// and visible-text runs are cheap to tokenize, so there is nothing to
// gain from deferring per item.
func (rtfEngine) Extract(data []byte, diags *model.Diagnostics) (iter.Seq[RawItem], error) {
	if !bytes.HasPrefix(data, []byte(`{\rtf`)) {
		return nil, model.NewParseError(0, "input does not start with an RTF group", nil)
	}

	var items []RawItem

	for _, idx := range hyperlinkPattern.FindAllSubmatchIndex(data, -1) {
		target := submatch(data, idx, 1)
		if target == "" {
			target = submatch(data, idx, 2)
		}
		if target == "" {
			continue
		}
		items = append(items, RawItem{
			Value:    target,
			Verbatim: true,
			Role:     model.RoleHyperlink,
			Location: model.ByteOffset(idx[0]),
		})
	}

	for _, run := range rtfVisibleRuns(data) {
		items = append(items, RawItem{
			Value:    run.text,
			Role:     model.RolePlainText,
			Location: model.ByteOffset(run.off),
		})
	}
	return slices.Values(items), nil
}

func submatch(data []byte, idx []int, n int) string {
	if idx[2*n] < 0 {
		return ""
	}
	return string(data[idx[2*n]:idx[2*n+1]])
}

// textRun is a stretch of visible document text and the byte offset of
// its first contributing character.
type textRun struct {
	text string
	off  int64
}

// rtfVisibleRuns walks the RTF token stream and collects visible text,
// flushed into a new run whenever control sequences interrupt the
// literal bytes so that run offsets stay aligned with the source.
func rtfVisibleRuns(data []byte) []textRun {
	var runs []textRun
	var cur strings.Builder
	var curOff int64 = -1

	flush := func() {
		if cur.Len() > 0 {
			runs = append(runs, textRun{text: cur.String(), off: curOff})
		}
		cur.Reset()
		curOff = -1
	}
	appendAt := func(i int, b byte) {
		if curOff < 0 {
			curOff = int64(i)
		}
		cur.WriteByte(b)
	}

	skipUntilDepth := -1
	depth := 0

	for i := 0; i < len(data); i++ {
		b := data[i]
		switch b {
		case '{':
			depth++
			flush()
			if skipUntilDepth >= 0 {
				continue
			}
			// Peek for a destination group to skip.
			j := i + 1
			if j < len(data) && data[j] == '\\' {
				j++
				if j < len(data) && data[j] == '*' {
					j++
					if j < len(data) && data[j] == '\\' {
						j++
					}
				}
				start := j
				for j < len(data) && isASCIILetter(data[j]) {
					j++
				}
				if rtfSkipGroups[string(data[start:j])] {
					skipUntilDepth = depth
				}
			}
		case '}':
			flush()
			if skipUntilDepth == depth {
				skipUntilDepth = -1
			}
			if depth > 0 {
				depth--
			}
		case '\\':
			flush()
			if i+1 >= len(data) {
				break
			}
			i++
			c := data[i]
			switch {
			case c == '\'':
				// Hex escape \'hh yields one byte.
				if i+2 < len(data) && skipUntilDepth < 0 {
					v := hexVal(data[i+1])<<4 | hexVal(data[i+2])
					appendAt(i-1, byte(v))
					flush()
				}
				i += 2
			case c == '\\' || c == '{' || c == '}':
				if skipUntilDepth < 0 {
					appendAt(i, c)
					flush()
				}
			case isASCIILetter(c):
				word := i
				for i+1 < len(data) && isASCIILetter(data[i+1]) {
					i++
				}
				name := string(data[word : i+1])
				// Optional numeric parameter.
				for i+1 < len(data) && (data[i+1] == '-' || data[i+1] >= '0' && data[i+1] <= '9') {
					i++
				}
				// A single space terminates the control word.
				if i+1 < len(data) && data[i+1] == ' ' {
					i++
				}
				if skipUntilDepth < 0 {
					switch name {
					case "par", "line":
						appendAt(i, '\n')
						flush()
					case "tab":
						appendAt(i, '\t')
						flush()
					}
				}
			}
		case '\r', '\n':
			// Raw newlines in RTF source are not document text.
			flush()
		default:
			if skipUntilDepth < 0 {
				appendAt(i, b)
			}
		}
	}
	flush()
	return runs
}

func isASCIILetter(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}

func hexVal(b byte) int {
	switch {
	case b >= '0' && b <= '9':
		return int(b - '0')
	case b >= 'a' && b <= 'f':
		return int(b-'a') + 10
	case b >= 'A' && b <= 'F':
		return int(b-'A') + 10
	}
	return 0
}
