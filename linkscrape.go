// Package linkscrape extracts links from documents of many formats
// behind a single entry point.
//
// Basic usage:
//
//	links, diags := linkscrape.Scrape(data, "report.docx")
//	for link := range links {
//	    fmt.Println(link.Target)
//	}
//
// The input format is detected from content with the filename extension
// as a tie-break, then extraction is delegated to the format's handler.
// When detection fails or the delegate rejects the input, a fixed
// fallback chain runs: an XML parse attempt, a zip layout sniff, and
// finally a plain text scan. Scraping through the dispatcher is never
// fatal; problems surface as diagnostics alongside an empty sequence.
//
// For a single known format, the format packages (plaintext, xmldoc,
// htmldoc, archive, binarydoc) are also available directly.
package linkscrape

import (
	"errors"
	"iter"
	"log/slog"

	"github.com/tsawler/linkscrape/archive"
	"github.com/tsawler/linkscrape/binarydoc"
	"github.com/tsawler/linkscrape/format"
	"github.com/tsawler/linkscrape/htmldoc"
	"github.com/tsawler/linkscrape/model"
	"github.com/tsawler/linkscrape/plaintext"
	"github.com/tsawler/linkscrape/xmldoc"
)

// ErrNoHandlers is returned by New when the scraper would have no
// format handlers registered.
var ErrNoHandlers = errors.New("no format handlers registered")

// Handler binds a set of detected formats to a scrape function.
type Handler struct {
	Kinds  []format.Kind
	Scrape func(data []byte, kind format.Kind) (iter.Seq[model.Link], *model.Diagnostics, error)
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithHandlers replaces the default handler set.
func WithHandlers(handlers ...Handler) Option {
	return func(s *Scraper) {
		s.handlers = handlers
	}
}

// WithLogger sets the logger for scrape-level events. The default
// discards nothing and uses slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scraper) {
		s.logger = logger
	}
}

// WithCollectAttemptDiagnostics also surfaces the diagnostics of
// discarded fallback attempts, recorded as parse-error diagnostics.
func WithCollectAttemptDiagnostics() Option {
	return func(s *Scraper) {
		s.collectAttempts = true
	}
}

// Scraper dispatches documents to format handlers.
type Scraper struct {
	handlers        []Handler
	byKind          map[format.Kind]Handler
	logger          *slog.Logger
	collectAttempts bool
}

// New builds a Scraper. Without WithHandlers the default handler set
// covers every supported format.
func New(opts ...Option) (*Scraper, error) {
	s := &Scraper{handlers: DefaultHandlers()}
	for _, opt := range opts {
		opt(s)
	}
	if len(s.handlers) == 0 {
		return nil, ErrNoHandlers
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.byKind = make(map[format.Kind]Handler)
	for _, h := range s.handlers {
		for _, kind := range h.Kinds {
			s.byKind[kind] = h
		}
	}
	return s, nil
}

// DefaultHandlers returns handlers for every format package.
func DefaultHandlers() []Handler {
	return []Handler{
		{
			Kinds: []format.Kind{format.Text},
			Scrape: func(data []byte, _ format.Kind) (iter.Seq[model.Link], *model.Diagnostics, error) {
				return plaintext.Scrape(data), &model.Diagnostics{}, nil
			},
		},
		{
			Kinds: []format.Kind{format.XML, format.SVG},
			Scrape: func(data []byte, _ format.Kind) (iter.Seq[model.Link], *model.Diagnostics, error) {
				return xmldoc.Scrape(data)
			},
		},
		{
			Kinds: []format.Kind{format.HTML},
			Scrape: func(data []byte, _ format.Kind) (iter.Seq[model.Link], *model.Diagnostics, error) {
				return htmldoc.Scrape(data)
			},
		},
		{
			Kinds: []format.Kind{
				format.DOCX, format.PPTX, format.XLSX,
				format.ODT, format.ODS, format.ODP, format.OTT,
			},
			Scrape: archive.Scrape,
		},
		{
			Kinds: []format.Kind{
				format.PDF, format.RTF,
				format.JPEG, format.PNG, format.TIFF, format.WebP,
			},
			Scrape: binarydoc.Scrape,
		},
	}
}

// Scrape extracts links from a document of any supported format. The
// filename is optional and only informs detection; pass "" when no name
// is known. Scrape never fails: undetectable or unparseable input
// yields an empty sequence and a detection-failure diagnostic.
func (s *Scraper) Scrape(data []byte, filename string) (iter.Seq[model.Link], *model.Diagnostics) {
	diags := &model.Diagnostics{}
	kind := format.Detect(data, filename)
	s.logger.Debug("detected format", "kind", kind.String(), "filename", filename, "size", len(data))

	if h, ok := s.byKind[kind]; ok {
		links, hd, err := h.Scrape(data, kind)
		if err == nil {
			diags.Merge(hd)
			return links, diags
		}
		s.logger.Warn("format handler failed, falling back", "kind", kind.String(), "error", err)
		if s.collectAttempts {
			diags.Add(model.DiagParseError, model.ByteOffset(0), kind.String()+" handler: "+err.Error())
		}
	}

	return s.fallback(data, kind, diags)
}

// fallback runs the fixed attempt chain: XML parse, zip layout sniff,
// plain text scan. Attempts are independent; the first success wins.
func (s *Scraper) fallback(data []byte, detected format.Kind, diags *model.Diagnostics) (iter.Seq[model.Link], *model.Diagnostics) {
	if detected != format.XML && detected != format.SVG {
		if links, hd, err := xmldoc.Scrape(data); err == nil {
			s.logger.Debug("fallback succeeded", "attempt", "xml")
			diags.Merge(hd)
			return links, diags
		} else if s.collectAttempts {
			diags.Add(model.DiagParseError, model.ByteOffset(0), "xml attempt: "+err.Error())
		}
	}

	if kind, ok := archive.Sniff(data); ok && kind != detected {
		if links, hd, err := archive.Scrape(data, kind); err == nil {
			s.logger.Debug("fallback succeeded", "attempt", "archive", "kind", kind.String())
			diags.Merge(hd)
			return links, diags
		} else if s.collectAttempts {
			diags.Add(model.DiagParseError, model.ByteOffset(0), "archive attempt: "+err.Error())
		}
	}

	if detected != format.Text && looksTextual(data) {
		s.logger.Debug("fallback succeeded", "attempt", "text")
		return plaintext.Scrape(data), diags
	}

	diags.Add(model.DiagDetectionFailure, model.ByteOffset(0), "no format handler accepted the input")
	return emptySeq, diags
}

func emptySeq(func(model.Link) bool) {}

// looksTextual reports whether data is plausible text: no NUL bytes in
// the leading window.
func looksTextual(data []byte) bool {
	n := min(len(data), 4096)
	for _, b := range data[:n] {
		if b == 0 {
			return false
		}
	}
	return true
}

// defaultScraper backs the package-level Scrape.
var defaultScraper = mustNew()

func mustNew() *Scraper {
	s, err := New()
	if err != nil {
		panic(err)
	}
	return s
}

// Scrape extracts links using the default handler set.
func Scrape(data []byte, filename string) (iter.Seq[model.Link], *model.Diagnostics) {
	return defaultScraper.Scrape(data, filename)
}
