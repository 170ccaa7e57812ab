// Package binarydoc extracts links from binary document formats (PDF,
// raster images with EXIF metadata, RTF) by adapting format-specific
// extraction engines to the common link model.
//
// Engines return uninterpreted [RawItem] values; the adapter decides
// whether an item is emitted verbatim as a target or scanned for URIs.
// An engine failure is wrapped in *model.EngineError so callers can
// distinguish extraction-engine faults from malformed input.
package binarydoc

import (
	"errors"
	"fmt"
	"iter"
	"slices"

	"github.com/tsawler/linkscrape/format"
	"github.com/tsawler/linkscrape/model"
	"github.com/tsawler/linkscrape/plaintext"
)

// RawItem is one uninterpreted finding from an extraction engine.
type RawItem struct {
	// Value is a complete link target when Verbatim is set, otherwise
	// free text to be scanned for URIs.
	Value    string
	Verbatim bool
	Role     model.Role
	Location model.Location
}

// Engine extracts raw items from one binary format. The item sequence
// is pulled lazily, so expensive per-unit work (decompressing a PDF
// page's content stream) happens only as the consumer advances, and
// abandoning the sequence abandons the remaining work. Recoverable
// problems (a page that fails to decode, a truncated metadata block)
// go into diags; the returned error is reserved for total failure.
type Engine interface {
	Name() string
	Extract(data []byte, diags *model.Diagnostics) (iter.Seq[RawItem], error)
}

// engineFor selects the engine for a detected format.
func engineFor(kind format.Kind) (Engine, error) {
	switch {
	case kind == format.PDF:
		return pdfEngine{}, nil
	case kind == format.RTF:
		return rtfEngine{}, nil
	case kind.IsImageKind():
		return imageEngine{}, nil
	}
	return nil, fmt.Errorf("no extraction engine for format %s", kind)
}

// Scrape extracts links from a binary document of the given kind. The
// sequence is lazy; diagnostics for recoverable problems may still be
// appended while it is consumed, so read diags after iterating.
func Scrape(data []byte, kind format.Kind) (iter.Seq[model.Link], *model.Diagnostics, error) {
	engine, err := engineFor(kind)
	if err != nil {
		return nil, nil, err
	}

	diags := &model.Diagnostics{}
	items, err := engine.Extract(data, diags)
	if err != nil {
		var pe *model.ParseError
		if errors.As(err, &pe) {
			return nil, nil, err
		}
		return nil, nil, model.NewEngineError(engine.Name(), err)
	}
	if items == nil {
		var none []RawItem
		items = slices.Values(none)
	}
	return linkSeq(items), diags, nil
}

// linkSeq adapts an engine's raw items into the link sequence, pulling
// items only as links are consumed. Breaking out of the link sequence
// stops pulling from the engine.
func linkSeq(items iter.Seq[RawItem]) iter.Seq[model.Link] {
	return func(yield func(model.Link) bool) {
		for item := range items {
			if item.Verbatim {
				if item.Value != "" {
					if !yield(model.Link{Target: item.Value, Role: item.Role, Location: item.Location, Valid: true}) {
						return
					}
				}
				continue
			}
			for _, m := range plaintext.FindAll(item.Value) {
				link := model.Link{
					Target:   m.Target,
					Role:     item.Role,
					Location: itemLocation(item.Location, m),
					Valid:    true,
				}
				if !yield(link) {
					return
				}
			}
		}
	}
}

// itemLocation refines a byte-offset location to the match position;
// coarser locations (page, tag) pass through unchanged.
func itemLocation(loc model.Location, m plaintext.Match) model.Location {
	if off, ok := loc.(model.ByteOffset); ok {
		return off + model.ByteOffset(m.Start)
	}
	return loc
}
