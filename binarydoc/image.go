package binarydoc

import (
	"iter"
	"slices"

	exif "github.com/dsoprea/go-exif/v3"

	"github.com/tsawler/linkscrape/model"
)

// imageEngine scans the textual EXIF fields of raster images. Raster
// pixel data is never decoded; only the metadata block is read.
type imageEngine struct{}

func (imageEngine) Name() string { return "exif" }

func (imageEngine) Extract(data []byte, diags *model.Diagnostics) (iter.Seq[RawItem], error) {
	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil || rawExif == nil {
		// An image without an EXIF block simply has no links.
		return nil, nil
	}

	entries, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		diags.Add(model.DiagExternalEngineError, model.ByteOffset(0), "decoding exif block: "+err.Error())
		return nil, nil
	}

	var items []RawItem
	for _, entry := range entries {
		if entry.Formatted == "" {
			continue
		}
		items = append(items, RawItem{
			Value:    entry.Formatted,
			Role:     model.RoleExifField,
			Location: model.ExifTag{Field: entry.TagName},
		})
	}
	return slices.Values(items), nil
}
