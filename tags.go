package memtab

import (
	"bytes"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
)

// tagIndex is an inverted index from tag to the set of ordinals carrying
// it, kept as compressed bitmaps. Populated on Add when WithTagIndex is
// set. Ordinals are append-only, so bitmaps only ever gain bits.
type tagIndex struct {
	byTag map[string]*roaring.Bitmap
}

func newTagIndex() *tagIndex {
	return &tagIndex{byTag: make(map[string]*roaring.Bitmap)}
}

// add indexes ordinal under each tag of the comma-separated tags field.
// Tags are trimmed of surrounding spaces; empty tags are skipped.
func (ti *tagIndex) add(tags []byte, ordinal uint32) {
	for len(tags) > 0 {
		var tag []byte
		if sep := bytes.IndexByte(tags, ','); sep >= 0 {
			tag, tags = tags[:sep], tags[sep+1:]
		} else {
			tag, tags = tags, nil
		}
		name := strings.TrimSpace(string(tag))
		if name == "" {
			continue
		}
		bm := ti.byTag[name]
		if bm == nil {
			bm = roaring.New()
			ti.byTag[name] = bm
		}
		bm.Add(ordinal)
	}
}

// find returns the ordinals carrying tag, ascending. Unknown tags yield
// an empty slice.
func (ti *tagIndex) find(tag string) []uint32 {
	bm := ti.byTag[tag]
	if bm == nil {
		return []uint32{}
	}
	return bm.ToArray()
}
