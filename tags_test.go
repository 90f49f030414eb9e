package memtab

import (
	"errors"
	"slices"
	"testing"

	memtaberrors "github.com/memtab/memtab/errors"
)

func TestFindTagged(t *testing.T) {
	store := newTestStore(t, 8, WithTagIndex())

	mustAdd(t, store, "r0", "", "", "home,todo")
	mustAdd(t, store, "r1", "", "", "work")
	mustAdd(t, store, "r2", "", "", "todo, work")
	mustAdd(t, store, "r3", "", "", "")

	tests := []struct {
		tag  string
		want []uint32
	}{
		{"todo", []uint32{0, 2}},
		{"work", []uint32{1, 2}},
		{"home", []uint32{0}},
		{"absent", []uint32{}},
	}
	for _, tt := range tests {
		got, err := store.FindTagged(tt.tag)
		if err != nil {
			t.Fatalf("FindTagged(%q) failed: %v", tt.tag, err)
		}
		if !slices.Equal(got, tt.want) {
			t.Errorf("FindTagged(%q) = %v, want %v", tt.tag, got, tt.want)
		}
	}
}

func TestFindTaggedTrimsSpaces(t *testing.T) {
	store := newTestStore(t, 8, WithTagIndex())
	mustAdd(t, store, "r0", "", "", " spaced ,  other")

	for _, tag := range []string{"spaced", "other"} {
		got, err := store.FindTagged(tag)
		if err != nil || !slices.Equal(got, []uint32{0}) {
			t.Errorf("FindTagged(%q) = (%v, %v), want ([0], nil)", tag, got, err)
		}
	}
}

func TestFindTaggedViaParseJSON(t *testing.T) {
	store := newTestStore(t, 8, WithTagIndex())
	added, err := store.ParseJSON([]byte(`[{"id":"a","tags":"x,y"},{"id":"b","tags":"y"}]`))
	if err != nil || added != 2 {
		t.Fatalf("ParseJSON = (%d, %v)", added, err)
	}
	got, err := store.FindTagged("y")
	if err != nil || !slices.Equal(got, []uint32{0, 1}) {
		t.Errorf("FindTagged(y) = (%v, %v), want ([0 1], nil)", got, err)
	}
}

func TestFindTaggedWithoutIndex(t *testing.T) {
	store := newTestStore(t, 8)
	mustAdd(t, store, "r0", "", "", "x")

	if _, err := store.FindTagged("x"); !errors.Is(err, memtaberrors.ErrNoTagIndex) {
		t.Errorf("FindTagged without index = %v, want ErrNoTagIndex", err)
	}
}
