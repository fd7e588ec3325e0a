package people

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/roach88/dativeconv/internal/ir"
)

func TestResolveNewPerson(t *testing.T) {
	tbl := New()
	p, key := tbl.Resolve(Ref{Key: Key{Space: Other, ID: 1}, First: " A ", Last: "B"})

	assert.Equal(t, ir.PersonID("a.b@example.com"), p.ID)
	assert.Equal(t, "person/a.b%40example.com", key)
	assert.Equal(t, map[int]string{1: "A B"}, p.Names)
	assert.Equal(t, 1, p.Version)
	assert.Nil(t, p.Rev)
}

func TestResolveExistingKeyWins(t *testing.T) {
	tbl := New()
	first, _ := tbl.Resolve(Ref{Key: Key{Space: Other, ID: 1}, First: "A", Last: "B"})
	again, key := tbl.Resolve(Ref{Key: Key{Space: Other, ID: 1}, First: "Renamed", Last: "Person"})

	assert.Same(t, first, again)
	assert.Equal(t, "person/a.b%40example.com", key)
	assert.Equal(t, map[int]string{1: "A B"}, again.Names)
}

func TestResolveSpacesAreSeparate(t *testing.T) {
	tbl := New()
	speaker, _ := tbl.Resolve(Ref{Key: Key{Space: Speaker, ID: 1}, First: "C", Last: "D"})
	user, _ := tbl.Resolve(Ref{Key: Key{Space: Other, ID: 1}, First: "A", Last: "B"})

	assert.NotEqual(t, speaker.ID, user.ID)
	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, 2, tbl.People())
}

func TestResolveMergesSameName(t *testing.T) {
	tbl := New()
	a, _ := tbl.Resolve(Ref{Key: Key{Space: Other, ID: 1}, First: "A", Last: "B"})
	b, _ := tbl.Resolve(Ref{Key: Key{Space: Other, ID: 9}, First: "A", Last: "B "})

	assert.Same(t, a, b)
	assert.Equal(t, map[int]string{1: "A B", 9: "A B"}, a.Names)
	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, 1, tbl.People())
}

func TestResolveEmptyNames(t *testing.T) {
	tbl := New()
	p, key := tbl.Resolve(Ref{Key: Key{Space: Speaker, ID: 4}})

	assert.Equal(t, ir.PersonID(".@example.com"), p.ID)
	assert.Equal(t, "person/.%40example.com", key)
	assert.Equal(t, map[int]string{4: " "}, p.Names)
}

func TestCanonicalEmail(t *testing.T) {
	assert.Equal(t, "a.b@example.com", CanonicalEmail("A", "B"))
	assert.Equal(t, "mary.o'neil@example.com", CanonicalEmail(" Mary ", "O'Neil"))
	assert.Equal(t, ".@example.com", CanonicalEmail("", " "))
	assert.Equal(t, "jos\u00e9.ruiz@example.com", CanonicalEmail("Jose\u0301", "Ruiz"), "names are NFC-normalized")
}

func TestResolveMergesAcrossCase(t *testing.T) {
	tbl := New()
	a, _ := tbl.Resolve(Ref{Key: Key{Space: Other, ID: 1}, First: "Ann", Last: "Lee"})
	b, _ := tbl.Resolve(Ref{Key: Key{Space: Speaker, ID: 2}, First: "ann", Last: "LEE"})

	assert.Same(t, a, b)
	assert.Equal(t, map[int]string{1: "Ann Lee", 2: "ann LEE"}, a.Names)
}

func TestKeySigned(t *testing.T) {
	assert.Equal(t, -3, Key{Space: Speaker, ID: 3}.Signed())
	assert.Equal(t, 3, Key{Space: Other, ID: 3}.Signed())
	assert.Equal(t, "speaker/3", Key{Space: Speaker, ID: 3}.String())
}

func TestLookup(t *testing.T) {
	tbl := New()
	_, ok := tbl.Lookup(Key{Space: Other, ID: 1})
	assert.False(t, ok)

	p, _ := tbl.Resolve(Ref{Key: Key{Space: Other, ID: 1}, First: "A", Last: "B"})
	got, ok := tbl.Lookup(Key{Space: Other, ID: 1})
	require.True(t, ok)
	assert.Same(t, p, got)
}

func genRef(t *rapid.T) Ref {
	return Ref{
		Key: Key{
			Space: Space(rapid.IntRange(0, 1).Draw(t, "space")),
			ID:    rapid.IntRange(1, 5).Draw(t, "id"),
		},
		First: rapid.SampledFrom([]string{"A", "B", " A", "C "}).Draw(t, "first"),
		Last:  rapid.SampledFrom([]string{"X", "Y", "X "}).Draw(t, "last"),
	}
}

// Resolving the same key twice never changes the person it maps to.
func TestResolveIdempotentProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tbl := New()
		refs := rapid.SliceOfN(rapid.Custom(genRef), 1, 30).Draw(t, "refs")

		seen := make(map[Key]ir.PersonID)
		for _, ref := range refs {
			p, key := tbl.Resolve(ref)
			if key != p.ID.String() {
				t.Fatalf("key %q does not match person id %q", key, p.ID)
			}
			if prev, ok := seen[ref.Key]; ok && prev != p.ID {
				t.Fatalf("key %s moved from %s to %s", ref.Key, prev, p.ID)
			}
			seen[ref.Key] = p.ID
		}
		if tbl.Len() != len(seen) {
			t.Fatalf("table has %d keys, want %d", tbl.Len(), len(seen))
		}
	})
}

// Every legacy id that resolved to a person appears in its names.
func TestResolveNamesCoverKeysProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tbl := New()
		refs := rapid.SliceOfN(rapid.Custom(genRef), 1, 30).Draw(t, "refs")
		for _, ref := range refs {
			tbl.Resolve(ref)
		}
		for _, ref := range refs {
			p, ok := tbl.Lookup(ref.Key)
			if !ok {
				t.Fatalf("key %s not stored", ref.Key)
			}
			if _, ok := p.Names[ref.ID]; !ok {
				t.Fatalf("person %s lacks legacy id %d", p.ID, ref.ID)
			}
		}
	})
}
