package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenSet(tokens ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

func TestUpsertThenLookupAndPostings(t *testing.T) {
	s := NewStore()
	s.Upsert(IndexedFile{Path: "/a.txt", Tokens: tokenSet("hello", "world")})

	rec := s.Lookup("/a.txt")
	require.NotNil(t, rec)
	assert.True(t, rec.HasToken("hello"))
	assert.True(t, rec.HasToken("world"))

	assert.ElementsMatch(t, []string{"/a.txt"}, s.Postings("hello"))
	assert.ElementsMatch(t, []string{"/a.txt"}, s.Postings("world"))
	assert.Empty(t, s.Postings("missing"))
}

func TestUpsertReplacesStalePostings(t *testing.T) {
	s := NewStore()
	s.Upsert(IndexedFile{Path: "/a.txt", Tokens: tokenSet("old", "shared")})
	s.Upsert(IndexedFile{Path: "/a.txt", Tokens: tokenSet("new", "shared")})

	assert.Empty(t, s.Postings("old"), "stale token must be pruned on replace")
	assert.ElementsMatch(t, []string{"/a.txt"}, s.Postings("new"))
	assert.ElementsMatch(t, []string{"/a.txt"}, s.Postings("shared"))
}

func TestUpsertSameTokensIsObservationallyNoop(t *testing.T) {
	s := NewStore()
	s.Upsert(IndexedFile{Path: "/a.txt", Tokens: tokenSet("x", "y")})
	before := s.Postings("x")
	s.Upsert(IndexedFile{Path: "/a.txt", Tokens: tokenSet("x", "y")})
	after := s.Postings("x")
	assert.ElementsMatch(t, before, after)
}

func TestRemoveCleansUpPostings(t *testing.T) {
	s := NewStore()
	s.Upsert(IndexedFile{Path: "/a.txt", Tokens: tokenSet("alpha")})
	s.Upsert(IndexedFile{Path: "/b.txt", Tokens: tokenSet("alpha", "beta")})

	s.Remove("/a.txt")

	assert.Nil(t, s.Lookup("/a.txt"))
	assert.ElementsMatch(t, []string{"/b.txt"}, s.Postings("alpha"))
	assert.ElementsMatch(t, []string{"/b.txt"}, s.Postings("beta"))
}

func TestRemoveAbsentPathIsNoop(t *testing.T) {
	s := NewStore()
	assert.NotPanics(t, func() { s.Remove("/does/not/exist") })
}

func TestNoEmptyPostingSetsSurvive(t *testing.T) {
	s := NewStore()
	s.Upsert(IndexedFile{Path: "/a.txt", Tokens: tokenSet("only")})
	s.Remove("/a.txt")
	assert.Empty(t, s.Postings("only"))
}

func TestClearErasesEverything(t *testing.T) {
	s := NewStore()
	s.Upsert(IndexedFile{Path: "/a.txt", Tokens: tokenSet("x")})
	s.Clear()
	assert.Nil(t, s.Lookup("/a.txt"))
	assert.Empty(t, s.Postings("x"))
}

func TestLookupCopyIsIndependent(t *testing.T) {
	s := NewStore()
	s.Upsert(IndexedFile{Path: "/a.txt", Tokens: tokenSet("x")})
	rec := s.Lookup("/a.txt")
	rec.Tokens["y"] = struct{}{}

	fresh := s.Lookup("/a.txt")
	assert.False(t, fresh.HasToken("y"), "mutating a returned copy must not affect the store")
}
