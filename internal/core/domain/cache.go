package domain

import (
	"slices"
	"strconv"
	"strings"

	"go.trai.ch/mason/internal/sexp"
)

// Entry is the cached build record for one resource: the content digest
// produced by its last build, the dynamic dependencies discovered during that
// build, and optionally the timestamp of that build.
type Entry struct {
	// Digest is the opaque content digest of the last built output. It is
	// never interpreted or validated at this layer.
	Digest string
	// Deps holds the dynamically discovered dependencies; may be empty.
	Deps DepSet
	// BuiltAt is the build timestamp in unix seconds, nil when never
	// recorded. Presence maps exactly onto the serialized shape.
	BuiltAt *int64
}

// NewEntry creates an entry without a build timestamp.
func NewEntry(digest string, deps DepSet) Entry {
	return Entry{Digest: digest, Deps: deps}
}

// NewEntryAt creates an entry with a build timestamp.
func NewEntryAt(digest string, deps DepSet, builtAt int64) Entry {
	return Entry{Digest: digest, Deps: deps, BuiltAt: &builtAt}
}

// Equal reports field-wise equality. Timestamps are equal when both are
// absent or both are present with the same value.
func (e Entry) Equal(o Entry) bool {
	if e.Digest != o.Digest || !e.Deps.Equal(o.Deps) {
		return false
	}
	if (e.BuiltAt == nil) != (o.BuiltAt == nil) {
		return false
	}
	return e.BuiltAt == nil || *e.BuiltAt == *o.BuiltAt
}

// ToTree encodes the entry as a 2-element list, or a 3-element list when a
// build timestamp is present.
func (e Entry) ToTree() sexp.Tree {
	tree := sexp.List{sexp.Atom(e.Digest), e.Deps.ToTree()}
	if e.BuiltAt != nil {
		tree = append(tree, sexp.Atom(strconv.FormatInt(*e.BuiltAt, 10)))
	}
	return tree
}

// EntryFromTree decodes an entry. Exactly two shapes are accepted:
// (digest deps) and (digest deps timestamp).
func EntryFromTree(t sexp.Tree) (Entry, error) {
	list, ok := t.(sexp.List)
	if !ok || len(list) < 2 || len(list) > 3 {
		return Entry{}, sexp.Invalid(t, "cache")
	}

	digest, ok := list[0].(sexp.Atom)
	if !ok {
		return Entry{}, sexp.Invalid(t, "cache")
	}

	deps, err := DepSetFromTree(list[1])
	if err != nil {
		return Entry{}, sexp.InvalidCause(t, "cache", err)
	}

	if len(list) == 2 {
		return NewEntry(string(digest), deps), nil
	}

	ts, ok := list[2].(sexp.Atom)
	if !ok {
		return Entry{}, sexp.Invalid(t, "cache")
	}
	builtAt, err := strconv.ParseInt(string(ts), 10, 64)
	if err != nil {
		return Entry{}, sexp.InvalidCause(list[2], "last_build_date", err)
	}
	return NewEntryAt(string(digest), deps, builtAt), nil
}

// Cache is an immutable mapping from resource path to build entry. It is the
// state the pipeline persists between runs to decide which pages can be
// reused. Every mutation-style operation returns a new Cache value; existing
// values are never changed and are safe to read concurrently.
type Cache struct {
	entries map[Path]Entry
}

// CachePair is a single path-entry binding, used for bulk construction.
type CachePair struct {
	Path  Path
	Entry Entry
}

// EmptyCache returns the cache with no entries.
func EmptyCache() Cache {
	return Cache{}
}

// CacheFromPairs builds a cache from the given bindings. Pairs are inserted
// left to right, so on duplicate paths the last occurrence wins.
func CacheFromPairs(pairs []CachePair) Cache {
	entries := make(map[Path]Entry, len(pairs))
	for _, pair := range pairs {
		entries[pair.Path] = pair.Entry
	}
	return Cache{entries: entries}
}

// Update returns a new cache in which path is bound to a fresh entry built
// from digest, deps and the build timestamp now. All other bindings are
// unchanged, and the receiver remains valid.
func (c Cache) Update(path Path, deps DepSet, now int64, digest string) Cache {
	entries := make(map[Path]Entry, len(c.entries)+1)
	for p, e := range c.entries {
		entries[p] = e
	}
	entries[path] = NewEntryAt(digest, deps, now)
	return Cache{entries: entries}
}

// Get returns the entry bound to path, if any.
func (c Cache) Get(path Path) (Entry, bool) {
	e, ok := c.entries[path]
	return e, ok
}

// Len returns the number of entries.
func (c Cache) Len() int {
	return len(c.entries)
}

// Paths returns all keys in lexicographic order.
func (c Cache) Paths() []Path {
	paths := make([]Path, 0, len(c.entries))
	for p := range c.entries {
		paths = append(paths, p)
	}
	slices.SortFunc(paths, Path.Compare)
	return paths
}

// Equal reports whether both caches bind the same paths to equal entries.
func (c Cache) Equal(o Cache) bool {
	if len(c.entries) != len(o.entries) {
		return false
	}
	for p, e := range c.entries {
		oe, ok := o.entries[p]
		if !ok || !e.Equal(oe) {
			return false
		}
	}
	return true
}

// ToTree encodes the cache as a list of (path entry) pairs. The pairs are
// written in path order; that order is an artifact of the encoder, not part
// of the format.
func (c Cache) ToTree() sexp.Tree {
	list := make(sexp.List, 0, len(c.entries))
	for _, p := range c.Paths() {
		list = append(list, sexp.List{p.ToTree(), c.entries[p].ToTree()})
	}
	return list
}

// CacheFromTree decodes a cache. The tree must be a list whose every child
// is a 2-element (path entry) pair; the first malformed child aborts the
// whole decode.
func CacheFromTree(t sexp.Tree) (Cache, error) {
	list, ok := t.(sexp.List)
	if !ok {
		return Cache{}, sexp.Invalid(t, "cache")
	}

	pairs := make([]CachePair, 0, len(list))
	for _, child := range list {
		pair, ok := child.(sexp.List)
		if !ok || len(pair) != 2 {
			return Cache{}, sexp.Invalid(child, "cache")
		}

		path, err := PathFromTree(pair[0])
		if err != nil {
			return Cache{}, sexp.InvalidCause(pair[0], "cache", err)
		}

		entry, err := EntryFromTree(pair[1])
		if err != nil {
			return Cache{}, err
		}

		pairs = append(pairs, CachePair{Path: path, Entry: entry})
	}
	return CacheFromPairs(pairs), nil
}

// Render returns a human-readable listing of the cache for logs and
// debugging. The format is not part of any durable contract.
func (c Cache) Render() string {
	var b strings.Builder
	for _, p := range c.Paths() {
		e := c.entries[p]
		b.WriteString(p.String())
		b.WriteString(" digest=")
		b.WriteString(e.Digest)
		if e.BuiltAt != nil {
			b.WriteString(" built_at=")
			b.WriteString(strconv.FormatInt(*e.BuiltAt, 10))
		} else {
			b.WriteString(" built_at=never")
		}
		b.WriteString(" deps=(")
		for i, dep := range e.Deps.Paths() {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(dep.String())
		}
		b.WriteString(")\n")
	}
	return b.String()
}
