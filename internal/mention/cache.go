package mention

// displayKey caches by the exact (text, url) pair; two mentions of the same
// user under different display names resolve independently.
type displayKey struct {
	text string
	url  string
}

// DisplayCache memoizes a Resolver. Entries are never evicted during a
// session — the cache is bounded by the distinct mentions actually present
// in the document — and are dropped only on session teardown.
//
// The cache has a single writer (the render path on the UI thread), so it
// is deliberately unlocked.
type DisplayCache struct {
	resolver Resolver
	entries  map[displayKey]Display
	atRoom   *Display
}

// NewDisplayCache wraps resolver. A nil resolver yields a nil cache, which
// callers treat as "no mention capability supplied".
func NewDisplayCache(resolver Resolver) *DisplayCache {
	if resolver == nil {
		return nil
	}
	return &DisplayCache{
		resolver: resolver,
		entries:  make(map[displayKey]Display),
	}
}

// Resolve returns the display form for an ordinary mention, invoking the
// delegate at most once per (text, url) pair.
func (c *DisplayCache) Resolve(text, url string) Display {
	key := displayKey{text: text, url: url}
	if d, ok := c.entries[key]; ok {
		return d
	}
	d := c.resolver.Resolve(text, url)
	c.entries[key] = d
	return d
}

// ResolveAtRoom returns the display form of the at-room mention, invoking
// the delegate at most once per session.
func (c *DisplayCache) ResolveAtRoom() Display {
	if c.atRoom == nil {
		d := c.resolver.ResolveAtRoom()
		c.atRoom = &d
	}
	return *c.atRoom
}

// Clear empties the cache on session teardown. The delegate is kept.
func (c *DisplayCache) Clear() {
	c.entries = make(map[displayKey]Display)
	c.atRoom = nil
}

// Equal reports whether two caches share the same delegate. Upstream
// view-diffing treats "same delegate" as "no need to recreate the cache or
// re-render", so cached contents are deliberately not compared.
func (c *DisplayCache) Equal(other *DisplayCache) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.resolver == other.resolver
}
