package finder

import "github.com/pders01/mifind/internal/search"

// PageSize is the number of rows fetched per request.
const PageSize = 100

// PageRequest asks for the page at Start of generation Gen.
type PageRequest struct {
	Gen   uint64
	Start uint32
	Count uint32
}

// PageCache is a sparse map of fixed-size pages over a result set of known
// size. Pages are only dropped by Reset.
type PageCache struct {
	pages    map[uint32][]search.Item
	inFlight map[uint32]bool
	total    uint32
	gen      uint64
}

func NewPageCache() *PageCache {
	return &PageCache{
		pages:    make(map[uint32][]search.Item),
		inFlight: make(map[uint32]bool),
	}
}

// PageStart returns the first index of the page holding index.
func PageStart(index uint32) uint32 {
	return index - index%PageSize
}

// Reset forgets every page and in-flight mark and starts a new generation
// of total rows. It returns the new generation.
func (c *PageCache) Reset(total uint32) uint64 {
	c.pages = make(map[uint32][]search.Item)
	c.inFlight = make(map[uint32]bool)
	c.total = total
	c.gen++
	return c.gen
}

func (c *PageCache) Total() uint32      { return c.total }
func (c *PageCache) Generation() uint64 { return c.gen }

// Get returns the item at index, or a request for its page when the page is
// neither cached nor already being fetched. Both are nil past the end, for a
// row missing from a short page, and while the page is in flight.
func (c *PageCache) Get(index uint32) (*search.Item, *PageRequest) {
	if index >= c.total {
		return nil, nil
	}
	start := PageStart(index)
	if page, ok := c.pages[start]; ok {
		return itemAt(page, index-start), nil
	}
	if c.inFlight[start] {
		return nil, nil
	}
	c.inFlight[start] = true
	return nil, &PageRequest{Gen: c.gen, Start: start, Count: PageSize}
}

// Peek returns the item at index only if its page is cached.
func (c *PageCache) Peek(index uint32) *search.Item {
	if index >= c.total {
		return nil
	}
	start := PageStart(index)
	return itemAt(c.pages[start], index-start)
}

// Complete stores a fetched page. Pages from an older generation are
// dropped and Complete returns false.
func (c *PageCache) Complete(gen uint64, start uint32, items []search.Item) bool {
	if gen != c.gen {
		return false
	}
	delete(c.inFlight, start)
	if len(items) > PageSize {
		items = items[:PageSize]
	}
	page := make([]search.Item, len(items))
	copy(page, items)
	c.pages[start] = page
	return true
}

// Fail clears the in-flight mark of a page so a later Get asks again.
func (c *PageCache) Fail(gen uint64, start uint32) {
	if gen == c.gen {
		delete(c.inFlight, start)
	}
}

// Cached reports how many pages are held.
func (c *PageCache) Cached() int { return len(c.pages) }

// InFlight reports whether the page at start is being fetched.
func (c *PageCache) InFlight(start uint32) bool { return c.inFlight[start] }

func itemAt(page []search.Item, off uint32) *search.Item {
	if int(off) >= len(page) {
		return nil
	}
	return &page[off]
}
