package collection

// Item is anything a collection can hold: it must carry a stable server id.
type Item interface {
	GetID() string
}

// Page is one window of results returned by a Source.
type Page[T any] struct {
	Items []T
	Total int
}

// Cache holds the locally visible prefix of a server-side result set: the
// pages loaded so far, the server's total count, and the last page number
// fetched. Cache is not safe for concurrent use; Controller guards it.
type Cache[T Item] struct {
	items []T
	total int
	page  int
}

// NewCache returns an empty cache positioned on page 1.
func NewCache[T Item]() *Cache[T] {
	return &Cache[T]{page: 1}
}

// Replace discards everything and installs p as page 1.
func (c *Cache[T]) Replace(p Page[T]) {
	c.items = append([]T(nil), p.Items...)
	c.page = 1
	c.setTotal(p.Total)
}

// Append adds the items of page n after the current ones.
func (c *Cache[T]) Append(p Page[T], n int) {
	c.items = append(c.items, p.Items...)
	c.page = n
	c.setTotal(p.Total)
}

// setTotal records the server's total, never letting it fall below what is
// actually held.
func (c *Cache[T]) setTotal(total int) {
	if total < len(c.items) {
		total = len(c.items)
	}
	c.total = total
}

// Prepend inserts a locally created item at the front.
func (c *Cache[T]) Prepend(item T) {
	c.items = append([]T{item}, c.items...)
	c.total++
}

// ReplaceByID swaps in item at the position of the entry with the same id.
// It reports whether an entry was found.
func (c *Cache[T]) ReplaceByID(item T) bool {
	id := item.GetID()
	for i := range c.items {
		if c.items[i].GetID() == id {
			c.items[i] = item
			return true
		}
	}
	return false
}

// RemoveByID drops the entry with the given id. The total is decremented only
// when an entry was removed, so repeating a delete is harmless.
func (c *Cache[T]) RemoveByID(id string) bool {
	for i := range c.items {
		if c.items[i].GetID() == id {
			c.items = append(c.items[:i:i], c.items[i+1:]...)
			if c.total > 0 {
				c.total--
			}
			return true
		}
	}
	return false
}

// Items returns a copy of the cached items in display order.
func (c *Cache[T]) Items() []T {
	return append([]T(nil), c.items...)
}

func (c *Cache[T]) Len() int   { return len(c.items) }
func (c *Cache[T]) Total() int { return c.total }
func (c *Cache[T]) Page() int  { return c.page }

// HasMore reports whether the server holds items beyond those cached.
func (c *Cache[T]) HasMore() bool {
	return len(c.items) < c.total
}
