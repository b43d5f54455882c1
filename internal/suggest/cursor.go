package suggest

// Cursor tracks the highlighted index over a suggestion list. Index -1 means
// nothing highlighted; movement clamps to [0, size-1] with no wraparound.
type Cursor struct {
	index int
	size  int
}

// NewCursor creates a cursor over a list of the given size, with nothing
// highlighted.
func NewCursor(size int) *Cursor {
	if size < 0 {
		size = 0
	}
	return &Cursor{index: -1, size: size}
}

// Resize adjusts the cursor to a new list size, resetting the highlight.
func (c *Cursor) Resize(size int) {
	if size < 0 {
		size = 0
	}
	c.size = size
	c.index = -1
}

// Down moves the highlight one row down, clamped to the last row.
func (c *Cursor) Down() {
	if c.size == 0 {
		return
	}
	if c.index < c.size-1 {
		c.index++
	}
}

// Up moves the highlight one row up, clamped to the first row.
func (c *Cursor) Up() {
	if c.size == 0 {
		return
	}
	if c.index > 0 {
		c.index--
	}
}

// Index returns the highlighted index, -1 if none.
func (c *Cursor) Index() int {
	return c.index
}

// Selected reports whether a row is highlighted and, if so, which one.
func (c *Cursor) Selected() (int, bool) {
	if c.index < 0 || c.index >= c.size {
		return -1, false
	}
	return c.index, true
}

// Reset clears the highlight.
func (c *Cursor) Reset() {
	c.index = -1
}
