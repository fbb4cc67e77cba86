package search

// Cursor is the keyboard-navigation state machine over a ranked suggestion
// list: a selected-index cursor that wraps at both ends. -1 means nothing
// is selected.
type Cursor struct {
	size     int
	selected int
}

// NewCursor creates a cursor over a suggestion list of the given size.
func NewCursor(size int) *Cursor {
	return &Cursor{size: size, selected: -1}
}

// Selected returns the current index, or -1 when nothing is selected.
func (c *Cursor) Selected() int {
	return c.selected
}

// Down moves the selection down, wrapping past the last item back to 0.
func (c *Cursor) Down() {
	if c.size == 0 {
		return
	}
	if c.selected < c.size-1 {
		c.selected++
	} else {
		c.selected = 0
	}
}

// Up moves the selection up, wrapping before the first item to the last.
func (c *Cursor) Up() {
	if c.size == 0 {
		return
	}
	if c.selected > 0 {
		c.selected--
	} else {
		c.selected = c.size - 1
	}
}

// Commit returns the index to act on: the current selection, or the
// top-ranked item when nothing is selected. Returns -1 for an empty list.
func (c *Cursor) Commit() int {
	if c.size == 0 {
		return -1
	}
	if c.selected >= 0 && c.selected < c.size {
		return c.selected
	}
	return 0
}

// Escape closes the suggestion list and clears the cursor without
// committing anything.
func (c *Cursor) Escape() {
	c.selected = -1
	c.size = 0
}
