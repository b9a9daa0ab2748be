package domain

// Cursor is the index of the active placeholder within a FieldOrder.
type Cursor int

// Advance moves one field forward, stopping at the last field.
func (c Cursor) Advance(n int) Cursor {
	if n == 0 {
		return 0
	}
	return min(c+1, Cursor(n-1))
}

// Retreat moves one field back, stopping at the first field.
func (c Cursor) Retreat() Cursor {
	return max(c-1, 0)
}

// JumpTo moves to the field named target, or stays put when nothing matches.
func (c Cursor) JumpTo(fields FieldOrder, target string) Cursor {
	if i := fields.Index(target); i >= 0 {
		return Cursor(i)
	}
	return c
}

// Clamp forces the cursor into [0, n-1].
func (c Cursor) Clamp(n int) Cursor {
	if n == 0 || c < 0 {
		return 0
	}
	return min(c, Cursor(n-1))
}
