package ledmap

// LED is a single LED's fractional sampling region. The
// region is expressed as fractions of the bordered image area so it
// survives a resize without needing to be recomputed from scratch —
// only Mapping.Rebuild's pixel-index lists are resolution-dependent.
type LED struct {
	MinXFrac, MaxXFrac float64
	MinYFrac, MaxYFrac float64

	// Group is a non-zero key shared by LEDs whose regions should be
	// combined and whose output color should be identical.
	Group int32

	Disabled bool
}

// Strip is an ordered sequence of LED descriptors.
type Strip []LED

// Empty reports whether the LED's region has zero area, per the
// invariant "An LED with zero-area region produces BLACK".
func (l LED) Empty() bool {
	return l.Disabled || l.MaxXFrac <= l.MinXFrac || l.MaxYFrac <= l.MinYFrac
}
