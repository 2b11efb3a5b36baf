package content

// Selection is the caret or selected range, addressed by block key and
// character offset.
type Selection struct {
	AnchorKey    string `json:"anchorKey"`
	AnchorOffset int    `json:"anchorOffset"`
	FocusKey     string `json:"focusKey"`
	FocusOffset  int    `json:"focusOffset"`
}

// Collapsed returns a caret at offset in the block with the given key.
func Collapsed(key string, offset int) Selection {
	return Selection{AnchorKey: key, AnchorOffset: offset, FocusKey: key, FocusOffset: offset}
}

// IsCollapsed reports whether anchor and focus are the same point.
func (s Selection) IsCollapsed() bool {
	return s.AnchorKey == s.FocusKey && s.AnchorOffset == s.FocusOffset
}

// point is one end of a selection resolved to a block index.
type point struct {
	index  int
	key    string
	offset int
}

func (p point) before(q point) bool {
	return p.index < q.index || (p.index == q.index && p.offset < q.offset)
}

// bounds resolves s against d and orders its ends.
func (s Selection) bounds(d Document) (start, end point, err error) {
	a, err := d.resolve(s.AnchorKey, s.AnchorOffset)
	if err != nil {
		return point{}, point{}, err
	}
	f, err := d.resolve(s.FocusKey, s.FocusOffset)
	if err != nil {
		return point{}, point{}, err
	}
	if f.before(a) {
		return f, a, nil
	}
	return a, f, nil
}
