package content

import "maps"

// InlineStyleRange marks characters [Offset, Offset+Length) with Style.
type InlineStyleRange struct {
	Offset int    `json:"offset"`
	Length int    `json:"length"`
	Style  string `json:"style"`
}

// EntityRange links characters [Offset, Offset+Length) to an entity in the
// document's entity map.
type EntityRange struct {
	Offset int `json:"offset"`
	Length int `json:"length"`
	Key    int `json:"key"`
}

// Block is one paragraph of a document.
type Block struct {
	Key               string             `json:"key"`
	Text              string             `json:"text"`
	Type              Type               `json:"type"`
	Depth             int                `json:"depth"`
	InlineStyleRanges []InlineStyleRange `json:"inlineStyleRanges"`
	EntityRanges      []EntityRange      `json:"entityRanges"`
	Data              map[string]any     `json:"data"`
}

// NewBlock returns an empty unstyled block with the given key.
func NewBlock(key string) Block {
	return Block{Key: key, Type: Unstyled}
}

// Len returns the length of the block's text in characters.
func (b Block) Len() int { return runeLen(b.Text) }

func (b Block) clone() Block {
	out := b
	if b.InlineStyleRanges != nil {
		out.InlineStyleRanges = append([]InlineStyleRange(nil), b.InlineStyleRanges...)
	}
	if b.EntityRanges != nil {
		out.EntityRanges = append([]EntityRange(nil), b.EntityRanges...)
	}
	if b.Data != nil {
		out.Data = maps.Clone(b.Data)
	}
	return out
}

// textEdit removes `removed` characters at `at` and then inserts `inserted`
// characters at the same position.
type textEdit struct {
	at, removed, inserted int
}

// withText returns a copy of b holding text, with its ranges moved through
// the edits that produced text from b.Text.
func (b Block) withText(text string, edits ...textEdit) Block {
	out := b.clone()
	out.Text = text
	for _, e := range edits {
		out.InlineStyleRanges = editStyles(out.InlineStyleRanges, e)
		out.EntityRanges = editEntities(out.EntityRanges, e)
	}
	return out
}

// splitAt cuts b at offset. The lower half keeps b's key; the upper half
// takes key and inherits b's type and depth.
func (b Block) splitAt(offset int, key string) (Block, Block) {
	text := []rune(b.Text)
	lower := b.clone()
	lower.Text = string(text[:offset])
	upper := Block{Key: key, Text: string(text[offset:]), Type: b.Type, Depth: b.Depth}

	lower.InlineStyleRanges, lower.EntityRanges = nil, nil
	for _, r := range b.InlineStyleRanges {
		if s, n, ok := intersect(r.Offset, r.Length, 0, offset); ok {
			lower.InlineStyleRanges = append(lower.InlineStyleRanges, InlineStyleRange{Offset: s, Length: n, Style: r.Style})
		}
		if s, n, ok := intersect(r.Offset, r.Length, offset, len(text)); ok {
			upper.InlineStyleRanges = append(upper.InlineStyleRanges, InlineStyleRange{Offset: s - offset, Length: n, Style: r.Style})
		}
	}
	for _, r := range b.EntityRanges {
		if s, n, ok := intersect(r.Offset, r.Length, 0, offset); ok {
			lower.EntityRanges = append(lower.EntityRanges, EntityRange{Offset: s, Length: n, Key: r.Key})
		}
		if s, n, ok := intersect(r.Offset, r.Length, offset, len(text)); ok {
			upper.EntityRanges = append(upper.EntityRanges, EntityRange{Offset: s - offset, Length: n, Key: r.Key})
		}
	}
	return lower, upper
}

// join appends next's text and ranges to b. b keeps its key and type.
func (b Block) join(next Block) Block {
	out := b.clone()
	shift := b.Len()
	out.Text = b.Text + next.Text
	for _, r := range next.InlineStyleRanges {
		r.Offset += shift
		out.InlineStyleRanges = append(out.InlineStyleRanges, r)
	}
	for _, r := range next.EntityRanges {
		r.Offset += shift
		out.EntityRanges = append(out.EntityRanges, r)
	}
	return out
}

func editStyles(ranges []InlineStyleRange, e textEdit) []InlineStyleRange {
	var out []InlineStyleRange
	for _, r := range ranges {
		if off, n := editSpan(r.Offset, r.Length, e); n > 0 {
			out = append(out, InlineStyleRange{Offset: off, Length: n, Style: r.Style})
		}
	}
	return out
}

func editEntities(ranges []EntityRange, e textEdit) []EntityRange {
	var out []EntityRange
	for _, r := range ranges {
		if off, n := editSpan(r.Offset, r.Length, e); n > 0 {
			out = append(out, EntityRange{Offset: off, Length: n, Key: r.Key})
		}
	}
	return out
}

// editSpan moves the span [offset, offset+length) through e. Characters
// typed at the end of a span, or at the very start of the text, take the
// span's style.
func editSpan(offset, length int, e textEdit) (int, int) {
	start, end := offset, offset+length
	if e.removed > 0 {
		start = clipPos(start, e.at, e.at+e.removed)
		end = clipPos(end, e.at, e.at+e.removed)
	}
	if e.inserted > 0 {
		switch {
		case e.at < start || (e.at == start && start > 0):
			start += e.inserted
			end += e.inserted
		case e.at <= end:
			end += e.inserted
		}
	}
	return start, end - start
}

func clipPos(p, from, to int) int {
	switch {
	case p <= from:
		return p
	case p < to:
		return from
	default:
		return p - (to - from)
	}
}

func intersect(offset, length, from, to int) (int, int, bool) {
	s, e := max(offset, from), min(offset+length, to)
	if e <= s {
		return 0, 0, false
	}
	return s, e - s, true
}
