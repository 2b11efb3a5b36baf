package content

import "strings"

// Block type tags. A block has one layout tag (Unstyled or HeaderOne) and
// any number of decoration tags.
const (
	Unstyled  = "unstyled"
	HeaderOne = "header-one"
	Bold      = "BOLD"
	Red       = "RED"
	Underline = "UNDERLINE"
)

// Type is a space-separated set of style tags, e.g. "header-one BOLD".
type Type string

// Tags returns the tags of t in first-seen order without duplicates.
func (t Type) Tags() []string {
	fields := strings.Fields(string(t))
	seen := make(map[string]bool, len(fields))
	tags := fields[:0]
	for _, f := range fields {
		if seen[f] {
			continue
		}
		seen[f] = true
		tags = append(tags, f)
	}
	return tags
}

// Has reports whether tag is one of t's tags.
func (t Type) Has(tag string) bool {
	for _, f := range strings.Fields(string(t)) {
		if f == tag {
			return true
		}
	}
	return false
}

// With returns t with tag added. The unstyled tag is dropped as soon as any
// other tag joins the set.
func (t Type) With(tag string) Type {
	if tag == Unstyled {
		return Unstyled
	}
	var tags []string
	for _, f := range t.Tags() {
		if f != Unstyled {
			tags = append(tags, f)
		}
	}
	if !t.Has(tag) {
		tags = append(tags, tag)
	}
	return Type(strings.Join(tags, " "))
}

// IsUnstyled reports whether t is exactly the unstyled layout tag.
func (t Type) IsUnstyled() bool { return t == Unstyled }

func (t Type) String() string { return string(t) }
