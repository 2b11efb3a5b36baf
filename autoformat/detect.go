package autoformat

import (
	"strings"

	"github.com/alimasry/blockedit/content"
)

// Kind is the decision the detector makes for one change.
type Kind int

const (
	Passthrough Kind = iota
	Reset
	Transform
)

func (k Kind) String() string {
	switch k {
	case Reset:
		return "reset"
	case Transform:
		return "transform"
	default:
		return "passthrough"
	}
}

// Action is the detector's verdict. Rule is set only for Transform.
type Action struct {
	Kind     Kind
	Rule     Rule
	BlockKey string
}

// Detector inspects the block under the caret after each change.
type Detector struct {
	rules []Rule
}

// NewDetector returns a detector over rules, or DefaultRules when none are
// given.
func NewDetector(rules ...Rule) *Detector {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	return &Detector{rules: append([]Rule(nil), rules...)}
}

// Detect decides what to do with the block holding sel's anchor. It has no
// side effects.
func (d *Detector) Detect(doc content.Document, sel content.Selection) Action {
	b, ok := doc.BlockForKey(sel.AnchorKey)
	if !ok {
		return Action{Kind: Passthrough}
	}
	if b.Text == "" && !b.Type.IsUnstyled() {
		return Action{Kind: Reset, BlockKey: b.Key}
	}
	for _, r := range d.rules {
		if strings.HasPrefix(b.Text, r.Prefix) && sel.AnchorOffset == r.Len() {
			return Action{Kind: Transform, Rule: r, BlockKey: b.Key}
		}
	}
	return Action{Kind: Passthrough, BlockKey: b.Key}
}
