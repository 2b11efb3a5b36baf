// Package autoformat turns markdown-like prefixes typed at the start of a
// block into block type tags.
package autoformat

import "github.com/alimasry/blockedit/content"

// Rule rewrites a block when its text starts with Prefix and the caret sits
// immediately after it.
type Rule struct {
	Prefix string
	Tag    string
}

// Len returns the prefix length in characters, which is also the caret
// offset the rule requires.
func (r Rule) Len() int { return len([]rune(r.Prefix)) }

// DefaultRules are evaluated top to bottom; the first match wins. The
// offset guard, not prefix specificity, keeps "* " from firing on "** ".
var DefaultRules = []Rule{
	{Prefix: "# ", Tag: content.HeaderOne},
	{Prefix: "* ", Tag: content.Bold},
	{Prefix: "** ", Tag: content.Red},
	{Prefix: "*** ", Tag: content.Underline},
}
