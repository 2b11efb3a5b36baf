// Package editor runs input events through the document model and the
// autoformat rules, and keeps the undo history.
package editor

import (
	"fmt"

	"github.com/alimasry/blockedit/autoformat"
	"github.com/alimasry/blockedit/content"
)

// State is one immutable editor snapshot.
type State struct {
	Document  content.Document
	Selection content.Selection
}

// NewState returns a state over doc with the caret at the start of the
// first block.
func NewState(doc content.Document) State {
	return State{Document: doc, Selection: content.Collapsed(doc.First().Key, 0)}
}

// Result is the outcome of one Step.
type Result struct {
	// State is the authoritative state after autoformatting.
	State State
	// Edited is the state after the raw edit, before autoformatting.
	Edited State
	// Change is the change type of the raw edit; empty when the event did
	// not touch the content.
	Change content.ChangeType
	Action autoformat.Action
}

// Step applies ev to s and then lets det decide whether the edited block is
// reset, transformed or accepted as is. Every editing event is inspected,
// including ones that left the text unchanged such as a backspace at the
// start of the document; selection moves are not. The output of a transform
// is not inspected again within the same step, so a block left empty but
// styled by a trigger is only reset by the next editing event.
func Step(det *autoformat.Detector, s State, ev content.Event) (Result, error) {
	doc, sel, change, err := content.ApplyEvent(s.Document, s.Selection, ev)
	if err != nil {
		return Result{State: s, Edited: s}, err
	}
	edited := State{Document: doc, Selection: sel}
	res := Result{State: edited, Edited: edited, Change: change}
	if ev.Kind == content.EventSelect {
		return res, nil
	}

	res.Action = det.Detect(doc, sel)
	switch res.Action.Kind {
	case autoformat.Reset:
		next, err := autoformat.ResetBlock(doc, res.Action.BlockKey)
		if err != nil {
			return Result{State: s, Edited: s}, fmt.Errorf("reset block: %w", err)
		}
		res.State = State{Document: next, Selection: sel}
	case autoformat.Transform:
		next, nsel, err := autoformat.Apply(doc, res.Action.BlockKey, res.Action.Rule)
		if err != nil {
			return Result{State: s, Edited: s}, fmt.Errorf("apply %q: %w", res.Action.Rule.Prefix, err)
		}
		res.State = State{Document: next, Selection: nsel}
	}
	return res, nil
}
