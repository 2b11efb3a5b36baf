package server

import (
	"encoding/json"

	"github.com/alimasry/blockedit/content"
	"github.com/alimasry/blockedit/editor"
	"github.com/alimasry/blockedit/style"
)

// Message types exchanged over WebSocket.
const (
	MsgOpen   = "open"
	MsgEdit   = "edit"
	MsgSave   = "save"
	MsgUndo   = "undo"
	MsgRedo   = "redo"
	MsgFocus  = "focus"
	MsgBlur   = "blur"
	MsgState  = "state"
	MsgStatus = "status"
	MsgError  = "error"
)

// ClientMessage is a message from client to server.
type ClientMessage struct {
	Type  string         `json:"type"`
	DocID string         `json:"docId,omitempty"`
	Event *content.Event `json:"event,omitempty"`
}

// ServerMessage is a message from server to client.
type ServerMessage struct {
	Type        string             `json:"type"`
	DocID       string             `json:"docId,omitempty"`
	Blocks      []BlockView        `json:"blocks,omitempty"`
	Selection   *content.Selection `json:"selection,omitempty"`
	Placeholder string             `json:"placeholder,omitempty"`
	Action      string             `json:"action,omitempty"`
	CanUndo     bool               `json:"canUndo,omitempty"`
	CanRedo     bool               `json:"canRedo,omitempty"`
	Message     string             `json:"message,omitempty"`
}

// BlockView is a block as the browser renders it.
type BlockView struct {
	Key       string       `json:"key"`
	Text      string       `json:"text"`
	Type      content.Type `json:"type"`
	ClassName string       `json:"className"`
}

// Encode serializes a ServerMessage to JSON bytes.
func (m ServerMessage) Encode() []byte {
	b, _ := json.Marshal(m)
	return b
}

func stateMessage(docID string, ed *editor.Editor, action string) ServerMessage {
	st := ed.State()
	blocks := st.Document.Blocks()
	views := make([]BlockView, len(blocks))
	for i, b := range blocks {
		views[i] = BlockView{
			Key:       b.Key,
			Text:      b.Text,
			Type:      b.Type,
			ClassName: style.ClassName(b.Type),
		}
	}
	sel := st.Selection
	return ServerMessage{
		Type:        MsgState,
		DocID:       docID,
		Blocks:      views,
		Selection:   &sel,
		Placeholder: ed.Placeholder(),
		Action:      action,
		CanUndo:     ed.History().CanUndo(),
		CanRedo:     ed.History().CanRedo(),
	}
}
