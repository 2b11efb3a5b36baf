package server

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/alimasry/blockedit/content"
	"github.com/alimasry/blockedit/editor"
	"github.com/alimasry/blockedit/persist"
)

const saveTimeout = 10 * time.Second

// Session owns the editor for a single document and its one client.
// All events are serialized through a single goroutine.
type Session struct {
	docID         string
	client        *Client
	editor        *editor.Editor
	bridge        *persist.Bridge
	status        editor.Status
	statusTimeout time.Duration
	log           *zap.Logger

	// onClose runs on the session goroutine after the client left.
	onClose func()

	incoming    chan ClientMessage
	leave       chan *Client
	clearStatus chan uint64
	stop        chan struct{}
	done        chan struct{}
}

func newSession(docID string, c *Client, ed *editor.Editor, bridge *persist.Bridge, statusTimeout time.Duration, log *zap.Logger) *Session {
	if statusTimeout <= 0 {
		statusTimeout = editor.DefaultStatusTimeout
	}
	return &Session{
		docID:         docID,
		client:        c,
		editor:        ed,
		bridge:        bridge,
		statusTimeout: statusTimeout,
		log:           log.Named("session").With(zap.String("doc", docID)),
		incoming:      make(chan ClientMessage, 64),
		leave:         make(chan *Client),
		clearStatus:   make(chan uint64, 1),
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
}

// Run is the session's main loop. It sends the current state to the client
// and then handles its messages until the client leaves.
func (s *Session) Run() {
	defer close(s.done)
	s.sendState("")

	for {
		select {
		case c := <-s.leave:
			if c != s.client {
				continue
			}
			s.handleLeave()
			return
		case msg := <-s.incoming:
			s.handleMessage(msg)
		case token := <-s.clearStatus:
			if s.status.Clear(token) {
				s.client.sendMsg(ServerMessage{Type: MsgStatus, DocID: s.docID})
			}
		case <-s.stop:
			s.detach()
			return
		}
	}
}

func (s *Session) handleLeave() {
	s.client.mu.Lock()
	s.client.session = nil
	s.client.mu.Unlock()
	close(s.client.send)
	s.log.Debug("client left", zap.String("client", s.client.ID))
	if s.onClose != nil {
		s.onClose()
	}
}

// detach releases the document while the client is still connected. The
// connection is closed so the client's read pump exits and closes its send
// channel itself.
func (s *Session) detach() {
	s.client.mu.Lock()
	s.client.session = nil
	s.client.mu.Unlock()
	if s.client.conn != nil {
		s.client.conn.Close()
	}
	s.log.Debug("session closed", zap.String("client", s.client.ID))
	if s.onClose != nil {
		s.onClose()
	}
}

func (s *Session) handleMessage(msg ClientMessage) {
	switch msg.Type {
	case MsgEdit:
		s.handleEdit(msg.Event)
	case MsgSave:
		s.handleSave()
	case MsgUndo:
		if err := s.editor.Undo(); err != nil {
			s.client.sendError(err.Error())
			return
		}
		s.sendState("")
	case MsgRedo:
		if err := s.editor.Redo(); err != nil {
			s.client.sendError(err.Error())
			return
		}
		s.sendState("")
	case MsgFocus:
		s.editor.Focus()
		s.sendState("")
	case MsgBlur:
		s.editor.Blur()
		s.sendState("")
	default:
		s.client.sendError("unknown message type: " + msg.Type)
	}
}

func (s *Session) handleEdit(ev *content.Event) {
	if ev == nil {
		s.client.sendError("edit without event")
		return
	}
	action, err := s.editor.Handle(*ev)
	if err != nil {
		if !errors.Is(err, content.ErrInvalidEvent) {
			s.log.Error("edit failed", zap.String("kind", string(ev.Kind)), zap.Error(err))
		}
		s.client.sendError(err.Error())
		// Resync the client with the unchanged state.
		s.sendState("")
		return
	}
	s.sendState(action.Kind.String())
}

func (s *Session) handleSave() {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	if err := s.bridge.Save(ctx, s.editor.Document()); err != nil {
		s.log.Error("save failed", zap.Error(err))
		s.client.sendError("save failed: " + err.Error())
		return
	}
	s.log.Info("saved", zap.Int("blocks", s.editor.Document().Len()))

	token := s.status.Set(editor.SavedMessage)
	s.client.sendMsg(ServerMessage{Type: MsgStatus, DocID: s.docID, Message: editor.SavedMessage})
	time.AfterFunc(s.statusTimeout, func() {
		select {
		case s.clearStatus <- token:
		case <-s.done:
		}
	})
}

func (s *Session) sendState(action string) {
	s.client.sendMsg(stateMessage(s.docID, s.editor, action))
}

// Close stops the session, releases its document and disconnects the client.
func (s *Session) Close() {
	select {
	case <-s.stop:
	default:
		close(s.stop)
	}
	<-s.done
}
