package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/alimasry/blockedit/editor"
	"github.com/alimasry/blockedit/persist"
	"github.com/alimasry/blockedit/store"
)

const loadTimeout = 10 * time.Second

type openRequest struct {
	client *Client
	docID  string
	reply  chan *Session
}

// Options configure the editors a Hub creates.
type Options struct {
	Editor        editor.Options
	StatusTimeout time.Duration
	// DefaultDocID is opened when a client names no document.
	DefaultDocID string
}

// Hub manages document sessions and routes clients to the right session.
// A document is open by at most one client at a time.
type Hub struct {
	store    store.Store
	opts     Options
	log      *zap.Logger
	sessions map[string]*Session
	mu       sync.RWMutex

	open    chan openRequest
	release chan string
}

func NewHub(st store.Store, opts Options, log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		store:    st,
		opts:     opts,
		log:      log.Named("hub"),
		sessions: make(map[string]*Session),
		open:     make(chan openRequest, 64),
		release:  make(chan string, 64),
	}
}

// Run is the hub's main loop.
func (h *Hub) Run() {
	for {
		select {
		case req := <-h.open:
			req.reply <- h.handleOpen(req)
		case docID := <-h.release:
			h.mu.Lock()
			delete(h.sessions, docID)
			h.mu.Unlock()
			h.log.Debug("document released", zap.String("doc", docID))
		}
	}
}

func (h *Hub) handleOpen(req openRequest) *Session {
	docID := req.docID
	if docID == "" {
		docID = h.opts.DefaultDocID
	}
	if docID == "" {
		docID = persist.DefaultKey
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.sessions[docID]; ok {
		h.log.Info("refused second client", zap.String("doc", docID), zap.String("client", req.client.ID))
		req.client.sendError(fmt.Sprintf("document %q is already open", docID))
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()

	bridge := persist.NewBridge(h.store, docID, h.log)
	doc := bridge.LoadOrEmpty(ctx)

	s := newSession(docID, req.client, editor.New(doc, h.opts.Editor), bridge, h.opts.StatusTimeout, h.log)
	s.onClose = func() { h.release <- docID }
	h.sessions[docID] = s
	go s.Run()

	h.log.Info("document opened", zap.String("doc", docID), zap.String("client", req.client.ID))
	return s
}

// Shutdown closes every open session.
func (h *Hub) Shutdown() {
	h.mu.RLock()
	sessions := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.RUnlock()

	for _, s := range sessions {
		s.Close()
	}
}

// GetSession returns the session for a document, if active.
func (h *Hub) GetSession(docID string) *Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.sessions[docID]
}

// Documents lists the keys of saved documents.
func (h *Hub) Documents(ctx context.Context) ([]DocumentInfo, error) {
	entries, err := h.store.List(ctx)
	if err != nil {
		return nil, err
	}
	docs := make([]DocumentInfo, 0, len(entries))
	for _, e := range entries {
		docs = append(docs, DocumentInfo{
			ID:        e.Key,
			UpdatedAt: e.UpdatedAt,
			Open:      h.GetSession(e.Key) != nil,
		})
	}
	return docs, nil
}

// DocumentInfo describes a saved document.
type DocumentInfo struct {
	ID        string    `json:"id"`
	UpdatedAt time.Time `json:"updatedAt"`
	Open      bool      `json:"open"`
}
