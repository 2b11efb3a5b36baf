package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/alimasry/blockedit/content"
	"github.com/alimasry/blockedit/editor"
	"github.com/alimasry/blockedit/store"
)

func setupTestServer(t *testing.T) (*httptest.Server, *Hub) {
	t.Helper()
	static := t.TempDir()
	os.WriteFile(filepath.Join(static, "index.html"), []byte("<html>editor</html>"), 0o644)

	// Pumps outlive the test body, so they must not log through t.
	hub := NewHub(store.NewMemoryStore(), Options{StatusTimeout: time.Hour}, zap.NewNop())
	go hub.Run()
	server := httptest.NewServer(NewHandler(hub, static))
	t.Cleanup(server.Close)
	return server, hub
}

func wsConnect(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("status: %d", resp.StatusCode)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readWsMsg(t *testing.T, conn *websocket.Conn) ServerMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg ServerMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return msg
}

func TestHandler_StaticFiles(t *testing.T) {
	server, _ := setupTestServer(t)

	resp, err := http.Get(server.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestHandler_OpenEditSave(t *testing.T) {
	server, _ := setupTestServer(t)
	conn := wsConnect(t, server)

	if err := conn.WriteJSON(ClientMessage{Type: MsgOpen, DocID: "test-doc"}); err != nil {
		t.Fatal(err)
	}
	if resp := readWsMsg(t, conn); resp.Type != MsgState {
		t.Fatalf("expected state, got %q", resp.Type)
	}

	for _, r := range "** x" {
		conn.WriteJSON(ClientMessage{Type: MsgEdit, Event: &content.Event{Kind: content.EventInsertText, Text: string(r)}})
	}
	var last ServerMessage
	for i := 0; i < 4; i++ {
		last = readWsMsg(t, conn)
	}
	if b := last.Blocks[0]; b.Text != "x" || b.Type != "RED" || b.ClassName != "text-red-500" {
		t.Fatalf("block = %+v", b)
	}

	conn.WriteJSON(ClientMessage{Type: MsgSave})
	if status := readWsMsg(t, conn); status.Type != MsgStatus || status.Message != editor.SavedMessage {
		t.Fatalf("expected saved status, got %+v", status)
	}

	resp, err := http.Get(server.URL + "/documents")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var docs []DocumentInfo
	if err := json.NewDecoder(resp.Body).Decode(&docs); err != nil {
		t.Fatal(err)
	}
	if len(docs) != 1 || docs[0].ID != "test-doc" || !docs[0].Open {
		t.Errorf("documents = %+v", docs)
	}
}

func TestHandler_SecondConnectionRefused(t *testing.T) {
	server, _ := setupTestServer(t)

	conn1 := wsConnect(t, server)
	conn1.WriteJSON(ClientMessage{Type: MsgOpen, DocID: "shared"})
	if msg := readWsMsg(t, conn1); msg.Type != MsgState {
		t.Fatalf("c1 expected state, got %q", msg.Type)
	}

	conn2 := wsConnect(t, server)
	conn2.WriteJSON(ClientMessage{Type: MsgOpen, DocID: "shared"})
	if msg := readWsMsg(t, conn2); msg.Type != MsgError {
		t.Fatalf("c2 expected error, got %q", msg.Type)
	}

	// Edits from a client without an open document are rejected.
	conn2.WriteJSON(ClientMessage{Type: MsgSave})
	if msg := readWsMsg(t, conn2); msg.Type != MsgError || msg.Message != "no document open" {
		t.Fatalf("expected no document error, got %+v", msg)
	}
}

func TestHandler_UnknownMessage(t *testing.T) {
	server, _ := setupTestServer(t)
	conn := wsConnect(t, server)

	conn.WriteMessage(websocket.TextMessage, []byte("not json"))
	if msg := readWsMsg(t, conn); msg.Type != MsgError {
		t.Fatalf("expected error, got %q", msg.Type)
	}
	conn.WriteJSON(ClientMessage{Type: "dance"})
	if msg := readWsMsg(t, conn); msg.Type != MsgError {
		t.Fatalf("expected error, got %q", msg.Type)
	}
}

func TestHandler_ShutdownDisconnectsClients(t *testing.T) {
	server, hub := setupTestServer(t)
	conn := wsConnect(t, server)

	conn.WriteJSON(ClientMessage{Type: MsgOpen, DocID: "closing"})
	if msg := readWsMsg(t, conn); msg.Type != MsgState {
		t.Fatalf("expected state, got %q", msg.Type)
	}

	hub.Shutdown()

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if ne, ok := err.(interface{ Timeout() bool }); ok && ne.Timeout() {
				t.Fatal("connection was not closed")
			}
			break
		}
	}

	// The document can be opened again from a new connection.
	conn2 := wsConnect(t, server)
	deadline := time.Now().Add(2 * time.Second)
	for {
		conn2.WriteJSON(ClientMessage{Type: MsgOpen, DocID: "closing"})
		msg := readWsMsg(t, conn2)
		if msg.Type == MsgState {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("reopen kept failing: %+v", msg)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
