package dashboard

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"testing"
	"time"

	"github.com/coder/websocket"
)

func startTestServer(t *testing.T) *Server {
	t.Helper()

	server := NewServer("127.0.0.1:0", log.New(os.Stderr, "[test] ", log.LstdFlags))
	if err := server.Start(); err != nil {
		t.Fatalf("failed to start server: %v", err)
	}
	t.Cleanup(func() {
		if err := server.Stop(); err != nil {
			t.Errorf("failed to stop server: %v", err)
		}
	})
	time.Sleep(50 * time.Millisecond)
	return server
}

func dialTestClient(t *testing.T, server *Server) *websocket.Conn {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws://"+server.Addr()+"/ws", nil)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func TestServerStartStop(t *testing.T) {
	server := startTestServer(t)
	if server.Addr() == "" {
		t.Fatal("server address is empty")
	}
}

func TestClientReceivesBroadcast(t *testing.T) {
	server := startTestServer(t)
	conn := dialTestClient(t, server)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// First frame is the hello message.
	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("failed to read hello: %v", err)
	}
	var hello Message
	if err := json.Unmarshal(data, &hello); err != nil {
		t.Fatalf("bad hello frame: %v", err)
	}
	if hello.Type != MessageTypeHello {
		t.Errorf("first message type = %s, want %s", hello.Type, MessageTypeHello)
	}

	if count := server.ClientCount(); count != 1 {
		t.Errorf("client count = %d, want 1", count)
	}

	handler := NewHandler(server, nil)
	handler.OnUploadComplete(3, 1, 2)

	_, data, err = conn.Read(ctx)
	if err != nil {
		t.Fatalf("failed to read broadcast: %v", err)
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("bad broadcast frame: %v", err)
	}
	if msg.Type != MessageTypeUploadComplete {
		t.Errorf("message type = %s, want %s", msg.Type, MessageTypeUploadComplete)
	}

	var upload UploadCompleteData
	if err := json.Unmarshal(msg.Data, &upload); err != nil {
		t.Fatalf("bad upload data: %v", err)
	}
	if upload.Succeeded != 3 || upload.Failed != 1 || upload.Events != 2 {
		t.Errorf("unexpected upload data: %+v", upload)
	}
}

func TestNilHandlerIsSafe(t *testing.T) {
	var h *Handler
	h.OnStoreSaved(1)
	h.OnUploadComplete(1, 2, 3)
	h.OnSyncComplete(1, 2, 3)
}

func TestBroadcastWithoutClients(t *testing.T) {
	server := startTestServer(t)
	// Must not block or panic.
	server.Broadcast(Message{Type: MessageTypeStoreSaved})
}
