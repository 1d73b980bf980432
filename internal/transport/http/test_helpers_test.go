package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/taskchat/internal/config"
	"github.com/vovakirdan/taskchat/internal/core"
	"github.com/vovakirdan/taskchat/internal/proto"
	"github.com/vovakirdan/taskchat/internal/service/chat"
	"github.com/vovakirdan/taskchat/internal/service/tasks"
	"github.com/vovakirdan/taskchat/internal/store/sqlite"
)

type testEnv struct {
	server *httptest.Server
	chat   *chat.Service
	tasks  *tasks.Service
}

// startTestServer runs the full router against an in-memory store.
func startTestServer(t *testing.T, mutate func(*config.Config)) *testEnv {
	t.Helper()

	st, err := sqlite.NewWithSetup(":memory:", sqlite.Migrate)
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	chatSvc := chat.New(st)
	taskSvc := tasks.New(st)

	hub := core.NewHub(chatSvc, nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	cfg := config.Default()
	cfg.Addr = ":0"
	if mutate != nil {
		mutate(&cfg)
	}

	server := NewServer(hub, chatSvc, taskSvc, &cfg, nil)
	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return &testEnv{server: ts, chat: chatSvc, tasks: taskSvc}
}

func (e *testEnv) wsURL() string {
	return strings.Replace(e.server.URL, "http", "ws", 1) + "/ws"
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func dialWS(t *testing.T, ctx context.Context, url string) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "done") })
	return conn
}

func writeFrame(t *testing.T, ctx context.Context, conn *websocket.Conn, typ string, data string) {
	t.Helper()

	inbound := proto.Inbound{Type: typ}
	if data != "" {
		inbound.Data = []byte(data)
	}
	if err := wsjson.Write(ctx, conn, inbound); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

func readFrame(t *testing.T, ctx context.Context, conn *websocket.Conn) proto.Envelope {
	t.Helper()

	var env proto.Envelope
	if err := wsjson.Read(ctx, conn, &env); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return env
}

// connectWS performs the connect handshake and returns the session id.
func connectWS(t *testing.T, ctx context.Context, conn *websocket.Conn) string {
	t.Helper()

	writeFrame(t, ctx, conn, proto.InboundTypeConnect, `{"protocol":1}`)
	env := readFrame(t, ctx, conn)
	if env.Type != proto.OutboundTypeConnected {
		t.Fatalf("expected connected frame, got %+v", env)
	}

	var data proto.ConnectedData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("unmarshal connected data: %v", err)
	}
	if data.Session == "" {
		t.Fatal("expected a session id")
	}
	return data.Session
}
