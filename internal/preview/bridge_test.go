package preview

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const siteOrigin = "https://www.pyomin.com"

func newBridgeServer(t *testing.T) (*Bridge, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	b := NewBridge(siteOrigin)
	r := gin.New()
	b.Register(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/preview/ws"
	return b, wsURL
}

func dial(t *testing.T, wsURL, origin string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	header := http.Header{}
	if origin != "" {
		header.Set("Origin", origin)
	}
	return websocket.DefaultDialer.Dial(wsURL, header)
}

func sendReady(t *testing.T, conn *websocket.Conn, origin string) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(envelope{Type: TypeReady, Origin: origin}))
}

func readData(t *testing.T, conn *websocket.Conn, within time.Duration) (envelope, bool) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(within)))
	var env envelope
	if err := conn.ReadJSON(&env); err != nil {
		return envelope{}, false
	}
	return env, true
}

func TestUpgrade_ForeignOriginRejected(t *testing.T) {
	_, wsURL := newBridgeServer(t)

	conn, resp, err := dial(t, wsURL, "https://evil.example")
	require.Error(t, err)
	assert.Nil(t, conn)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestUpgrade_SubdomainIsForeign(t *testing.T) {
	_, wsURL := newBridgeServer(t)

	conn, _, err := dial(t, wsURL, "https://staging.pyomin.com")
	require.Error(t, err)
	assert.Nil(t, conn)
}

func TestReady_TriggersInitialData(t *testing.T) {
	b, wsURL := newBridgeServer(t)
	b.SetData(Data{
		Title:     "첫 글",
		Content:   "<p>본문</p>",
		Category:  "개발",
		CreatedAt: time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC),
	})

	conn, _, err := dial(t, wsURL, siteOrigin)
	require.NoError(t, err)
	defer conn.Close()

	sendReady(t, conn, siteOrigin)

	env, ok := readData(t, conn, time.Second)
	require.True(t, ok, "expected PREVIEW_DATA after PREVIEW_READY")
	assert.Equal(t, TypeData, env.Type)
	require.NotNil(t, env.Payload)
	assert.Equal(t, "첫 글", env.Payload.Title)
	assert.Equal(t, "개발", env.Payload.Category)
	assert.Equal(t, "2026-08-29", env.Payload.CreatedAt)
}

func TestReady_ForeignEnvelopeIgnored(t *testing.T) {
	b, wsURL := newBridgeServer(t)
	b.SetData(Data{Title: "비공개"})

	conn, _, err := dial(t, wsURL, siteOrigin)
	require.NoError(t, err)
	defer conn.Close()

	// Readiness claimed by a foreign origin must produce zero sends
	sendReady(t, conn, "https://evil.example")

	_, ok := readData(t, conn, 300*time.Millisecond)
	assert.False(t, ok, "bridge must not answer a foreign PREVIEW_READY")
}

func TestEmptyCategory_FallsBack(t *testing.T) {
	b, wsURL := newBridgeServer(t)
	b.SetData(Data{Title: "무제"})

	conn, _, err := dial(t, wsURL, siteOrigin)
	require.NoError(t, err)
	defer conn.Close()

	sendReady(t, conn, siteOrigin)

	env, ok := readData(t, conn, time.Second)
	require.True(t, ok)
	assert.Equal(t, FallbackCategory, env.Payload.Category)
}

func TestSetData_PushesToReadySession(t *testing.T) {
	b, wsURL := newBridgeServer(t)

	conn, _, err := dial(t, wsURL, siteOrigin)
	require.NoError(t, err)
	defer conn.Close()

	sendReady(t, conn, siteOrigin)
	_, ok := readData(t, conn, time.Second)
	require.True(t, ok)

	b.SetData(Data{Title: "갱신", Category: "일상"})

	env, ok := readData(t, conn, time.Second)
	require.True(t, ok)
	assert.Equal(t, "갱신", env.Payload.Title)
}

func TestSetTitle_DebouncesToLatest(t *testing.T) {
	b, wsURL := newBridgeServer(t)

	conn, _, err := dial(t, wsURL, siteOrigin)
	require.NoError(t, err)
	defer conn.Close()

	sendReady(t, conn, siteOrigin)
	_, ok := readData(t, conn, time.Second)
	require.True(t, ok)

	b.SetTitle("제")
	time.Sleep(100 * time.Millisecond)
	b.SetTitle("제목")

	env, ok := readData(t, conn, time.Second)
	require.True(t, ok)
	assert.Equal(t, "제목", env.Payload.Title)

	// The earlier keystroke was cancelled: exactly one send
	_, ok = readData(t, conn, 300*time.Millisecond)
	assert.False(t, ok)
}

func TestClose_CancelsPendingDebounce(t *testing.T) {
	b, wsURL := newBridgeServer(t)

	conn, _, err := dial(t, wsURL, siteOrigin)
	require.NoError(t, err)
	defer conn.Close()

	sendReady(t, conn, siteOrigin)
	_, ok := readData(t, conn, time.Second)
	require.True(t, ok)

	b.SetTitle("사라질 제목")
	b.Close()

	_, ok = readData(t, conn, 600*time.Millisecond)
	assert.False(t, ok, "closing must cancel the scheduled send")
}
