package preview

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/pyomin/bluecool-admin/pkg/logger"
)

const (
	// TitleDebounce is the delay between a title edit and the send
	TitleDebounce = 400 * time.Millisecond

	writeWait = 10 * time.Second

	// FallbackCategory fills the preview while no category is chosen
	FallbackCategory = "임시 카테고리"
)

// Message types of the preview protocol. READY flows inbound only,
// DATA outbound only; the preview page never mutates console state.
const (
	TypeReady = "PREVIEW_READY"
	TypeData  = "PREVIEW_DATA"
)

// Data the console-side snapshot a preview renders
type Data struct {
	Title     string
	Content   string
	Category  string
	CreatedAt time.Time
}

type payload struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	Category  string `json:"category"`
	CreatedAt string `json:"createdAt"`
}

type envelope struct {
	Type    string   `json:"type"`
	Origin  string   `json:"origin,omitempty"`
	Payload *payload `json:"payload,omitempty"`
}

// Bridge hosts the websocket endpoint the public site's /posts/preview
// page connects to. At most one preview session is live; opening a new
// one replaces the old.
type Bridge struct {
	origin   string
	upgrader websocket.Upgrader
	log      zerolog.Logger

	mu       sync.Mutex
	sess     *session
	data     Data
	debounce *time.Timer
}

type session struct {
	conn  *websocket.Conn
	ready bool

	// wmu serialises writers: the ready reply, explicit pushes and the
	// debounce timer all write
	wmu sync.Mutex
}

// NewBridge builds a bridge locked to the exact site origin
func NewBridge(siteOrigin string) *Bridge {
	b := &Bridge{
		origin: siteOrigin,
		log:    logger.WithComponent("preview"),
	}
	b.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		// Exact string match; subdomains and scheme variants are foreign
		CheckOrigin: func(r *http.Request) bool {
			return r.Header.Get("Origin") == b.origin
		},
	}
	return b
}

// Register mounts the websocket endpoint on the gin engine
func (b *Bridge) Register(r *gin.Engine) {
	r.GET("/preview/ws", b.handleWS)
}

// Engine builds the standalone bridge server with CORS locked to the
// site origin.
func (b *Bridge) Engine(mode string) *gin.Engine {
	gin.SetMode(mode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{b.origin},
		AllowMethods: []string{http.MethodGet},
	}))
	b.Register(r)
	return r
}

func (b *Bridge) handleWS(c *gin.Context) {
	conn, err := b.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		b.log.Warn().Err(err).Str("origin", c.GetHeader("Origin")).Msg("미리보기 연결 거부")
		return
	}

	s := &session{conn: conn}
	b.mu.Lock()
	if b.sess != nil {
		b.sess.conn.Close()
	}
	b.sess = s
	b.mu.Unlock()

	go b.readLoop(s)
}

// readLoop consumes inbound envelopes. Only PREVIEW_READY carrying the
// exact site origin is honoured; everything else is dropped, since the
// preview page is untrusted.
func (b *Bridge) readLoop(s *session) {
	defer func() {
		s.conn.Close()
		b.mu.Lock()
		if b.sess == s {
			b.sess = nil
			b.cancelDebounceLocked()
		}
		b.mu.Unlock()
	}()

	for {
		var env envelope
		if err := s.conn.ReadJSON(&env); err != nil {
			return
		}
		if env.Type != TypeReady || env.Origin != b.origin {
			continue
		}

		b.mu.Lock()
		first := !s.ready
		s.ready = true
		data := b.data
		b.mu.Unlock()

		if first {
			b.send(s, data)
		}
	}
}

// SetData stores the snapshot and pushes it immediately when a ready
// session exists (the explicit trigger path).
func (b *Bridge) SetData(d Data) {
	b.mu.Lock()
	b.data = d
	s := b.readySessionLocked()
	b.mu.Unlock()

	if s != nil {
		b.send(s, d)
	}
}

// SetTitle updates only the title, debounced: rapid edits coalesce
// into one send reflecting the latest value.
func (b *Bridge) SetTitle(title string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.data.Title = title
	if b.readySessionLocked() == nil {
		return
	}

	b.cancelDebounceLocked()
	b.debounce = time.AfterFunc(TitleDebounce, func() {
		b.mu.Lock()
		s := b.readySessionLocked()
		data := b.data
		b.mu.Unlock()
		if s != nil {
			b.send(s, data)
		}
	})
}

// Close tears the session down and cancels any pending debounced send
func (b *Bridge) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.cancelDebounceLocked()
	if b.sess != nil {
		b.sess.conn.Close()
		b.sess = nil
	}
}

func (b *Bridge) readySessionLocked() *session {
	if b.sess != nil && b.sess.ready {
		return b.sess
	}
	return nil
}

func (b *Bridge) cancelDebounceLocked() {
	if b.debounce != nil {
		b.debounce.Stop()
		b.debounce = nil
	}
}

func (b *Bridge) send(s *session, d Data) {
	category := d.Category
	if category == "" {
		category = FallbackCategory
	}
	createdAt := d.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	env := envelope{
		Type: TypeData,
		Payload: &payload{
			Title:     d.Title,
			Content:   d.Content,
			Category:  category,
			CreatedAt: createdAt.Format("2006-01-02"),
		},
	}

	s.wmu.Lock()
	defer s.wmu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck
	if err := s.conn.WriteJSON(env); err != nil {
		b.log.Warn().Err(err).Msg("미리보기 전송 실패")
	}
}
