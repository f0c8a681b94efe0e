package alert

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Severity toast severity
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Alert a single toast
type Alert struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"severity"`
	CreatedAt time.Time `json:"createdAt"`
}

const subscriberBuffer = 16

// Hub the process-wide toast queue. Publishing never blocks; a
// subscriber that stops draining loses toasts instead of wedging the
// publisher.
type Hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan Alert
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan Alert)}
}

// Show publishes a toast to every subscriber
func (h *Hub) Show(message string, severity Severity) Alert {
	a := Alert{
		ID:        uuid.NewString(),
		Message:   message,
		Severity:  severity,
		CreatedAt: time.Now(),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- a:
		default:
		}
	}
	return a
}

// Success publishes a success toast
func (h *Hub) Success(message string) Alert { return h.Show(message, SeveritySuccess) }

// Info publishes an info toast
func (h *Hub) Info(message string) Alert { return h.Show(message, SeverityInfo) }

// Warning publishes a warning toast
func (h *Hub) Warning(message string) Alert { return h.Show(message, SeverityWarning) }

// Error publishes an error toast
func (h *Hub) Error(message string) Alert { return h.Show(message, SeverityError) }

// Subscribe registers a consumer. The cancel func releases it.
func (h *Hub) Subscribe() (<-chan Alert, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++

	ch := make(chan Alert, subscriberBuffer)
	h.subs[id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}
