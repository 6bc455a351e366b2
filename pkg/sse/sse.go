package sse

import (
	"encoding/json"
	"fmt"
	"io"
	"log"

	"github.com/gin-gonic/gin"
)

// Event is a single server-sent event addressed to one user.
type Event struct {
	UserID string
	Name   string
	Data   interface{}
}

type client struct {
	userID string
	ch     chan Event
}

// Manager fans out events to connected clients, keyed by user ID.
type Manager struct {
	clients    map[*client]struct{}
	register   chan *client
	unregister chan *client
	events     chan Event
	done       chan struct{}
}

func NewManager() *Manager {
	return &Manager{
		clients:    make(map[*client]struct{}),
		register:   make(chan *client),
		unregister: make(chan *client),
		events:     make(chan Event, 64),
		done:       make(chan struct{}),
	}
}

// Run owns the client set; all mutation happens on this goroutine.
func (m *Manager) Run() {
	for {
		select {
		case c := <-m.register:
			m.clients[c] = struct{}{}
			log.Printf("[SSE] Client connected for user %s (%d total)", c.userID, len(m.clients))
		case c := <-m.unregister:
			if _, ok := m.clients[c]; ok {
				delete(m.clients, c)
				close(c.ch)
			}
		case ev := <-m.events:
			for c := range m.clients {
				if c.userID != ev.UserID {
					continue
				}
				select {
				case c.ch <- ev:
				default:
					// Slow client; drop rather than block the loop.
				}
			}
		case <-m.done:
			for c := range m.clients {
				close(c.ch)
			}
			return
		}
	}
}

// SendToUser queues an event for every open connection of the given user.
func (m *Manager) SendToUser(userID, name string, data interface{}) {
	select {
	case m.events <- Event{UserID: userID, Name: name, Data: data}:
	case <-m.done:
	}
}

// Close stops the run loop and disconnects all clients.
func (m *Manager) Close() {
	close(m.done)
}

// ServeHTTP streams events for the given user over the gin connection until
// the client disconnects.
func (m *Manager) ServeHTTP(c *gin.Context, userID string) {
	cl := &client{userID: userID, ch: make(chan Event, 16)}
	m.register <- cl
	defer func() { m.unregister <- cl }()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-cl.ch:
			if !ok {
				return false
			}
			payload, err := json.Marshal(ev.Data)
			if err != nil {
				log.Printf("[SSE] Failed to marshal event data: %v", err)
				return true
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, payload)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
