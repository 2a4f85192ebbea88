package web

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"storefront/internal/application/shelf"
	domain "storefront/internal/domain/shelf"
)

const (
	eventsWriteWait  = 10 * time.Second
	eventsPongWait   = 60 * time.Second
	eventsPingPeriod = eventsPongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// shelfEvent is pushed to a tab whenever one of the visitor's lists changes.
type shelfEvent struct {
	Store string   `json:"store"`
	Items []string `json:"items"`
}

// pendingLists coalesces change signals between writes. Subscribers only
// mark a list dirty; the writer reads the current snapshot when it sends.
type pendingLists struct {
	mu    sync.Mutex
	dirty map[domain.List]bool
	wake  chan struct{}
}

func newPendingLists() *pendingLists {
	return &pendingLists{dirty: make(map[domain.List]bool), wake: make(chan struct{}, 1)}
}

func (p *pendingLists) mark(list domain.List) {
	p.mu.Lock()
	p.dirty[list] = true
	p.mu.Unlock()
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// take returns the dirty lists in display order and resets them.
func (p *pendingLists) take() []domain.List {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []domain.List
	for _, l := range domain.Lists() {
		if p.dirty[l] {
			out = append(out, l)
		}
	}
	clear(p.dirty)
	return out
}

// handleShelfEvents upgrades to a websocket and streams the visitor's shelf.
// One connection per tab: the current state of every list is sent on connect,
// then one event per changed list.
func (s *server) handleShelfEvents(w http.ResponseWriter, r *http.Request) {
	sh, err := s.visitorShelf(r)
	if err != nil {
		internalError(w, err)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Debug("shelf_events_upgrade_failed", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pending := newPendingLists()
	unsubscribe := sh.SubscribeAll(pending.mark)
	defer unsubscribe()
	for _, l := range domain.Lists() {
		pending.mark(l)
	}

	slog.Debug("shelf_events_connected", "visitor", sh.Visitor)
	defer slog.Debug("shelf_events_disconnected", "visitor", sh.Visitor)

	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		defer cancel()
		readUntilClosed(conn)
	}()

	s.writeEvents(ctx, conn, sh, pending)
	conn.Close()
	<-readerDone
}

// readUntilClosed discards client frames and answers pongs until the peer
// goes away or stops responding.
func readUntilClosed(conn *websocket.Conn) {
	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(eventsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(eventsPongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *server) writeEvents(ctx context.Context, conn *websocket.Conn, sh *shelf.Shelf, pending *pendingLists) {
	ticker := time.NewTicker(eventsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.Done:
			conn.SetWriteDeadline(time.Now().Add(eventsWriteWait))
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			return
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(eventsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-pending.wake:
			for _, list := range pending.take() {
				store, _ := sh.Store(list)
				conn.SetWriteDeadline(time.Now().Add(eventsWriteWait))
				if err := conn.WriteJSON(shelfEvent{Store: string(list), Items: store.Snapshot()}); err != nil {
					slog.Debug("shelf_events_write_failed", "visitor", sh.Visitor, "error", err)
					return
				}
			}
		}
	}
}
