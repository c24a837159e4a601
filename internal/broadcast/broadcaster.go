// Package broadcast implements the realtime push channel using the actor
// pattern: a single goroutine owns the client set and processes commands from
// a channel (no mutexes), with per-connection writer goroutines absorbing
// slow clients.
package broadcast

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/cbrevik/cbc-menu/internal/domain"
	"github.com/cbrevik/cbc-menu/internal/metrics"
)

const (
	commandTimeout = 5 * time.Second
	stopTimeout    = 10 * time.Second
)

// Event is the wire envelope for the push channel. Type is "update" for the
// connect-time cache snapshot and "rate" for per-mutation deltas.
type Event struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type broadcasterCmd interface{ isBroadcasterCmd() }

type baseCmd struct{}

func (baseCmd) isBroadcasterCmd() {}

type registerCmd struct {
	baseCmd
	conn  *websocket.Conn
	errCh chan error
}

type unregisterCmd struct {
	baseCmd
	conn *websocket.Conn
}

type publishCmd struct {
	baseCmd
	event domain.RateEvent
}

type clientCountCmd struct {
	baseCmd
	replyCh chan int
}

type stopCmd struct{ baseCmd }

// Broadcaster fans rate events out to every connected client. A new
// subscriber first receives the full rating mapping as an "update" event;
// there is no replay of events published before it connected.
type Broadcaster struct {
	cmdCh      chan broadcasterCmd
	clients    map[*websocket.Conn]*clientWriter
	snapshot   func() map[int]domain.RatingEntry
	clock      clockwork.Clock
	maxClients int
	done       chan struct{}
	doneOnce   sync.Once
}

// NewBroadcaster creates and starts a broadcaster. snapshot supplies the
// current rating mapping for connect-time delivery.
func NewBroadcaster(snapshot func() map[int]domain.RatingEntry, clock clockwork.Clock, maxClients int) *Broadcaster {
	b := &Broadcaster{
		cmdCh:      make(chan broadcasterCmd, 256),
		clients:    make(map[*websocket.Conn]*clientWriter),
		snapshot:   snapshot,
		clock:      clock,
		maxClients: maxClients,
		done:       make(chan struct{}),
	}
	go b.run()
	return b
}

// Register adds a client and queues its initial "update" snapshot event.
// Returns an error if the client cap is reached.
func (b *Broadcaster) Register(conn *websocket.Conn) error {
	errCh := make(chan error, 1)
	b.cmdCh <- registerCmd{conn: conn, errCh: errCh}

	timer := b.clock.NewTimer(commandTimeout)
	defer timer.Stop()

	select {
	case err := <-errCh:
		return err
	case <-timer.Chan():
		return fmt.Errorf("register command timed out after %v", commandTimeout)
	}
}

// Unregister removes a client.
func (b *Broadcaster) Unregister(conn *websocket.Conn) {
	b.cmdCh <- unregisterCmd{conn: conn}
}

// Publish sends a rate event to all connected clients. Ordering across
// clients is not guaranteed.
func (b *Broadcaster) Publish(event domain.RateEvent) {
	b.cmdCh <- publishCmd{event: event}
}

// ClientCount returns the number of connected clients, or -1 on timeout.
func (b *Broadcaster) ClientCount() int {
	replyCh := make(chan int, 1)
	b.cmdCh <- clientCountCmd{replyCh: replyCh}

	timer := b.clock.NewTimer(commandTimeout)
	defer timer.Stop()

	select {
	case count := <-replyCh:
		return count
	case <-timer.Chan():
		slog.Warn("ClientCount timed out", "timeout", commandTimeout)
		return -1
	}
}

// Stop shuts down the broadcaster, closing all client connections. Blocks
// until the actor goroutine has exited or the timeout is reached.
func (b *Broadcaster) Stop() {
	b.cmdCh <- stopCmd{}

	timer := b.clock.NewTimer(stopTimeout)
	defer timer.Stop()

	select {
	case <-b.done:
		slog.Info("Broadcaster stopped gracefully")
	case <-timer.Chan():
		slog.Warn("Broadcaster stop timeout exceeded, forcing exit", "timeout", stopTimeout)
		b.closeDone()
	}
}

// closeDone closes the done channel exactly once. Both the actor's exit path
// and a forced stop timeout may try to close it.
func (b *Broadcaster) closeDone() {
	b.doneOnce.Do(func() { close(b.done) })
}

func (b *Broadcaster) run() {
	defer b.closeDone()

	for cmd := range b.cmdCh {
		switch c := cmd.(type) {
		case registerCmd:
			b.handleRegister(c)
		case unregisterCmd:
			b.handleUnregister(c.conn)
		case publishCmd:
			b.handlePublish(c.event)
		case clientCountCmd:
			c.replyCh <- len(b.clients)
		case stopCmd:
			b.handleStop()
			return
		default:
			slog.Warn("Broadcaster received unknown command type", "command_type", fmt.Sprintf("%T", cmd))
		}
	}
}

func (b *Broadcaster) handleRegister(c registerCmd) {
	if len(b.clients) >= b.maxClients {
		slog.Warn("Rejecting client: max clients reached", "max_clients", b.maxClients)
		c.conn.Close()
		c.errCh <- fmt.Errorf("max clients (%d) reached", b.maxClients)
		return
	}

	data, err := json.Marshal(Event{Event: "update", Data: b.snapshot()})
	if err != nil {
		c.conn.Close()
		c.errCh <- fmt.Errorf("failed to marshal snapshot event: %w", err)
		return
	}

	cw := newClientWriter(c.conn, b.clock)
	b.clients[c.conn] = cw

	// Queue the snapshot before any later rate event can reach this client.
	cw.sendCh <- data
	metrics.BroadcasterEventsTotal.WithLabelValues("update").Inc()
	metrics.BroadcasterConnectedClients.Set(float64(len(b.clients)))

	slog.Debug("Client registered", "total_clients", len(b.clients))
	c.errCh <- nil
}

func (b *Broadcaster) handleUnregister(conn *websocket.Conn) {
	cw, ok := b.clients[conn]
	if !ok {
		return
	}

	cw.stop()
	delete(b.clients, conn)
	metrics.BroadcasterConnectedClients.Set(float64(len(b.clients)))
	slog.Debug("Client unregistered", "remaining_clients", len(b.clients))
}

func (b *Broadcaster) handlePublish(event domain.RateEvent) {
	data, err := json.Marshal(Event{Event: "rate", Data: event})
	if err != nil {
		slog.Error("Failed to marshal rate event", "error", err)
		return
	}

	var slow []*websocket.Conn
	for conn, cw := range b.clients {
		select {
		case cw.sendCh <- data:
			metrics.BroadcasterEventsTotal.WithLabelValues("rate").Inc()
		default:
			slow = append(slow, conn)
		}
	}

	for _, conn := range slow {
		slog.Warn("Disconnecting slow client")
		metrics.BroadcasterSlowClientsEvicted.Inc()
		b.handleUnregister(conn)
	}
}

func (b *Broadcaster) handleStop() {
	slog.Info("Broadcaster shutting down", "clients", len(b.clients))

	for conn, cw := range b.clients {
		cw.stopGraceful("Server shutting down")
		delete(b.clients, conn)
	}
	metrics.BroadcasterConnectedClients.Set(0)
}
