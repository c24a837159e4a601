package broadcast

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cbrevik/cbc-menu/internal/domain"
)

// fakeSnapshot returns a mutable rating mapping for connect-time delivery.
type fakeSnapshot struct {
	mu      sync.Mutex
	entries map[int]domain.RatingEntry
}

func (f *fakeSnapshot) snapshot() map[int]domain.RatingEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[int]domain.RatingEntry, len(f.entries))
	for k, v := range f.entries {
		out[k] = v
	}
	return out
}

// testBroadcaster sets up a Broadcaster behind a test HTTP server and returns
// a dial helper plus a channel carrying per-connection Register errors.
func testBroadcaster(t *testing.T, snap *fakeSnapshot, maxClients int) (*Broadcaster, func() *ws.Conn, chan error) {
	t.Helper()

	if snap == nil {
		snap = &fakeSnapshot{entries: map[int]domain.RatingEntry{}}
	}

	broadcaster := NewBroadcaster(snap.snapshot, clockwork.NewRealClock(), maxClients)
	t.Cleanup(func() { broadcaster.Stop() })

	upgrader := ws.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	registerErrs := make(chan error, 16)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		regErr := broadcaster.Register(conn)
		registerErrs <- regErr
		if regErr != nil {
			return
		}

		go func() {
			defer broadcaster.Unregister(conn)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					break
				}
			}
		}()
	}))
	t.Cleanup(func() { server.Close() })

	dial := func() *ws.Conn {
		t.Helper()
		url := "ws" + strings.TrimPrefix(server.URL, "http")
		conn, _, err := ws.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)
		t.Cleanup(func() { conn.Close() })
		return conn
	}

	return broadcaster, dial, registerErrs
}

func waitForClientCount(b *Broadcaster, expected int) bool {
	for i := 0; i < 100; i++ {
		if b.ClientCount() == expected {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return false
}

func readEvent(t *testing.T, conn *ws.Conn) (string, json.RawMessage) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var event struct {
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(msg, &event))
	return event.Event, event.Data
}

func TestBroadcaster_SnapshotOnConnect(t *testing.T) {
	snap := &fakeSnapshot{entries: map[int]domain.RatingEntry{
		4:  {Rating: 4.5, Count: 3},
		17: {Rating: 2, Count: 1},
	}}
	broadcaster, dial, _ := testBroadcaster(t, snap, 10)

	conn := dial()
	require.True(t, waitForClientCount(broadcaster, 1))

	name, data := readEvent(t, conn)
	assert.Equal(t, "update", name)

	var mapping map[int]domain.RatingEntry
	require.NoError(t, json.Unmarshal(data, &mapping))
	assert.Equal(t, snap.entries, mapping)
}

func TestBroadcaster_PublishFansOutToAllClients(t *testing.T) {
	broadcaster, dial, _ := testBroadcaster(t, nil, 10)

	conn1 := dial()
	conn2 := dial()
	require.True(t, waitForClientCount(broadcaster, 2))

	// Drain the connect-time snapshots first.
	for _, conn := range []*ws.Conn{conn1, conn2} {
		name, _ := readEvent(t, conn)
		require.Equal(t, "update", name)
	}

	broadcaster.Publish(domain.RateEvent{Beer: 7, Rating: 3.5, Count: 2})

	for _, conn := range []*ws.Conn{conn1, conn2} {
		name, data := readEvent(t, conn)
		assert.Equal(t, "rate", name)

		var event domain.RateEvent
		require.NoError(t, json.Unmarshal(data, &event))
		assert.Equal(t, domain.RateEvent{Beer: 7, Rating: 3.5, Count: 2}, event)
	}
}

func TestBroadcaster_NoReplayForLateSubscribers(t *testing.T) {
	broadcaster, dial, _ := testBroadcaster(t, nil, 10)

	early := dial()
	require.True(t, waitForClientCount(broadcaster, 1))
	name, _ := readEvent(t, early)
	require.Equal(t, "update", name)

	broadcaster.Publish(domain.RateEvent{Beer: 1, Rating: 5, Count: 1})
	name, _ = readEvent(t, early)
	require.Equal(t, "rate", name)

	// A client connecting after the publish gets only the snapshot; the next
	// thing it sees is a later event, never the missed one.
	late := dial()
	require.True(t, waitForClientCount(broadcaster, 2))
	name, _ = readEvent(t, late)
	require.Equal(t, "update", name)

	broadcaster.Publish(domain.RateEvent{Beer: 2, Rating: 3, Count: 4})
	name, data := readEvent(t, late)
	require.Equal(t, "rate", name)

	var event domain.RateEvent
	require.NoError(t, json.Unmarshal(data, &event))
	assert.Equal(t, 2, event.Beer)
}

func TestBroadcaster_ClientCount(t *testing.T) {
	broadcaster, dial, _ := testBroadcaster(t, nil, 10)

	assert.Equal(t, 0, broadcaster.ClientCount())

	conn1 := dial()
	require.True(t, waitForClientCount(broadcaster, 1))

	dial()
	require.True(t, waitForClientCount(broadcaster, 2))

	conn1.Close()
	require.True(t, waitForClientCount(broadcaster, 1))
}

func TestBroadcaster_StopAfterForcedCloseDoesNotPanic(t *testing.T) {
	b := NewBroadcaster(func() map[int]domain.RatingEntry { return nil }, clockwork.NewRealClock(), 10)

	// Normal stop lets the actor close the done channel on exit; a forced
	// timeout close arriving afterwards must not close it a second time.
	b.Stop()
	assert.NotPanics(t, func() { b.closeDone() })
}

func TestBroadcaster_MaxClients(t *testing.T) {
	broadcaster, dial, registerErrs := testBroadcaster(t, nil, 1)

	dial()
	require.NoError(t, <-registerErrs)
	require.True(t, waitForClientCount(broadcaster, 1))

	dial()
	err := <-registerErrs
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max clients")
	assert.Equal(t, 1, broadcaster.ClientCount())
}
