package hub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go h.Run(ctx)
	return h
}

func TestPublishReachesOnlyThatBrowser(t *testing.T) {
	h := startHub(t)

	a := h.NewConnection(nil, "browser-a")
	b := h.NewConnection(nil, "browser-b")
	h.Register(a)
	h.Register(b)
	assert.Eventually(t, func() bool { return h.ConnectionCount() == 2 }, time.Second, 5*time.Millisecond)

	require.NoError(t, h.PublishJSON("browser-a", map[string]int{"resolved_count": 2}))

	select {
	case msg := <-a.Send:
		assert.JSONEq(t, `{"resolved_count":2}`, string(msg))
	case <-time.After(time.Second):
		t.Fatal("expected message for browser-a")
	}

	select {
	case msg := <-b.Send:
		t.Fatalf("browser-b received %s", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnregisterClosesSend(t *testing.T) {
	h := startHub(t)

	conn := h.NewConnection(nil, "browser-a")
	h.Register(conn)
	assert.Eventually(t, func() bool { return h.HasConnections("browser-a") }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, h.ConnectionCount())

	h.Unregister(conn)
	_, open := <-conn.Send
	assert.False(t, open)
	assert.False(t, h.HasConnections("browser-a"))
	assert.Equal(t, 0, h.ConnectionCount())
}

func TestPublishSkipsBrowsersWithoutConnections(t *testing.T) {
	h := NewHub()

	for i := 0; i < cap(h.broadcast)+10; i++ {
		require.NoError(t, h.PublishJSON("nobody", map[string]int{"resolved_count": i}))
	}
	assert.Empty(t, h.broadcast)
}
