package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryFeed struct {
	mu       sync.Mutex
	handlers map[int]func([]byte)
	next     int
}

func newMemoryFeed() *memoryFeed {
	return &memoryFeed{handlers: make(map[int]func([]byte))}
}

func (f *memoryFeed) Subscribe(handler func(data []byte)) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.next
	f.next++
	f.handlers[id] = handler

	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.handlers, id)
	}, nil
}

func (f *memoryFeed) subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.handlers)
}

func (f *memoryFeed) publish(data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, h := range f.handlers {
		h(data)
	}
}

func dialFeed(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	return conn
}

func readFeedMessage(t *testing.T, conn *websocket.Conn) FeedMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg FeedMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestHotPlaceWebSocketHandler(t *testing.T) {
	feed := newMemoryFeed()
	handler := HotPlaceWebSocketHandler(&fakeDetector{places: samplePlaces}, feed, []string{"*"}, DefaultWebSocketConfig())
	srv := httptest.NewServer(handler)
	defer srv.Close()

	conn := dialFeed(t, srv)

	snapshot := readFeedMessage(t, conn)
	assert.Equal(t, FeedSnapshot, snapshot.Type)
	require.Len(t, snapshot.HotPlaces, 2)
	assert.Equal(t, "해운대", snapshot.HotPlaces[0].Key)

	require.Eventually(t, func() bool { return feed.subscribers() == 1 }, time.Second, 5*time.Millisecond)
	feed.publish([]byte(`{"hotPlaces":[]}`))

	ranked := readFeedMessage(t, conn)
	assert.Equal(t, FeedRanked, ranked.Type)
	assert.JSONEq(t, `{"hotPlaces":[]}`, string(ranked.Data))

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return feed.subscribers() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHotPlaceWebSocketHandler_Origin(t *testing.T) {
	handler := HotPlaceWebSocketHandler(&fakeDetector{}, newMemoryFeed(), []string{"https://app.example.com"}, DefaultWebSocketConfig())
	srv := httptest.NewServer(handler)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": []string{"https://evil.example.com"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": []string{"https://app.example.com"}})
	require.NoError(t, err)
	_ = conn.Close()
}
