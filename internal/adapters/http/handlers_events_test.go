package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/websocket"
	"go.uber.org/goleak"

	"storefront/internal/adapters/http/middleware"
)

// verifyNoLeaks checks for stray goroutines once every later cleanup, including
// the test app's database close, has run. Call it before newTestApp.
func verifyNoLeaks(t *testing.T) {
	t.Helper()
	ignore := goleak.IgnoreCurrent()
	t.Cleanup(func() { goleak.VerifyNone(t, ignore) })
}

// dialEvents opens one tab's event stream for visitor.
func dialEvents(t *testing.T, srv *httptest.Server, visitor string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/shelf/events"
	header := http.Header{}
	header.Set("Cookie", middleware.VisitorCookieName+"="+visitor)
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) shelfEvent {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var ev shelfEvent
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read event: %v", err)
	}
	return ev
}

// readInitial consumes the snapshot of every list sent on connect.
func readInitial(t *testing.T, conn *websocket.Conn) map[string][]string {
	t.Helper()
	got := map[string][]string{}
	for i := 0; i < 3; i++ {
		ev := readEvent(t, conn)
		got[ev.Store] = ev.Items
	}
	return got
}

func postJSON(t *testing.T, srv *httptest.Server, path, body, visitor string) *http.Response {
	t.Helper()
	req, err := http.NewRequest("POST", srv.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: middleware.VisitorCookieName, Value: visitor})
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("post %s: %v", path, err)
	}
	resp.Body.Close()
	return resp
}

// TestShelfEvents_InitialSnapshot verifies a new tab receives the current
// state of all three lists.
func TestShelfEvents_InitialSnapshot(t *testing.T) {
	verifyNoLeaks(t)
	app := newTestApp(t)
	srv := httptest.NewServer(app.Handler)
	defer srv.Close()
	v := newVisitor()
	postJSON(t, srv, "/api/shelf/favorites", `{"id":"tote"}`, v)

	conn := dialEvents(t, srv, v)
	defer conn.Close()

	want := map[string][]string{
		"favorites":       {"tote"},
		"compare":         {},
		"recently-viewed": {},
	}
	if diff := cmp.Diff(want, readInitial(t, conn)); diff != "" {
		t.Errorf("initial (-want +got):\n%s", diff)
	}
}

// TestShelfEvents_CrossTab verifies a change made through one tab's request
// reaches every open tab of the same visitor, including the one that made it.
func TestShelfEvents_CrossTab(t *testing.T) {
	verifyNoLeaks(t)
	app := newTestApp(t)
	srv := httptest.NewServer(app.Handler)
	defer srv.Close()
	v := newVisitor()

	tabA := dialEvents(t, srv, v)
	defer tabA.Close()
	tabB := dialEvents(t, srv, v)
	defer tabB.Close()
	readInitial(t, tabA)
	readInitial(t, tabB)

	if resp := postJSON(t, srv, "/api/shelf/compare", `{"id":"mug"}`, v); resp.StatusCode != http.StatusOK {
		t.Fatalf("add status=%d", resp.StatusCode)
	}

	for name, conn := range map[string]*websocket.Conn{"A": tabA, "B": tabB} {
		ev := readEvent(t, conn)
		if ev.Store != "compare" || !cmp.Equal(ev.Items, []string{"mug"}) {
			t.Errorf("tab %s event = %+v", name, ev)
		}
	}
}

// TestShelfEvents_RejectedAddIsSilent verifies an at-capacity add produces
// no event.
func TestShelfEvents_RejectedAddIsSilent(t *testing.T) {
	verifyNoLeaks(t)
	app := newTestApp(t)
	srv := httptest.NewServer(app.Handler)
	defer srv.Close()
	v := newVisitor()
	for _, id := range []string{"tote", "pack", "mug", "bottle"} {
		postJSON(t, srv, "/api/shelf/compare", `{"id":"`+id+`"}`, v)
	}

	conn := dialEvents(t, srv, v)
	defer conn.Close()
	readInitial(t, conn)

	if resp := postJSON(t, srv, "/api/shelf/compare", `{"id":"towel"}`, v); resp.StatusCode != http.StatusConflict {
		t.Fatalf("status=%d, want 409", resp.StatusCode)
	}
	// A later accepted change must be the next event seen.
	postJSON(t, srv, "/api/shelf/favorites", `{"id":"towel"}`, v)
	ev := readEvent(t, conn)
	if ev.Store != "favorites" {
		t.Errorf("next event = %+v, want favorites", ev)
	}
}

// TestShelfEvents_UnsubscribeOnClose verifies a closed tab releases its
// subscriptions so the shelf can be swept.
func TestShelfEvents_UnsubscribeOnClose(t *testing.T) {
	verifyNoLeaks(t)
	app := newTestApp(t)
	srv := httptest.NewServer(app.Handler)
	defer srv.Close()
	v := newVisitor()

	conn := dialEvents(t, srv, v)
	readInitial(t, conn)
	conn.Close()

	sh, err := app.Shelves.For(t.Context(), v)
	if err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for app.Shelves.Notifier().Subscribers(sh.Favorites.Key()) != 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscription still live after close")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
