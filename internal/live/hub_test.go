package live

import (
	"context"
	"math"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"shirtforge/internal/design"
	"shirtforge/internal/geom"
	"shirtforge/internal/mapper"
	"shirtforge/internal/placement"
	"shirtforge/internal/raycast"
	"shirtforge/internal/region"
)

var guide = geom.Vec2{X: 900, Y: 800}

func startHub(t *testing.T) (*design.Store, *websocket.Conn) {
	t.Helper()
	store, url := serveHub(t)
	return store, dial(t, url)
}

// serveHub runs a hub behind a test server and returns its websocket URL.
func serveHub(t *testing.T) (*design.Store, string) {
	t.Helper()
	store := design.NewStore()
	ctrl := placement.NewController(store, mapper.New(region.Default()), guide)
	hub := NewHub(store, ctrl, raycast.NewAdapter(store))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()
	srv := httptest.NewServer(hub)
	t.Cleanup(func() {
		cancel()
		<-done
		srv.Close()
	})

	return store, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// waitFor reads messages until ok accepts one or the deadline passes.
func waitFor(t *testing.T, conn *websocket.Conn, ok func(Message) bool) Message {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for {
		conn.SetReadDeadline(deadline)
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read: %v", err)
		}
		if ok(msg) {
			return msg
		}
	}
}

func isSnapshot(pred func(*StateMsg) bool) func(Message) bool {
	return func(m Message) bool {
		return m.Type == TypeSnapshot && m.State != nil && pred(m.State)
	}
}

func TestInitialSnapshot(t *testing.T) {
	_, conn := startHub(t)
	msg := waitFor(t, conn, isSnapshot(func(*StateMsg) bool { return true }))
	st := msg.State
	if st.ShirtColor != "#ffffff" || st.BackgroundColor != "#808080" || st.ActiveRegion != region.Front {
		t.Errorf("initial state = %+v", st)
	}
	if st.Guide != [2]float64{900, 800} {
		t.Errorf("guide = %v", st.Guide)
	}
}

func TestAddAndDragAcrossRegions(t *testing.T) {
	_, conn := startHub(t)
	waitFor(t, conn, isSnapshot(func(*StateMsg) bool { return true }))

	conn.WriteJSON(Message{Type: TypeAdd, Texture: "logo.png"})
	added := waitFor(t, conn, isSnapshot(func(s *StateMsg) bool { return len(s.Decals) == 1 }))
	id := added.State.Decals[0].ID
	if added.State.ActiveDecalID != id {
		t.Errorf("active = %q, want %q", added.State.ActiveDecalID, id)
	}

	delta := [2]float64{423, 0}
	for _, g := range []GestureMsg{
		{Phase: "start", Kind: "drag", ID: id},
		{Phase: "move", Kind: "drag", ID: id, Delta: delta},
		{Phase: "end", Kind: "drag", ID: id},
	} {
		g := g
		if err := conn.WriteJSON(Message{Type: TypeGesture, Gesture: &g}); err != nil {
			t.Fatal(err)
		}
	}
	final := waitFor(t, conn, isSnapshot(func(s *StateMsg) bool {
		return len(s.Decals) == 1 && s.Decals[0].Region == region.Back && !s.IsManipulating
	}))
	d := final.State.Decals[0]
	if math.Abs(d.Rotation.Y-math.Pi) > 1e-9 || d.Position.Z != -0.1 {
		t.Errorf("decal after drag = %+v", d)
	}
	if final.State.ActiveRegion != region.Back {
		t.Errorf("active region = %s", final.State.ActiveRegion)
	}
}

func TestDepartedClientGestureAborted(t *testing.T) {
	_, url := serveHub(t)
	owner := dial(t, url)
	waitFor(t, owner, isSnapshot(func(*StateMsg) bool { return true }))
	owner.WriteJSON(Message{Type: TypeAdd, Texture: "logo.png"})
	added := waitFor(t, owner, isSnapshot(func(s *StateMsg) bool { return len(s.Decals) == 1 }))
	id := added.State.Decals[0].ID

	other := dial(t, url)
	waitFor(t, other, isSnapshot(func(*StateMsg) bool { return true }))

	owner.WriteJSON(Message{Type: TypeGesture, Gesture: &GestureMsg{Phase: "start", Kind: "drag", ID: id}})
	waitFor(t, other, isSnapshot(func(s *StateMsg) bool { return s.IsManipulating }))

	// A foreign end leaves the owner's gesture open.
	other.WriteJSON(Message{Type: TypeGesture, Gesture: &GestureMsg{Phase: "end", Kind: "rotate", ID: id}})
	other.WriteJSON(Message{Type: TypeColor, Color: "#00ff00"})
	still := waitFor(t, other, isSnapshot(func(s *StateMsg) bool { return s.ShirtColor == "#00ff00" }))
	if !still.State.IsManipulating {
		t.Fatal("foreign end closed the gesture")
	}

	owner.Close()
	waitFor(t, other, isSnapshot(func(s *StateMsg) bool { return !s.IsManipulating }))
}

func TestTextDecalAndColors(t *testing.T) {
	_, conn := startHub(t)
	waitFor(t, conn, isSnapshot(func(*StateMsg) bool { return true }))

	conn.WriteJSON(Message{Type: TypeColor, Color: "#ff0000"})
	conn.WriteJSON(Message{Type: TypeAdd, Kind: design.KindText, Text: "Hello", Color: "#000000"})
	msg := waitFor(t, conn, isSnapshot(func(s *StateMsg) bool {
		return s.ShirtColor == "#ff0000" && len(s.Decals) == 1
	}))
	d := msg.State.Decals[0]
	if d.Kind != design.KindText || !strings.HasPrefix(d.Texture, "data:image/png;base64,") {
		t.Errorf("text decal = %s %.30s", d.Kind, d.Texture)
	}
}

func TestErrorsAreReported(t *testing.T) {
	_, conn := startHub(t)
	waitFor(t, conn, isSnapshot(func(*StateMsg) bool { return true }))

	conn.WriteJSON(Message{Type: "explode"})
	msg := waitFor(t, conn, func(m Message) bool { return m.Type == TypeError })
	if !strings.Contains(msg.Error, "explode") {
		t.Errorf("error = %q", msg.Error)
	}
	conn.WriteJSON(Message{Type: TypeRegion, Region: "hood"})
	msg = waitFor(t, conn, func(m Message) bool { return m.Type == TypeError })
	if !strings.Contains(msg.Error, "hood") {
		t.Errorf("error = %q", msg.Error)
	}
	conn.WriteJSON(Message{Type: TypeBackground, Color: "blue"})
	waitFor(t, conn, func(m Message) bool { return m.Type == TypeError })
}

func TestPlaceSelectResetOverSocket(t *testing.T) {
	_, conn := startHub(t)
	waitFor(t, conn, isSnapshot(func(*StateMsg) bool { return true }))
	conn.WriteJSON(Message{Type: TypeAdd, Texture: "a.png"})
	added := waitFor(t, conn, isSnapshot(func(s *StateMsg) bool { return len(s.Decals) == 1 }))
	id := added.State.Decals[0].ID

	conn.WriteJSON(Message{Type: TypePlace, ID: id, Hit: &HitMsg{Point: geom.V3(0.7, 0, 0), Normal: geom.V3(1, 0, 0)}})
	placed := waitFor(t, conn, isSnapshot(func(s *StateMsg) bool {
		return len(s.Decals) == 1 && s.Decals[0].Position.X == 0.7
	}))
	if placed.State.Decals[0].Region != region.Front {
		t.Errorf("place reassigned region to %s", placed.State.Decals[0].Region)
	}

	conn.WriteJSON(Message{Type: TypeSelect})
	waitFor(t, conn, isSnapshot(func(s *StateMsg) bool { return s.ActiveDecalID == "" }))

	conn.WriteJSON(Message{Type: TypeVisible, ID: id, Visible: design.Ptr(false)})
	waitFor(t, conn, isSnapshot(func(s *StateMsg) bool { return len(s.Decals) == 1 && !s.Decals[0].Visible }))

	conn.WriteJSON(Message{Type: TypeReset})
	waitFor(t, conn, isSnapshot(func(s *StateMsg) bool { return len(s.Decals) == 0 }))
}

func TestPumpRunsQueuedWork(t *testing.T) {
	store := design.NewStore()
	ctrl := placement.NewController(store, mapper.New(region.Default()), guide)
	hub := NewHub(store, ctrl, raycast.NewAdapter(store))

	hub.Submit(func() { store.SetColor("#00ff00") })
	hub.Submit(func() { store.SetActiveRegion(region.Back) })
	if n := hub.Pump(); n != 2 {
		t.Errorf("pumped %d", n)
	}
	if store.Color() != "#00ff00" || store.ActiveRegion() != region.Back {
		t.Error("queued work not applied")
	}
	hub.Close()
	if hub.Submit(func() {}) {
		t.Error("submit accepted after close")
	}
}

func TestListenServesHub(t *testing.T) {
	store := design.NewStore()
	ctrl := placement.NewController(store, mapper.New(region.Default()), guide)
	hub := NewHub(store, ctrl, raycast.NewAdapter(store))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	srv, err := Listen("127.0.0.1:0", hub, false)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		cancel()
		<-done
		srv.Close(context.Background())
	})

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+srv.Addr()+Path, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	waitFor(t, conn, isSnapshot(func(*StateMsg) bool { return true }))
}
