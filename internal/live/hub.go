package live

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"shirtforge/internal/design"
	"shirtforge/internal/logging"
	"shirtforge/internal/placement"
	"shirtforge/internal/raycast"
	"shirtforge/internal/region"
	"shirtforge/internal/texture"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 8
)

// Hub owns a design session. All store access happens on the goroutine
// that calls Run or Pump; connection goroutines hand work over through
// Submit.
type Hub struct {
	store  *design.Store
	ctrl   *placement.Controller
	placer *raycast.Adapter

	// FontSize is used when a client adds a text decal.
	FontSize float64

	upgrader websocket.Upgrader
	ops      chan func()
	done     chan struct{}
	stop     sync.Once
	clients  map[*client]bool
	dirty    bool

	// gestureOwner is the client whose gesture the controller has open.
	gestureOwner *client
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

func NewHub(store *design.Store, ctrl *placement.Controller, placer *raycast.Adapter) *Hub {
	h := &Hub{
		store:    store,
		ctrl:     ctrl,
		placer:   placer,
		FontSize: texture.DefaultFontSize,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		ops:     make(chan func(), 64),
		done:    make(chan struct{}),
		clients: make(map[*client]bool),
	}
	store.OnChange.AddListener(func(design.Change) { h.dirty = true })
	return h
}

// Submit queues fn to run on the owning goroutine. It reports false once
// the hub is closed.
func (h *Hub) Submit(fn func()) bool {
	select {
	case <-h.done:
		return false
	default:
	}
	select {
	case h.ops <- fn:
		return true
	case <-h.done:
		return false
	}
}

// Pump runs every queued operation without blocking and then broadcasts
// the design if anything changed. The desktop designer calls it once per
// frame. It returns the number of operations run.
func (h *Hub) Pump() int {
	n := 0
	for {
		select {
		case fn := <-h.ops:
			fn()
			n++
		default:
			h.flush()
			return n
		}
	}
}

// Run owns the session until ctx is done, then disconnects every client.
func (h *Hub) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.Pump()
			h.Close()
			return ctx.Err()
		case fn := <-h.ops:
			fn()
			h.Pump()
		}
	}
}

// Clients returns the number of connected clients. Owner goroutine only.
func (h *Hub) Clients() int { return len(h.clients) }

func (h *Hub) flush() {
	if !h.dirty {
		return
	}
	h.dirty = false
	data, err := h.snapshot()
	if err != nil {
		logging.L().Error("live: encode snapshot", "err", err)
		return
	}
	for c := range h.clients {
		c.push(data)
	}
}

func (h *Hub) snapshot() ([]byte, error) {
	return json.Marshal(Message{
		Type:  TypeSnapshot,
		State: stateMsg(h.store.State(), h.ctrl.Container()),
	})
}

// push queues data, dropping the oldest queued message when the client
// is behind. Snapshots supersede each other so only the latest matters.
func (c *client) push(data []byte) {
	select {
	case c.send <- data:
		return
	default:
	}
	select {
	case <-c.send:
	default:
	}
	select {
	case c.send <- data:
	default:
	}
}

func (c *client) reply(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	c.push(data)
}

// ServeHTTP upgrades the request and serves the client until it leaves.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.L().Warn("live: upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	c := &client{id: uuid.NewString(), conn: conn, send: make(chan []byte, sendBuffer)}
	if !h.Submit(func() { h.register(c) }) {
		conn.Close()
		return
	}
	go c.writePump()
	c.readPump(h)
}

func (h *Hub) register(c *client) {
	h.clients[c] = true
	logging.L().Info("live: client connected", "client", c.id, "remote", c.conn.RemoteAddr().String())
	data, err := h.snapshot()
	if err == nil {
		c.push(data)
	}
}

func (h *Hub) unregister(c *client) {
	if !h.clients[c] {
		return
	}
	delete(h.clients, c)
	close(c.send)
	if h.gestureOwner == c {
		h.gestureOwner = nil
		h.ctrl.Abort()
		logging.L().Info("live: aborted gesture of departed client", "client", c.id)
	}
	logging.L().Info("live: client disconnected", "client", c.id)
}

// Close disconnects every client and rejects further work. Owner
// goroutine only.
func (h *Hub) Close() {
	h.stop.Do(func() {
		close(h.done)
		for c := range h.clients {
			h.unregister(c)
		}
	})
}

func (c *client) readPump(h *Hub) {
	defer func() {
		h.Submit(func() { h.unregister(c) })
		c.conn.Close()
	}()
	c.conn.SetReadLimit(8 << 20)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.L().Warn("live: read failed", "client", c.id, "err", err)
			}
			return
		}
		h.Submit(func() {
			if err := h.apply(c, msg); err != nil {
				c.reply(Message{Type: TypeError, Error: err.Error(), ClientID: c.id})
			}
		})
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

var errUnknownType = errors.New("unknown message type")

// apply performs one operation from c against the store.
func (h *Hub) apply(c *client, msg Message) error {
	switch msg.Type {
	case TypeSelect:
		if msg.ID == "" {
			h.ctrl.ClickBackground()
		} else if !h.ctrl.Click(msg.ID) {
			return fmt.Errorf("no decal %q", msg.ID)
		}
	case TypeGesture:
		if msg.Gesture == nil {
			return errors.New("gesture missing")
		}
		g, err := msg.Gesture.toGesture()
		if err != nil {
			return err
		}
		if !h.ctrl.Handle(g) {
			return nil
		}
		switch g.Phase {
		case placement.Start:
			h.gestureOwner = c
		case placement.End:
			h.gestureOwner = nil
		}
	case TypeAdd:
		return h.add(msg)
	case TypeRemove:
		h.store.RemoveDecal(msg.ID)
	case TypeVisible:
		if msg.Visible == nil {
			return errors.New("visible missing")
		}
		h.store.UpdateDecal(msg.ID, design.Patch{Visible: msg.Visible})
	case TypeColor, TypeBackground:
		if _, err := design.ParseHex(msg.Color); err != nil {
			return err
		}
		if msg.Type == TypeColor {
			h.store.SetColor(msg.Color)
		} else {
			h.store.SetBackgroundColor(msg.Color)
		}
	case TypeRegion:
		r, ok := region.Parse(string(msg.Region))
		if !ok {
			return fmt.Errorf("unknown region %q", msg.Region)
		}
		h.store.SetActiveRegion(r)
	case TypeReset:
		h.store.Reset()
	case TypePlace:
		if msg.Hit == nil {
			return errors.New("hit missing")
		}
		return h.placer.Place(msg.ID, raycast.Hit{Point: msg.Hit.Point, Normal: msg.Hit.Normal})
	default:
		return fmt.Errorf("%w %q", errUnknownType, msg.Type)
	}
	return nil
}

func (h *Hub) add(msg Message) error {
	switch msg.Kind {
	case design.KindText:
		col := color.Color(color.Black)
		if msg.Color != "" {
			c, err := design.ParseHex(msg.Color)
			if err != nil {
				return err
			}
			col = c
		}
		img, err := texture.RenderText(msg.Text, texture.TextOptions{Color: col, FontSize: h.FontSize})
		if err != nil {
			return err
		}
		uri, err := texture.EncodeDataURI(img)
		if err != nil {
			return err
		}
		h.store.AddDecal(uri, design.KindText)
	case design.KindImage, "":
		if msg.Texture == "" {
			return errors.New("texture missing")
		}
		h.store.AddDecal(msg.Texture, design.KindImage)
	default:
		return fmt.Errorf("unknown decal kind %q", msg.Kind)
	}
	return nil
}
