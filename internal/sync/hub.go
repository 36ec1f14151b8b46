package sync

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog"

	"github.com/hx-helix/memplane/internal/herrors"
	"github.com/hx-helix/memplane/internal/sync/clock"
)

// outboundBuffer bounds the per-client send channel (spec §4.4): a
// slow client is disconnected rather than allowed to apply backpressure
// to every other device's delta stream.
const outboundBuffer = 100

// Delta is the unit of data exchanged between devices: a single
// entity's new state plus the clock it was written under.
type Delta struct {
	EntityID  string            `json:"entity_id"`
	Clock     clock.VectorClock `json:"clock"`
	Payload   json.RawMessage   `json:"payload"`
	Timestamp time.Time         `json:"timestamp"`
}

// clientState is the C4 per-connection state machine (spec §4.4):
// Connected while the client is being registered, Receiving once it is
// stored in the hub, Disconnected once removed from the hub.
type clientState int

const (
	stateConnected clientState = iota
	stateReceiving
	stateDisconnected
)

type client struct {
	deviceID string
	conn     *websocket.Conn
	send     chan Delta
	state    clientState
}

// Hub is the C4 websocket broker: one goroutine pair per connected
// device, fanning deltas out to every other device of the same
// connection set. Grounded on the teacher's WebSocketHub, generalized
// from its mutex-guarded map to a lock-free xsync map and from its
// broadcast-channel indirection to direct per-client sends, since the
// spec requires lock-free concurrent client bookkeeping.
type Hub struct {
	clients *xsync.MapOf[string, *client]
	log     zerolog.Logger
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// NewHub builds an empty broker.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients: xsync.NewMapOf[string, *client](),
		log:     log,
	}
}

// ClientCount returns the number of currently connected devices.
func (h *Hub) ClientCount() int {
	return h.clients.Size()
}

// ServeWS upgrades an HTTP request to a websocket connection for the
// given device and runs its read/write pumps until the connection
// closes.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, deviceID string) error {
	if deviceID == "" {
		return herrors.Malformedf("serve ws: device id required")
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return herrors.New(herrors.Transient, "upgrade websocket", err)
	}

	c := &client{
		deviceID: deviceID,
		conn:     conn,
		send:     make(chan Delta, outboundBuffer),
		state:    stateConnected,
	}
	h.clients.Store(deviceID, c)
	c.state = stateReceiving

	go h.writePump(c)
	h.readPump(c)
	return nil
}

// readPump reads deltas from one device and fans each out to every
// other connected device. It runs until the read fails, at which point
// the client is torn down.
func (h *Hub) readPump(c *client) {
	defer h.disconnect(c)

	for {
		var d Delta
		if err := c.conn.ReadJSON(&d); err != nil {
			h.log.Debug().Err(err).Str("device_id", c.deviceID).Msg("websocket read closed")
			return
		}
		h.broadcastExcept(c.deviceID, d)
	}
}

// writePump drains a client's outbound channel to its connection until
// the channel is closed (by disconnect) or the write fails.
func (h *Hub) writePump(c *client) {
	defer c.conn.Close()

	for d := range c.send {
		if err := c.conn.WriteJSON(d); err != nil {
			h.log.Debug().Err(err).Str("device_id", c.deviceID).Msg("websocket write failed")
			return
		}
	}
}

// broadcastExcept delivers d to every connected device other than
// from. Same-user gating is left to the fronting proxy (spec §4.4/§9
// Open Question 2): the hub itself has no notion of user ownership.
func (h *Hub) broadcastExcept(from string, d Delta) {
	h.clients.Range(func(deviceID string, c *client) bool {
		if deviceID == from {
			return true
		}
		select {
		case c.send <- d:
		default:
			// Outbound buffer full: this client is too slow to keep up,
			// disconnect it rather than block every other device.
			h.disconnect(c)
		}
		return true
	})
}

func (h *Hub) disconnect(c *client) {
	if _, loaded := h.clients.LoadAndDelete(c.deviceID); loaded {
		c.state = stateDisconnected
		close(c.send)
	}
}
