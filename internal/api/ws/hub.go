package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"paper-soccer/internal/game"
	"paper-soccer/internal/match"
)

// Hub pushes match events to the presentation sockets subscribed to each
// match and accepts move input from them. It implements match.Broadcaster.
type Hub struct {
	mu      sync.Mutex
	rooms   map[string]map[*client]struct{}
	matches MatchLookup
	log     zerolog.Logger
}

func NewHub(matches MatchLookup) *Hub {
	return &Hub{
		rooms:   make(map[string]map[*client]struct{}),
		matches: matches,
		log:     log.With().Str("component", "ws").Logger(),
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins
	},
}

const (
	writeWait  = 5 * time.Second
	sendBuffer = 64
)

// client is one socket. Only its pump writes to conn; everyone else queues.
type client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func newClient(conn *websocket.Conn) *client {
	return &client{conn: conn, send: make(chan []byte, sendBuffer), done: make(chan struct{})}
}

// enqueue never blocks; false means the client is gone or too far behind.
func (cl *client) enqueue(payload []byte) bool {
	select {
	case <-cl.done:
		return false
	default:
	}
	select {
	case cl.send <- payload:
		return true
	default:
		return false
	}
}

func (cl *client) close() {
	cl.once.Do(func() {
		close(cl.done)
		_ = cl.conn.Close()
	})
}

func (cl *client) pump() {
	for {
		select {
		case <-cl.done:
			return
		case payload := <-cl.send:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				cl.close()
				return
			}
		}
	}
}

type envelope struct {
	Action string      `json:"action"`
	Data   interface{} `json:"data,omitempty"`
}

type inbound struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

func (h *Hub) HandleWS(c *gin.Context) {
	matchID := c.Query("match_id")
	if matchID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing match_id"})
		return
	}
	m, ok := h.matches.GetMatch(matchID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "match not found"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("upgrade failed")
		return
	}
	h.log.Debug().Str("match", matchID).Msg("socket subscribed")

	cl := newClient(conn)
	go cl.pump()

	h.mu.Lock()
	if _, ok := h.rooms[matchID]; !ok {
		h.rooms[matchID] = make(map[*client]struct{})
	}
	h.rooms[matchID][cl] = struct{}{}
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.rooms[matchID], cl)
		if len(h.rooms[matchID]) == 0 {
			delete(h.rooms, matchID)
		}
		h.mu.Unlock()
		cl.close()
	}()

	h.reply(cl, "state", m.View())

	for {
		var msg inbound
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Debug().Err(err).Str("match", matchID).Msg("socket read ended")
			}
			return
		}

		switch msg.Action {
		case "human_move":
			h.handleHumanMove(cl, m, msg.Data)
		case "computer_move":
			if _, err := m.RequestComputerMove(); err != nil {
				h.reply(cl, "error", gin.H{"error": err.Error()})
			}
		case "state":
			h.reply(cl, "state", m.View())
		default:
			h.reply(cl, "error", gin.H{"error": "unknown action " + msg.Action})
		}
	}
}

// Broadcast queues one event for every socket of the match and returns
// without waiting on the network. A socket whose queue is full is dropped.
func (h *Hub) Broadcast(matchID string, action string, data interface{}) {
	if h == nil {
		return
	}
	payload, err := json.Marshal(envelope{Action: action, Data: data})
	if err != nil {
		h.log.Error().Err(err).Str("action", action).Msg("encode event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for cl := range h.rooms[matchID] {
		if !cl.enqueue(payload) {
			h.log.Warn().Str("match", matchID).Msg("dropping slow socket")
			cl.close()
			delete(h.rooms[matchID], cl)
		}
	}
}

// Subscribers counts the sockets watching a match.
func (h *Hub) Subscribers(matchID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[matchID])
}

func (h *Hub) reply(cl *client, action string, data interface{}) {
	payload, err := json.Marshal(envelope{Action: action, Data: data})
	if err != nil {
		h.log.Error().Err(err).Str("action", action).Msg("encode reply")
		return
	}
	if !cl.enqueue(payload) {
		h.log.Debug().Str("action", action).Msg("reply dropped")
	}
}

func (h *Hub) handleHumanMove(cl *client, m *match.Manager, data json.RawMessage) {
	var move struct {
		Direction *game.Direction `json:"direction"`
	}
	if err := json.Unmarshal(data, &move); err != nil {
		h.reply(cl, "error", gin.H{"error": "invalid move: " + err.Error()})
		return
	}
	if move.Direction == nil {
		h.reply(cl, "error", gin.H{"error": "invalid move: direction required"})
		return
	}

	st, err := m.ApplyHumanMove(*move.Direction)
	if err != nil {
		h.reply(cl, "error", gin.H{"error": err.Error(), "state": st})
		return
	}

	// If it's the computer's turn now, let it play
	if !st.EndsTurn() {
		return
	}
	if _, ctrl := m.Turn(); ctrl == match.AILocal {
		go func() {
			if _, err := m.RequestComputerMove(); err != nil {
				h.log.Debug().Err(err).Str("match", m.ID()).Msg("computer reply skipped")
			}
		}()
	}
}
