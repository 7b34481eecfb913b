// Package liveview is a read-only websocket broadcaster for the grid:
// every attached viewer receives a cell_updated message for each cell
// a dispatch recomputed. It never accepts mutations over the socket —
// the engine is driven only by the text command stream — so it cannot
// reintroduce concurrent-mutation semantics.
package liveview

import (
	"log"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/websocket"

	"sheetcore/internal/cellid"
	"sheetcore/internal/colref"
	"sheetcore/internal/engine"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// CellUpdate is the message sent for each recomputed cell.
type CellUpdate struct {
	Type    string `json:"type"`
	ID      string `json:"id"`
	Display string `json:"display"`
	Error   bool   `json:"error"`
}

// Server holds the set of attached viewers and the engine they mirror.
type Server struct {
	Eng     *engine.Engine
	clients map[*websocket.Conn]bool
	mu      sync.Mutex
}

// New creates a broadcaster over eng. It does not own eng's lifecycle;
// the caller dispatches commands and calls Notify after each one.
func New(eng *engine.Engine) *Server {
	return &Server{Eng: eng, clients: make(map[*websocket.Conn]bool)}
}

// HandleWebSocket upgrades the connection and registers it as a
// viewer. It never reads mutation messages back — incoming frames are
// drained and discarded, which also detects client disconnects.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("liveview: upgrade error:", err)
		return
	}

	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Notify broadcasts the current value of every id in ids — the
// evaluation order a Dispatch call just walked — to every attached
// viewer.
func (s *Server) Notify(ids []cellid.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.clients) == 0 {
		return
	}
	for _, id := range ids {
		update := s.buildUpdate(id)
		for client := range s.clients {
			if err := client.WriteJSON(update); err != nil {
				log.Printf("liveview: write failed: %v", err)
				_ = client.Close()
				delete(s.clients, client)
			}
		}
	}
}

// buildUpdate reads the store directly: Notify runs inside Dispatch
// (through Engine.OnEvaluated) while the engine lock is held, so
// Engine.Get/HasError would block on that same lock.
func (s *Server) buildUpdate(id cellid.ID) CellUpdate {
	name := colref.Label(id.Col()) + strconv.Itoa(id.Row()+1)
	errored, _ := s.Eng.Store.HasError(id)
	if errored {
		return CellUpdate{Type: "cell_updated", ID: name, Error: true}
	}
	v, _ := s.Eng.Store.Get(id)
	return CellUpdate{Type: "cell_updated", ID: name, Display: v.String()}
}

// Start serves the websocket endpoint on addr, blocking until the
// server stops or errors.
func (s *Server) Start(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.HandleWebSocket)
	log.Printf("liveview: serving at ws://%s/ws", addr)
	return http.ListenAndServe(addr, mux)
}
