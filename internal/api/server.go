package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"munajjam/align"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsClient is a single WebSocket subscriber to one run's progress stream,
// grounded on the teacher's wsClient (internal/api/server.go): a
// mutex-guarded *websocket.Conn, one writer goroutine's worth of safety.
type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsClient) send(msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(msg)
}

// Server wraps align.Facade with an HTTP+WebSocket surface: POST /align
// starts a run and returns a run id, GET /ws/{run_id} streams that run's
// progress and final result as JSON messages. This is the "external
// driver" SPEC_FULL.md §10/§11 describes around the facade; it is not
// itself a transcription, silence-detection, or persistence collaborator.
type Server struct {
	facade *align.Facade

	mu      sync.Mutex
	clients map[string]map[*wsClient]bool // run id -> subscribers
}

// NewServer constructs a Server around an already-configured facade.
func NewServer(facade *align.Facade) *Server {
	return &Server{
		facade:  facade,
		clients: make(map[string]map[*wsClient]bool),
	}
}

// Start registers the HTTP handlers and blocks serving on addr.
func (s *Server) Start(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/align", s.handleAlign)
	mux.HandleFunc("/ws/", s.handleWS)

	log.Printf("api: listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}

func (s *Server) handleAlign(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}

	var req AlignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	runID := uuid.New().String()
	segments := toSegments(req.Segments)
	ayahs := toAyahs(req.Ayahs)
	silences := toSilences(req.Silences)

	go s.run(runID, segments, ayahs, silences)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(Message{Type: "run_started", RunID: runID})
}

// run executes one alignment in the background and broadcasts progress
// and the final outcome to the run's WebSocket subscribers. It does not
// block the HTTP request that started it (spec.md §5: the core itself is
// synchronous per sūra, but nothing stops an external driver from running
// it off the request goroutine).
func (s *Server) run(runID string, segments []align.Segment, ayahs []align.Ayah, silences []align.SilenceInterval) {
	onProgress := func(current, total int) {
		s.broadcast(runID, Message{Type: "progress", RunID: runID, Current: current, Total: total})
	}

	results, report, err := s.facade.Align(context.Background(), segments, ayahs, silences, onProgress)
	if err != nil {
		s.broadcast(runID, Message{Type: "error", RunID: runID, Error: err.Error()})
		return
	}

	s.broadcast(runID, Message{
		Type:    "done",
		RunID:   runID,
		Results: toResultDTOs(results),
		Report:  toReportDTO(report),
	})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	runID := strings.TrimPrefix(r.URL.Path, "/ws/")
	if runID == "" {
		http.Error(w, "run id required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("api: upgrade failed: %v", err)
		return
	}

	client := &wsClient{conn: conn}
	s.addClient(runID, client)
	defer s.removeClient(runID, client)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (s *Server) addClient(runID string, c *wsClient) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clients[runID] == nil {
		s.clients[runID] = make(map[*wsClient]bool)
	}
	s.clients[runID][c] = true
}

func (s *Server) removeClient(runID string, c *wsClient) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients[runID], c)
	_ = c.conn.Close()
}

func (s *Server) broadcast(runID string, msg Message) {
	s.mu.Lock()
	targets := make([]*wsClient, 0, len(s.clients[runID]))
	for c := range s.clients[runID] {
		targets = append(targets, c)
	}
	s.mu.Unlock()

	for _, c := range targets {
		if err := c.send(msg); err != nil {
			log.Printf("api: send error: %v", err)
			s.removeClient(runID, c)
		}
	}
}
