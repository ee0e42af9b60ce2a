package control

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"newshub/domain"
)

var ErrAlreadyRunning = errors.New("already running")

// TryListen tries to bind the control address. If it's already in use, we assume an instance is running.
func TryListen(addr string) (net.Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, ErrAlreadyRunning
	}
	return ln, nil
}

type Service interface {
	SetInterval(d time.Duration)
	Resize(workers int) error
	CurrentInterval() time.Duration
	CurrentWorkers() int
}

type Server struct {
	ingestor domain.Ingestor
	svc      Service
}

func NewServer(ingestor domain.Ingestor, svc Service) *Server {
	return &Server{ingestor: ingestor, svc: svc}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Preflight gets an empty success response so browser-hosted callers
	// can trigger runs cross-origin.
	if r.Method == http.MethodOptions {
		writeCORS(w)
		w.WriteHeader(http.StatusOK)
		return
	}
	switch {
	case r.URL.Path == "/run" || r.URL.Path == "/":
		s.handleRun(w, r)
	case r.Method == http.MethodPost && r.URL.Path == "/set-interval":
		s.handleSetInterval(w, r)
	case r.Method == http.MethodPost && r.URL.Path == "/set-workers":
		s.handleSetWorkers(w, r)
	default:
		http.NotFound(w, r)
	}
}

// handleRun executes the full ingestion pipeline and always answers 200
// with the structured report. Partial failures live inside the payload;
// callers inspect per-source status fields, not the transport status.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	report := s.ingestor.Run(r.Context())
	writeCORS(w)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(report)
}

func (s *Server) handleSetInterval(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Duration string `json:"duration"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	d, err := time.ParseDuration(req.Duration)
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid duration: %v", err), http.StatusBadRequest)
		return
	}
	old := s.svc.CurrentInterval()
	s.svc.SetInterval(d)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"ok": true, "old": old.String(), "new": d.String()})
}

func (s *Server) handleSetWorkers(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Workers int `json:"workers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if req.Workers <= 0 {
		http.Error(w, "workers must be > 0", http.StatusBadRequest)
		return
	}
	old := s.svc.CurrentWorkers()
	if err := s.svc.Resize(req.Workers); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"ok": true, "old": old, "new": req.Workers})
}

func writeCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")
}
