package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/soar/axisremap/internal/curve"
	"github.com/soar/axisremap/internal/hub"
	"github.com/soar/axisremap/internal/remap"
)

type Server struct {
	hub         *hub.Hub
	broadcaster *hub.Broadcaster
	rig         *remap.Rig
	reader      *remap.Reader
	addr        string
	httpServer  *http.Server
}

func New(h *hub.Hub, b *hub.Broadcaster, rig *remap.Rig, r *remap.Reader, addr string) *Server {
	return &Server{
		hub:         h,
		broadcaster: b,
		rig:         rig,
		reader:      r,
		addr:        addr,
	}
}

func (s *Server) ListenAndServe() error {
	mux := http.NewServeMux()

	// WebSocket endpoint for the editor UI and monitors
	mux.HandleFunc("/ws", handleWebSocket(s.hub, s.broadcaster, s.rig))

	// Current state and curves for simple polling clients
	mux.HandleFunc("/state", s.handleState)

	s.httpServer = &http.Server{
		Addr:    s.addr,
		Handler: mux,
	}

	log.Printf("HTTP server listening on %s", s.addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		log.Println("Shutting down HTTP server...")
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	type axisState struct {
		Name   string           `json:"name"`
		Target string           `json:"target"`
		Invert bool             `json:"invert"`
		Curve  curve.Parameters `json:"curve"`
	}
	resp := struct {
		Frame remap.Frame `json:"frame"`
		Axes  []axisState `json:"axes"`
	}{
		Frame: s.reader.CurrentFrame(),
	}
	for _, a := range s.rig.Axes() {
		resp.Axes = append(resp.Axes, axisState{
			Name:   a.Name,
			Target: a.Target,
			Invert: a.Invert,
			Curve:  a.Curve(),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("Error encoding state: %v", err)
	}
}
