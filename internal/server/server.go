package server

import (
	"context"
	"log"
	"net/http"

	"github.com/soar/joyd/internal/hub"
)

type Server struct {
	hub         *hub.Hub
	broadcaster *hub.Broadcaster
	ctrl        hub.Controller
	snapshots   hub.Snapshotter
	addr        string
	httpServer  *http.Server
}

func New(h *hub.Hub, b *hub.Broadcaster, ctrl hub.Controller, snapshots hub.Snapshotter, addr string) *Server {
	return &Server{
		hub:         h,
		broadcaster: b,
		ctrl:        ctrl,
		snapshots:   snapshots,
		addr:        addr,
	}
}

func (s *Server) ListenAndServe() error {
	mux := http.NewServeMux()

	// WebSocket event stream
	mux.HandleFunc("/ws", handleWebSocket(s.hub, s.broadcaster, s.ctrl))

	// Current device list
	mux.HandleFunc("/devices", handleDevices(s.snapshots))

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
