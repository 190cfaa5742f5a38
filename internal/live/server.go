package live

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/hashicorp/mdns"

	"shirtforge/internal/logging"
)

// Path is where the hub accepts WebSocket connections.
const Path = "/ws"

// Server serves a hub over HTTP and, when asked, advertises it over mDNS.
type Server struct {
	http *http.Server
	addr net.Addr
	mdns *mdns.Server
}

// Listen binds addr and starts serving h in the background. A failed
// mDNS advert is logged and does not stop the server.
func Listen(addr string, h *Hub, advertise bool) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("live: listen %s: %w", addr, err)
	}
	mux := http.NewServeMux()
	mux.Handle(Path, h)
	s := &Server{
		http: &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second},
		addr: ln.Addr(),
	}
	go func() {
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.L().Error("live: serve", "err", err)
		}
	}()

	if advertise {
		port := ln.Addr().(*net.TCPAddr).Port
		if s.mdns, err = Advertise(port); err != nil {
			logging.L().Warn("live: not advertised", "err", err)
		}
	}
	logging.L().Info("live: listening", "addr", s.addr.String(), "path", Path)
	return s, nil
}

// Addr is the bound listen address.
func (s *Server) Addr() string { return s.addr.String() }

// Close stops the advert and shuts the HTTP server down.
func (s *Server) Close(ctx context.Context) error {
	if s.mdns != nil {
		if err := s.mdns.Shutdown(); err != nil {
			logging.L().Warn("live: mdns shutdown", "err", err)
		}
	}
	return s.http.Shutdown(ctx)
}
