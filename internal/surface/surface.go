// Package surface is the transport to the companion browser surface:
// a local WebSocket endpoint the surface connects to. The native layer
// sends commands (navigate, reload, pre-load scripts); the surface
// reports events (navigation, page-originated organization changes).
package surface

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"nhooyr.io/websocket"

	"github.com/lotas/lernbruecke/internal/applog"
)

// Incoming message types.
const (
	TypeReady               = "ready"
	TypeNavigated           = "navigated"
	TypeOrganizationChanged = "ORGANIZATION_CHANGED"
	TypeSessionEstablished  = "sessionEstablished"
)

// Outgoing actions.
const (
	ActionPreload         = "preload"
	ActionNavigate        = "navigate"
	ActionBack            = "back"
	ActionReload          = "reload"
	ActionMonitor         = "monitor"
	ActionSetOrganization = "setOrganization"
)

// Event is a message from the browser surface to the native layer.
// ORGANIZATION_CHANGED is posted by the injected monitor script when
// the page itself writes the organization-selection key; the other
// types come from the surface shell.
type Event struct {
	Type           string          `json:"type"`
	URL            string          `json:"url,omitempty"`
	CanGoBack      bool            `json:"canGoBack,omitempty"`
	OrganizationID string          `json:"organizationId,omitempty"`
	Cookie         string          `json:"cookie,omitempty"`
	User           json.RawMessage `json:"user,omitempty"`
	// Command acknowledgement fields.
	ID    string `json:"id,omitempty"`
	OK    *bool  `json:"ok,omitempty"`
	Error string `json:"error,omitempty"`
}

// Command is an instruction from the native layer to the surface.
type Command struct {
	ID             string `json:"id"`
	Action         string `json:"action"`
	URL            string `json:"url,omitempty"`
	Script         string `json:"script,omitempty"`
	Key            string `json:"key,omitempty"`
	OrganizationID string `json:"organizationId,omitempty"`
	Reload         bool   `json:"reload,omitempty"`
}

// Conn is what the bridge needs from a surface connection. Satisfied by
// *Server and by test fakes.
type Conn interface {
	Send(cmd Command) error
	Connected() bool
}

// Server accepts exactly one surface connection at a time; a newer
// connection replaces the current one.
type Server struct {
	port    int
	events  chan Event
	mu      sync.Mutex
	conn    *websocket.Conn
	connCtx context.Context
}

// New creates a Server. Port 0 means the caller manages the listener.
func New(port int) *Server {
	return &Server{
		port:   port,
		events: make(chan Event, 64),
	}
}

// Port returns the configured port.
func (s *Server) Port() int {
	return s.port
}

// Events returns the channel of surface events. The channel buffer
// drops on overflow; delivery is not guaranteed, and the bridge design
// tolerates that (state is reconciled from the store on next start).
func (s *Server) Events() <-chan Event {
	return s.events
}

// Connected reports whether a surface is currently attached.
func (s *Server) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

// Send delivers a command to the attached surface. Commands sent while
// detached are silently dropped; the surface re-handshakes on connect.
func (s *Server) Send(cmd Command) error {
	s.mu.Lock()
	conn := s.conn
	ctx := s.connCtx
	s.mu.Unlock()

	if conn == nil {
		return nil
	}
	if cmd.ID == "" {
		cmd.ID = uuid.NewString()
	}

	applog.Debug("surface.send", "action", cmd.Action, "id", cmd.ID)
	data, err := json.Marshal(cmd)
	if err != nil {
		return err
	}
	return conn.Write(ctx, websocket.MessageText, data)
}

// Handler returns an http.Handler that accepts WebSocket upgrades from
// the surface.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			applog.Error("surface.accept", err)
			return
		}

		conn.SetReadLimit(1 << 20)

		ctx := r.Context()
		s.mu.Lock()
		if s.conn != nil {
			applog.Info("surface.replaced")
			s.conn.CloseNow()
		}
		s.conn = conn
		s.connCtx = ctx
		s.mu.Unlock()

		applog.Info("surface.connected", "remote", r.RemoteAddr)

		defer func() {
			s.mu.Lock()
			if s.conn == conn {
				s.conn = nil
				s.connCtx = nil
			}
			s.mu.Unlock()
			conn.CloseNow()
			applog.Info("surface.disconnected")
		}()

		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				return
			}
			var ev Event
			if err := json.Unmarshal(data, &ev); err != nil {
				// Malformed page messages are logged and skipped,
				// never fatal to the channel.
				applog.Error("surface.parse", err)
				continue
			}
			applog.Debug("surface.recv", "type", ev.Type)
			select {
			case s.events <- ev:
			default:
			}
		}
	})
}

// ListenAndServe binds the WebSocket endpoint on localhost and serves
// until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/", s.Handler())

	addr := fmt.Sprintf("127.0.0.1:%d", s.port)
	applog.Info("surface.listen", "addr", addr)
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	return srv.ListenAndServe()
}
