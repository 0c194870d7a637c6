package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"

	"github.com/dgnsrekt/gas_chart/internal/chart"
	"github.com/dgnsrekt/gas_chart/internal/controller"
)

// Sessions is the subset of the controller a socket client may drive.
type Sessions interface {
	HasSession(id string) bool
	SelectEvent(ctx context.Context, id, eventID string) (chart.Event, chart.Selection, error)
	Focus(ctx context.Context, id string, t *int64) (chart.Selection, error)
	ClearSelection(ctx context.Context, id string) (chart.Selection, error)
	PointerClick(ctx context.Context, id string, x, y float64) (controller.ClickResult, error)
}

type clientMessage struct {
	Type    string  `json:"type"`
	EventID string  `json:"event_id,omitempty"`
	T       *int64  `json:"t,omitempty"`
	X       float64 `json:"x,omitempty"`
	Y       float64 `json:"y,omitempty"`
}

type reply struct {
	Kind      string           `json:"kind"`
	Type      string           `json:"type,omitempty"`
	Event     *chart.Event     `json:"event,omitempty"`
	Selection *chart.Selection `json:"selection,omitempty"`
	Hit       *bool            `json:"hit,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// SocketHandler upgrades to a WebSocket bound to the session named by the
// session_id route parameter. The socket receives that session's
// notifications and accepts select, focus, click and clear messages.
func SocketHandler(broker *Broker, svc Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := strings.TrimSpace(chi.URLParam(r, "session_id"))
		if !svc.HasSession(session) {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}

		conn, _, _, err := ws.UpgradeHTTP(r, w)
		if err != nil {
			slog.Debug("relay websocket upgrade failed", "session", session, "error", err)
			return
		}
		s := &socket{conn: conn, session: session}
		defer s.close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		subID, ch := broker.Subscribe()
		defer broker.Unsubscribe(subID)
		go s.forward(ctx, cancel, ch)

		slog.Info("relay websocket opened", "session", session, "remote", r.RemoteAddr)
		for {
			data, err := wsutil.ReadClientText(conn)
			if err != nil {
				slog.Debug("relay websocket read loop exit", "session", session, "error", err)
				return
			}
			if err := s.writeJSON(s.handle(ctx, svc, data)); err != nil {
				slog.Debug("relay websocket reply failed", "session", session, "error", err)
				return
			}
		}
	}
}

type socket struct {
	conn    net.Conn
	session string
	mu      sync.Mutex
}

func (s *socket) forward(ctx context.Context, cancel context.CancelFunc, ch <-chan Event) {
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-ch:
			if !ok {
				return
			}
			if evt.Session != s.session {
				continue
			}
			if err := s.write([]byte(evt.Payload)); err != nil {
				slog.Debug("relay websocket forward failed", "session", s.session, "error", err)
				s.close()
				return
			}
		}
	}
}

func (s *socket) handle(ctx context.Context, svc Sessions, data []byte) reply {
	var msg clientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return reply{Kind: "error", Error: fmt.Sprintf("invalid message: %v", err)}
	}
	out := reply{Kind: "ack", Type: msg.Type}
	switch msg.Type {
	case "select":
		ev, sel, err := svc.SelectEvent(ctx, s.session, msg.EventID)
		if err != nil {
			return errorReply(msg.Type, err)
		}
		out.Event, out.Selection = &ev, &sel
	case "focus":
		sel, err := svc.Focus(ctx, s.session, msg.T)
		if err != nil {
			return errorReply(msg.Type, err)
		}
		out.Selection = &sel
	case "clear":
		sel, err := svc.ClearSelection(ctx, s.session)
		if err != nil {
			return errorReply(msg.Type, err)
		}
		out.Selection = &sel
	case "click":
		res, err := svc.PointerClick(ctx, s.session, msg.X, msg.Y)
		if err != nil {
			return errorReply(msg.Type, err)
		}
		out.Event, out.Selection, out.Hit = res.Event, &res.Selection, &res.Hit
	default:
		return reply{Kind: "error", Type: msg.Type, Error: fmt.Sprintf("unknown message type %q", msg.Type)}
	}
	return out
}

func errorReply(typ string, err error) reply {
	return reply{Kind: "error", Type: typ, Error: err.Error()}
}

func (s *socket) writeJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.write(data)
}

func (s *socket) write(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return wsutil.WriteServerText(s.conn, data)
}

func (s *socket) close() {
	if err := s.conn.Close(); err != nil && !strings.Contains(err.Error(), "use of closed") {
		slog.Debug("relay websocket close failed", "session", s.session, "error", err)
	}
}
