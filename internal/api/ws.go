package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/meur/civatlas/internal/session"
	"github.com/meur/civatlas/internal/viewsync"
	"go.uber.org/zap"
)

const (
	wsWriteWait  = 5 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait / 2
)

// wsMessage is pushed to WebSocket clients
type wsMessage struct {
	Type  string         `json:"type"`
	View  *viewsync.View `json:"view,omitempty"`
	Error string         `json:"error,omitempty"`
}

// handleWebSocket streams every view of a session and accepts intents
// from the client.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	views, unsubscribe := sess.Subscribe()
	defer unsubscribe()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errs := make(chan string, 8)
	writeDone := make(chan struct{})

	// Writer goroutine: the only one writing data frames.
	go func() {
		defer close(writeDone)
		ping := time.NewTicker(wsPingPeriod)
		defer ping.Stop()

		for {
			var msg wsMessage
			select {
			case <-ctx.Done():
				return
			case <-ping.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
					conn.Close()
					return
				}
				continue
			case v, ok := <-views:
				if !ok {
					// Session ended; unblock the reader.
					conn.Close()
					return
				}
				msg = wsMessage{Type: "view", View: &v}
			case e := <-errs:
				msg = wsMessage{Type: "error", Error: e}
			}

			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(msg); err != nil {
				conn.Close()
				return
			}
		}
	}()

	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	// Reader loop: intents from the client.
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			break
		}
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		s.sessions.Get(sess.ID)

		var in session.Intent
		if err := json.Unmarshal(raw, &in); err != nil {
			sendError(errs, "invalid intent")
			continue
		}
		if _, err := sess.Apply(in); err != nil {
			_, msg := intentError(err)
			s.log.Debug("ws intent rejected", zap.String("session", sess.ID), zap.Error(err))
			sendError(errs, msg)
		}
	}

	cancel()
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))

	// Best-effort wait for the writer so it does not outlive conn.
	select {
	case <-writeDone:
	case <-time.After(500 * time.Millisecond):
	}
}

func sendError(errs chan<- string, msg string) {
	select {
	case errs <- msg:
	default:
	}
}
