package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/goliatone/go-airforms/pkg/model"
)

const (
	previewWSWriteWait = 10 * time.Second
	previewWSPongWait  = 60 * time.Second
	previewWSPingEvery = (previewWSPongWait * 9) / 10
)

type previewInbound struct {
	Type    string        `json:"type"`
	Answers model.Answers `json:"answers"`
}

type previewOutbound struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
	*previewResponse
}

func (s *Server) upgrader() websocket.Upgrader {
	allowed := s.clientURL
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			u, err := url.Parse(origin)
			if err != nil {
				return false
			}
			return strings.EqualFold(u.Host, r.Host) || strings.EqualFold(strings.TrimRight(origin, "/"), strings.TrimRight(allowed, "/"))
		},
	}
}

// handlePreviewSocket streams preview state: each inbound answers message is
// answered with the visible field ids, hidden count and required errors.
func (s *Server) handlePreviewSocket(w http.ResponseWriter, r *http.Request) {
	form, err := s.forms.GetForm(r.Context(), chi.URLParam(r, "formID"))
	if err != nil {
		s.writeLookupError(w, err)
		return
	}

	upgrader := s.upgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn.SetReadLimit(maxBodyBytes)
	if err := conn.SetReadDeadline(time.Now().Add(previewWSPongWait)); err != nil {
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(previewWSPongWait))
	})

	writeCh := make(chan previewOutbound, 8)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		// Unblocks ReadMessage once the writer is gone.
		defer conn.Close()
		runPreviewWriter(ctx, cancel, conn, writeCh, previewWSPingEvery)
	}()

	push := func(out previewOutbound) bool {
		return pushPreview(ctx, writeCh, out)
	}

	initial := newPreviewResponse(s.submissions.Evaluate(form, nil))
	push(previewOutbound{Type: "preview", previewResponse: &initial})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("preview ws: read failed", "form", form.ID, "error", err)
			}
			break
		}
		var in previewInbound
		if err := json.Unmarshal(data, &in); err != nil {
			if !push(previewOutbound{Type: "error", Message: "answers must be strings or lists of strings"}) {
				break
			}
			continue
		}
		if in.Type != "" && in.Type != "answers" {
			if !push(previewOutbound{Type: "error", Message: "unsupported message type " + in.Type}) {
				break
			}
			continue
		}
		state := newPreviewResponse(s.submissions.Evaluate(form, in.Answers))
		if !push(previewOutbound{Type: "preview", previewResponse: &state}) {
			break
		}
	}

	cancel()
	<-writerDone
}

// previewConn is the write half of a websocket connection.
type previewConn interface {
	SetWriteDeadline(t time.Time) error
	WriteJSON(v any) error
	WriteMessage(messageType int, data []byte) error
}

// runPreviewWriter drains out onto conn and pings every pingEvery. A failed
// write cancels ctx so the read loop stops pushing.
func runPreviewWriter(ctx context.Context, cancel context.CancelFunc, conn previewConn, out <-chan previewOutbound, pingEvery time.Duration) {
	defer cancel()
	ticker := time.NewTicker(pingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-out:
			if err := conn.SetWriteDeadline(time.Now().Add(previewWSWriteWait)); err != nil {
				return
			}
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.SetWriteDeadline(time.Now().Add(previewWSWriteWait)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func pushPreview(ctx context.Context, ch chan<- previewOutbound, out previewOutbound) bool {
	select {
	case ch <- out:
		return true
	case <-ctx.Done():
		return false
	}
}
