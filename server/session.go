package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"galaxy/core"
	"galaxy/detail"
	"galaxy/diagram"
	"galaxy/interact"
	"galaxy/render"
	"galaxy/widget"
)

const (
	sessionWSWriteWait = 10 * time.Second
	sessionWSPongWait  = 60 * time.Second
	sessionWSPingEvery = (sessionWSPongWait * 9) / 10
	sessionWSQueue     = 32
)

var sessionWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

// sessionInbound is a client message. Fields are used according to Type:
// load (Payload, Width, Height), resize (Width, Height), pointer (Kind, X, Y,
// Shift), zoom (X, Y, Factor), pan (DX, DY), undo, redo, reset, ping.
type sessionInbound struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Width   float64         `json:"width,omitempty"`
	Height  float64         `json:"height,omitempty"`
	Kind    string          `json:"kind,omitempty"`
	X       float64         `json:"x,omitempty"`
	Y       float64         `json:"y,omitempty"`
	Shift   bool            `json:"shift,omitempty"`
	Factor  float64         `json:"factor,omitempty"`
	DX      float64         `json:"dx,omitempty"`
	DY      float64         `json:"dy,omitempty"`
}

type sessionOutbound struct {
	Type      string       `json:"type"`
	SVG       string       `json:"svg,omitempty"`
	Order     []int        `json:"order,omitempty"`
	State     string       `json:"state,omitempty"`
	Selection *detail.View `json:"selection,omitempty"`
	Changed   *bool        `json:"changed,omitempty"`
	Code      string       `json:"code,omitempty"`
	Message   string       `json:"message,omitempty"`
}

// session owns one widget. Every method runs on the connection's read
// goroutine and send must not block. Frames are only presented once the
// widget exists.
type session struct {
	h         *Handler
	container *widget.Headless
	w         *widget.Widget
	send      func(sessionOutbound)
}

func newSession(h *Handler, send func(sessionOutbound)) *session {
	return &session{
		h:         h,
		container: widget.NewHeadless(h.cfg.Width, 0),
		send:      send,
	}
}

func (s *session) present(f *render.Frame) error {
	var sb strings.Builder
	if err := render.WriteSVG(&sb, s.w.Renderer().Scene(f)); err != nil {
		return err
	}
	out := sessionOutbound{Type: "frame", SVG: sb.String(), Order: []int{}}
	if f.Geometry != nil {
		out.Order = f.Geometry.Order()
	}
	out.State = s.w.State().String()
	s.send(out)
	return nil
}

func (s *session) onCellClick(sel diagram.Selection) {
	view := detail.Build(sel, s.w.Colors(), s.w.Model().Label)
	s.send(sessionOutbound{Type: "selection", Selection: &view})
}

func sessionError(code string, err error) sessionOutbound {
	return sessionOutbound{Type: "error", Code: code, Message: err.Error()}
}

var errNoDiagram = errors.New("no diagram loaded")

// handle applies one client message. Errors are reported to the client and the
// session continues.
func (s *session) handle(in sessionInbound) {
	msgType := strings.ToLower(strings.TrimSpace(in.Type))
	if msgType == "" {
		s.send(sessionError("invalid_argument", errors.New("type is required")))
		return
	}
	if msgType == "ping" {
		s.send(sessionOutbound{Type: "pong"})
		return
	}
	if msgType == "load" {
		if err := s.load(in); err != nil {
			s.send(sessionError(codeFor(err), err))
		}
		return
	}
	if s.w == nil {
		s.send(sessionError("failed_precondition", errNoDiagram))
		return
	}

	var err error
	switch msgType {
	case "resize":
		s.container.Resize(in.Width, in.Height)
		err = s.w.Handle(interact.Resize{Width: in.Width, Height: in.Height})
	case "pointer":
		var ev interact.Event
		if ev, err = pointerEvent(in); err == nil {
			err = s.w.Handle(ev)
		}
	case "zoom":
		err = s.w.Handle(interact.Zoom{At: core.Point{X: in.X, Y: in.Y}, Factor: in.Factor})
	case "pan":
		err = s.w.Handle(interact.Pan{DX: in.DX, DY: in.DY})
	case "undo", "redo":
		var changed bool
		if msgType == "undo" {
			changed, err = s.w.Undo()
		} else {
			changed, err = s.w.Redo()
		}
		if err == nil && !changed {
			s.send(sessionOutbound{Type: msgType, Changed: &changed})
		}
	case "reset":
		err = s.w.ResetOrder()
	default:
		err = fmt.Errorf("%w: unsupported type: %s", errBadParam, msgType)
	}
	if err != nil {
		s.send(sessionError(codeFor(err), err))
	}
}

func pointerEvent(in sessionInbound) (interact.Event, error) {
	at := core.Point{X: in.X, Y: in.Y}
	switch strings.ToLower(in.Kind) {
	case "down":
		return interact.PointerDown{Pos: at, Shift: in.Shift}, nil
	case "move":
		return interact.PointerMove{Pos: at}, nil
	case "up":
		return interact.PointerUp{Pos: at}, nil
	case "leave":
		return interact.PointerLeave{}, nil
	default:
		return nil, fmt.Errorf("%w: pointer kind %q", errBadParam, in.Kind)
	}
}

// load starts a new analysis session from the message payload, or from the
// stored data file when the message carries none.
func (s *session) load(in sessionInbound) error {
	var (
		p   *diagram.Payload
		err error
	)
	if len(in.Payload) > 0 && string(in.Payload) != "null" {
		p, err = diagram.ParsePayload(in.Payload)
	} else {
		p, _, err = s.h.loadDataFile()
	}
	if err != nil {
		return err
	}

	if in.Width > 0 || in.Height > 0 {
		s.container.Resize(in.Width, in.Height)
	}
	if s.w != nil {
		return s.w.Load(p)
	}
	opts, err := widgetOptions(p, renderParams{Palette: s.h.cfg.Palette})
	if err != nil {
		return err
	}
	w, err := widget.RenderSankey(s.container, p, s.onCellClick, opts...)
	if err != nil {
		return err
	}
	s.w = w
	s.container.OnPresent = s.present
	return s.present(w.Frame())
}

func codeFor(err error) string {
	switch statusFor(err) {
	case http.StatusBadRequest:
		return "invalid_argument"
	case http.StatusNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// HandleSessionWS runs an interactive diagram session over a websocket.
func (h *Handler) HandleSessionWS(w http.ResponseWriter, r *http.Request) {
	conn, err := sessionWSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(sessionWSPongWait)); err != nil {
		log.Printf("session ws set read deadline failed: %v", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(sessionWSPongWait))
	})

	writeCh := make(chan sessionOutbound, sessionWSQueue)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(sessionWSPingEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case out := <-writeCh:
				if err := conn.SetWriteDeadline(time.Now().Add(sessionWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(sessionWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	s := newSession(h, func(out sessionOutbound) { pushSessionWS(writeCh, out) })
	for {
		var in sessionInbound
		if err := conn.ReadJSON(&in); err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				pushSessionWS(writeCh, sessionError("invalid_argument", err))
				continue
			}
			cancel()
			<-writerDone
			return
		}
		s.handle(in)
	}
}

// pushSessionWS queues a message without blocking. When the queue is full the
// oldest message is dropped.
func pushSessionWS(writeCh chan sessionOutbound, out sessionOutbound) {
	if writeCh == nil {
		return
	}
	select {
	case writeCh <- out:
		return
	default:
	}
	select {
	case <-writeCh:
	default:
	}
	select {
	case writeCh <- out:
	default:
	}
}
