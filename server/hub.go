package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"tem/calculator"
	"tem/export"
	"tem/model"
)

// Hub serves one websocket connection. Requests are read by serveWs, every
// reply goes through out so that only handleResponse writes to conn.
type Hub struct {
	s    *Server
	conn *websocket.Conn
	log  log.FieldLogger

	// request
	msg chan model.Msg
	// response
	out    chan model.Msg
	closed chan struct{}

	mu      sync.Mutex
	cancel  context.CancelFunc
	running bool
	wg      sync.WaitGroup
}

func newHub(s *Server, conn *websocket.Conn) *Hub {
	return &Hub{
		s:      s,
		conn:   conn,
		log:    s.log.WithField("remote", conn.RemoteAddr().String()),
		msg:    make(chan model.Msg, 10),
		out:    make(chan model.Msg, 64),
		closed: make(chan struct{}),
	}
}

// serveWs handles websocket requests from the peer.
func (s *Server) serveWs(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("websocket upgrade")
		return
	}
	s.metrics.connections.Inc()
	defer s.metrics.connections.Dec()

	h := newHub(s, conn)
	go h.handleRequest()
	go h.handleResponse()
	defer h.close()

	for {
		var msg model.Msg
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.WithError(err).Debug("read")
			}
			return
		}
		select {
		case h.msg <- msg:
		case <-h.closed:
			return
		}
	}
}

// close cancels a running calculation and waits for it before the
// connection goes away.
func (h *Hub) close() {
	h.stop()
	h.wg.Wait()
	close(h.closed)
	h.conn.Close()
}

func (h *Hub) send(msg model.Msg) {
	select {
	case h.out <- msg:
	case <-h.closed:
	}
}

func (h *Hub) sendJSON(typ string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		h.log.WithError(err).Error("marshal reply")
		h.send(model.Msg{Type: model.TypeError, Content: err.Error()})
		return
	}
	h.send(model.Msg{Type: typ, Content: string(data)})
}

func (h *Hub) handleResponse() {
	for {
		select {
		case reply := <-h.out:
			if err := h.conn.WriteJSON(&reply); err != nil {
				h.log.WithError(err).Debug("write")
			}
		case <-h.closed:
			return
		}
	}
}

func (h *Hub) handleRequest() {
	for {
		select {
		case msg := <-h.msg:
			switch msg.Type {
			case model.TypeRun:
				var req model.RunRequest
				if msg.Content != "" {
					if err := json.Unmarshal([]byte(msg.Content), &req); err != nil {
						h.send(model.Msg{Type: model.TypeError, Content: "invalid run request: " + err.Error()})
						continue
					}
				}
				h.start(req)
			case model.TypeStop:
				// a cancelled run replies itself
				if !h.stop() {
					h.send(model.Msg{Type: model.TypeStopped, Content: "nothing to stop"})
				}
			default:
				h.send(model.Msg{Type: model.TypeError, Content: "no such type: " + msg.Type})
			}
		case <-h.closed:
			return
		}
	}
}

func (h *Hub) start(req model.RunRequest) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.running {
		h.send(model.Msg{Type: model.TypeError, Content: "a run is already in progress"})
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	h.running = true
	h.wg.Add(1)

	go func() {
		defer h.wg.Done()
		defer cancel()

		calcHub := calculator.NewCalcHub()
		forwarded := make(chan struct{})
		go h.forward(calcHub, forwarded)

		summary, res, err := h.s.execute(ctx, req, calcHub)
		calcHub.StopSignal()
		<-forwarded

		h.mu.Lock()
		h.running = false
		h.mu.Unlock()

		var ce *calculator.ConvergenceError
		if errors.Is(err, context.Canceled) {
			h.send(model.Msg{Type: model.TypeStopped, Content: "stopped"})
			return
		}
		if err != nil && !errors.As(err, &ce) {
			h.send(model.Msg{Type: model.TypeError, Content: err.Error()})
			return
		}
		result := model.Result{Summary: summary}
		if res != nil && res.Mesh != nil {
			result.Field = export.Encode(res.Mesh.Field(), export.DefaultScale)
		}
		h.sendJSON(model.TypeResult, result)
	}()
}

// stop cancels the running calculation, false when there is none.
func (h *Hub) stop() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.running || h.cancel == nil {
		return false
	}
	h.cancel()
	return true
}

// forward relays the calculator channels until the run ends, then drains
// what is left so that nothing arrives after the result.
func (h *Hub) forward(ch *calculator.CalcHub, done chan<- struct{}) {
	defer close(done)
	relay := func(typ, content string) {
		h.send(model.Msg{Type: typ, Content: content})
	}
	for {
		select {
		case p := <-ch.ProgressChan:
			relay(model.TypeProgress, strconv.Itoa(p))
		case st := <-ch.StatusChan:
			relay(model.TypeStatus, st)
		case d := <-ch.DebugChan:
			relay(model.TypeDebug, d)
		case <-ch.Done:
			for {
				select {
				case p := <-ch.ProgressChan:
					relay(model.TypeProgress, strconv.Itoa(p))
				case st := <-ch.StatusChan:
					relay(model.TypeStatus, st)
				case d := <-ch.DebugChan:
					relay(model.TypeDebug, d)
				default:
					return
				}
			}
		}
	}
}
