// Package stream pushes per-step simulation samples to WebSocket clients.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/san-kum/mdsim/internal/logging"
	"github.com/san-kum/mdsim/internal/metrics"
	"github.com/san-kum/mdsim/internal/sim"
)

var (
	ErrClosed     = errors.New("stream: broadcaster closed")
	ErrQueueFull  = errors.New("stream: broadcast queue full")
	publishWait   = time.Second
	writeDeadline = 10 * time.Second
)

type Position struct {
	ID int     `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

type Message struct {
	Step int     `json:"step"`
	Time float64 `json:"time"`
	metrics.Energetics
	StepMillis float64    `json:"step_ms"`
	Positions  []Position `json:"positions,omitempty"`
}

// Broadcaster fans messages out to every connected client. Slow or broken
// clients are dropped.
type Broadcaster struct {
	mu         sync.RWMutex
	clients    map[*websocket.Conn]bool
	upgrader   websocket.Upgrader
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{}
	closeOnce  sync.Once
	wg         sync.WaitGroup
	log        logging.Logger
}

func NewBroadcaster(log logging.Logger) *Broadcaster {
	if log == nil {
		log = logging.NewNoOp()
	}
	b := &Broadcaster{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		log:        log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}

	b.wg.Add(1)
	go b.run()
	return b
}

// ServeHTTP upgrades the request and keeps the client until it disconnects.
func (b *Broadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.log.Warnf("websocket upgrade failed: %v", err)
		return
	}

	select {
	case b.register <- conn:
	case <-b.done:
		conn.Close()
		return
	}

	// clients never send; reading detects the close
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				select {
				case b.unregister <- conn:
				case <-b.done:
				}
				return
			}
		}
	}()
}

func (b *Broadcaster) Clients() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

func (b *Broadcaster) Publish(ctx context.Context, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	select {
	case <-b.done:
		return ErrClosed
	default:
	}

	select {
	case b.broadcast <- data:
		return nil
	case <-b.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(publishWait):
		return ErrQueueFull
	}
}

func (b *Broadcaster) run() {
	defer b.wg.Done()
	for {
		select {
		case <-b.done:
			return

		case conn := <-b.register:
			b.mu.Lock()
			b.clients[conn] = true
			b.mu.Unlock()
			b.log.Infof("client connected from %s", conn.RemoteAddr())

		case conn := <-b.unregister:
			b.mu.Lock()
			if _, ok := b.clients[conn]; ok {
				delete(b.clients, conn)
				conn.Close()
			}
			b.mu.Unlock()

		case data := <-b.broadcast:
			b.mu.RLock()
			conns := make([]*websocket.Conn, 0, len(b.clients))
			for conn := range b.clients {
				conns = append(conns, conn)
			}
			b.mu.RUnlock()

			var failed []*websocket.Conn
			for _, conn := range conns {
				conn.SetWriteDeadline(time.Now().Add(writeDeadline))
				if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
					failed = append(failed, conn)
					conn.Close()
				}
			}

			if len(failed) > 0 {
				b.mu.Lock()
				for _, conn := range failed {
					delete(b.clients, conn)
				}
				b.mu.Unlock()
				b.log.Debugf("dropped %d clients", len(failed))
			}
		}
	}
}

// Close disconnects every client and stops the broadcast loop. It is safe to
// call more than once.
func (b *Broadcaster) Close() error {
	b.closeOnce.Do(func() {
		close(b.done)
		b.wg.Wait()

		b.mu.Lock()
		for conn := range b.clients {
			conn.Close()
			delete(b.clients, conn)
		}
		b.mu.Unlock()
	})
	return nil
}

// Observer publishes every `every`-th step. With positions set, each
// message also carries the particle coordinates.
func (b *Broadcaster) Observer(ctx context.Context, every int, positions bool) sim.Observer {
	if every < 1 {
		every = 1
	}
	return sim.ObserverFunc(func(info sim.StepInfo) error {
		if info.Step%every != 0 {
			return nil
		}

		msg := Message{
			Step:       info.Step,
			Time:       info.Time,
			Energetics: info.Energetics,
			StepMillis: float64(info.Elapsed.Microseconds()) / 1000,
		}
		if positions {
			msg.Positions = make([]Position, len(info.Particles))
			for i := range info.Particles {
				p := &info.Particles[i]
				msg.Positions[i] = Position{ID: p.ID, X: p.Center.X, Y: p.Center.Y}
			}
		}

		err := b.Publish(ctx, msg)
		if errors.Is(err, ErrQueueFull) {
			b.log.Warnf("step %d not streamed: %v", info.Step, err)
			return nil
		}
		return err
	})
}
