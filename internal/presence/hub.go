package presence

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeTimeout = 10 * time.Second
	pongTimeout  = 60 * time.Second
	pingInterval = 25 * time.Second
	sendBuffer   = 8
)

type client struct {
	operator Operator
	conn     *websocket.Conn
	send     chan Event
}

// Hub é o canal ao vivo: cada conexão websocket vira um operador anônimo e
// todos recebem um sync completo a cada entrada ou saída.
type Hub struct {
	upgrader websocket.Upgrader

	mu        sync.Mutex
	clients   map[*client]struct{}
	order     []*client
	listeners map[int]func(Event)
	nextID    int
}

func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Presença é anônima e só leitura; qualquer origem do dashboard pode assistir.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients:   map[*client]struct{}{},
		listeners: map[int]func(Event){},
	}
}

// Subscribe implementa Channel. O assinante recebe o sync atual na hora.
func (h *Hub) Subscribe(fn func(Event)) func() {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.listeners[id] = fn
	current := h.operatorsLocked()
	h.mu.Unlock()

	fn(SyncEvent(current))
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.listeners, id)
	}
}

func (h *Hub) operatorsLocked() []Operator {
	out := make([]Operator, 0, len(h.order))
	for _, c := range h.order {
		out = append(out, c.operator)
	}
	return out
}

// ServeHTTP faz o upgrade e mantém o cliente até a conexão cair.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("Falha no upgrade do websocket de presença")
		return
	}

	c := &client{operator: NewAnonymousOperator(), conn: conn, send: make(chan Event, sendBuffer)}
	go h.writeLoop(c)
	h.join(c)
	h.readLoop(c)
	h.leave(c)
}

func (h *Hub) join(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.order = append(h.order, c)
	h.mu.Unlock()

	log.Debug().Str("operator_id", c.operator.ID).Msg("Operador entrou")
	h.emit(JoinEvent(c.operator))
}

func (h *Hub) leave(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	for i, other := range h.order {
		if other == c {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
	close(c.send)
	h.mu.Unlock()

	log.Debug().Str("operator_id", c.operator.ID).Msg("Operador saiu")
	h.emit(LeaveEvent(c.operator))
}

// emit avisa os assinantes locais e manda o sync para todos os clientes.
func (h *Hub) emit(e Event) {
	h.mu.Lock()
	listeners := make([]func(Event), 0, len(h.listeners))
	for _, fn := range h.listeners {
		listeners = append(listeners, fn)
	}
	snapshot := SyncEvent(h.operatorsLocked())
	for _, c := range h.order {
		select {
		case c.send <- snapshot:
		default:
			// Cliente lento: perde este sync, o próximo traz o estado completo.
			log.Warn().Str("operator_id", c.operator.ID).Msg("Buffer de presença cheio, sync descartado")
		}
	}
	h.mu.Unlock()

	for _, fn := range listeners {
		fn(e)
	}
}

func (h *Hub) readLoop(c *client) {
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})
	for {
		// Clientes não mandam nada relevante; só drenamos até a conexão cair.
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case e, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(e); err != nil {
				log.Debug().Err(err).Msg("Falha ao enviar presença")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
