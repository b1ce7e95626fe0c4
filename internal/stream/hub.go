package stream

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/unxversal/pointgate/internal/model"
	"github.com/unxversal/pointgate/internal/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pingPeriod     = 15 * time.Second // Keep-alive interval
	clientBufSize  = 64
	maxMessageSize = 512
)

// Envelope is the wire frame pushed to every subscriber.
type Envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Hub 向订阅者广播引擎事件（日终结算、段位变化）。
// 它实现 engine 的 Notifier 接口；慢客户端直接断开，绝不反压引擎。
type Hub struct {
	mu       sync.RWMutex
	clients  map[*client]struct{}
	upgrader websocket.Upgrader
}

type client struct {
	conn *websocket.Conn
	send chan Envelope
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// hook 网关部署在内网，来源校验交给边缘层
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *Hub) NotifyDayFinalized(ev model.DayFinalizedEvent) {
	h.broadcast(Envelope{Type: model.EventDayFinalized, Data: ev})
}

func (h *Hub) NotifyTierChange(ev model.TierChangeEvent) {
	h.broadcast(Envelope{Type: model.EventTierChange, Data: ev})
}

func (h *Hub) broadcast(env Envelope) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- env:
		default:
			// 缓冲满说明客户端跟不上，由 writePump 的超时负责清理
		}
	}
}

// ClientCount reports the number of live subscribers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Serve upgrades the request and streams events until the client goes away.
func (h *Hub) Serve(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Error("Upgrade failed", "error", err)
		return
	}

	cl := &client{
		conn: conn,
		send: make(chan Envelope, clientBufSize),
	}

	h.mu.Lock()
	h.clients[cl] = struct{}{}
	h.mu.Unlock()

	go h.writePump(cl)
	h.readPump(cl)
}

func (h *Hub) remove(cl *client) {
	h.mu.Lock()
	if _, ok := h.clients[cl]; ok {
		delete(h.clients, cl)
		close(cl.send)
	}
	h.mu.Unlock()
	cl.conn.Close()
}

// readPump 只负责发现断连；这个流是单向推送，忽略所有入站帧。
func (h *Hub) readPump(cl *client) {
	defer h.remove(cl)
	cl.conn.SetReadLimit(maxMessageSize)
	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(cl *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		h.remove(cl)
	}()

	for {
		select {
		case env, ok := <-cl.send:
			if !ok {
				return
			}
			cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteJSON(env); err != nil {
				return
			}
		case <-ticker.C:
			cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
