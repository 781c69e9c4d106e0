package service

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"quiz_engine_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	shardCount = 32

	statsChannel = "stats_channel"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSMessage 下行推送的统一信封
type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// StatsClient 一条已认证的统计推送连接
type StatsClient struct {
	Hub    *StatsHub
	Conn   *websocket.Conn
	Send   chan []byte
	UserID uint
}

// readPump 只消费控制帧，客户端不上行业务消息
func (c *StatsClient) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(512)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Log.Error("WebSocket unexpected close", zap.Error(err), zap.Uint("userId", c.UserID))
			}
			break
		}
	}
}

func (c *StatsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

type statsShard struct {
	clients map[uint][]*StatsClient
	mu      sync.RWMutex
}

// StatsHub 分析数据变更的实时推送。每次提交处理完成后向该用户
// 的所有连接推送 analytics_updated，客户端收到后自行重新拉取。
// 通过 redis 发布订阅支持多实例部署。
type StatsHub struct {
	shards     [shardCount]*statsShard
	register   chan *StatsClient
	unregister chan *StatsClient
	Redis      *redis.Client
	ctx        context.Context
	cancel     context.CancelFunc
}

func NewStatsHub(rdb *redis.Client) *StatsHub {
	ctx, cancel := context.WithCancel(context.Background())
	h := &StatsHub{
		register:   make(chan *StatsClient),
		unregister: make(chan *StatsClient),
		Redis:      rdb,
		ctx:        ctx,
		cancel:     cancel,
	}
	for i := 0; i < shardCount; i++ {
		h.shards[i] = &statsShard{clients: make(map[uint][]*StatsClient)}
	}
	return h
}

func (h *StatsHub) getShard(userID uint) *statsShard {
	return h.shards[userID%shardCount]
}

type statsPubSubMessage struct {
	UserID  uint            `json:"userId"`
	Payload json.RawMessage `json:"payload"`
}

func (h *StatsHub) Run() {
	pubsub := h.Redis.Subscribe(h.ctx, statsChannel)
	go func() {
		ch := pubsub.Channel()
		for msg := range ch {
			var psMsg statsPubSubMessage
			if err := json.Unmarshal([]byte(msg.Payload), &psMsg); err != nil {
				logger.Log.Error("PubSub unmarshal error", zap.Error(err))
				continue
			}
			h.pushLocal(psMsg.UserID, psMsg.Payload)
		}
	}()

	for {
		select {
		case client := <-h.register:
			s := h.getShard(client.UserID)
			s.mu.Lock()
			s.clients[client.UserID] = append(s.clients[client.UserID], client)
			s.mu.Unlock()

		case client := <-h.unregister:
			s := h.getShard(client.UserID)
			s.mu.Lock()
			conns := s.clients[client.UserID]
			for i, c := range conns {
				if c == client {
					s.clients[client.UserID] = append(conns[:i], conns[i+1:]...)
					close(client.Send)
					break
				}
			}
			if len(s.clients[client.UserID]) == 0 {
				delete(s.clients, client.UserID)
			}
			s.mu.Unlock()

		case <-h.ctx.Done():
			pubsub.Close()
			return
		}
	}
}

// NotifyAnalyticsUpdated 实现 AnalyticsListener，在结果流水线
// 末尾由事件总线调用
func (h *StatsHub) NotifyAnalyticsUpdated(userID uint) {
	h.Push(userID, WSMessage{Type: "analytics_updated"})
}

func (h *StatsHub) Push(userID uint, msg WSMessage) {
	msgBytes, _ := json.Marshal(msg)
	payload, _ := json.Marshal(statsPubSubMessage{UserID: userID, Payload: msgBytes})
	if err := h.Redis.Publish(h.ctx, statsChannel, payload).Err(); err != nil {
		logger.Log.Warn("stats push publish failed", zap.Uint("userId", userID), zap.Error(err))
		// redis 不可用时降级为本地直推
		h.pushLocal(userID, msgBytes)
	}
}

func (h *StatsHub) pushLocal(userID uint, payload []byte) {
	s := h.getShard(userID)
	s.mu.RLock()
	for _, client := range s.clients[userID] {
		select {
		case client.Send <- payload:
		default:
		}
	}
	s.mu.RUnlock()
}

// Stop 关闭全部连接并退出事件循环
func (h *StatsHub) Stop() {
	h.cancel()

	closed := 0
	for i := 0; i < shardCount; i++ {
		s := h.shards[i]
		s.mu.Lock()
		for userID, conns := range s.clients {
			for _, client := range conns {
				close(client.Send)
				closed++
			}
			delete(s.clients, userID)
		}
		s.mu.Unlock()
	}
	logger.Log.Info("StatsHub stopped", zap.Int("closedConnections", closed))
}

func ServeStatsWs(hub *StatsHub, w http.ResponseWriter, r *http.Request, userID uint) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Error("WebSocket upgrade failed", zap.Error(err), zap.Uint("userId", userID))
		return
	}
	client := &StatsClient{
		Hub:    hub,
		Conn:   conn,
		Send:   make(chan []byte, 16),
		UserID: userID,
	}
	client.Hub.register <- client

	go client.writePump()
	go client.readPump()
}
