package service

import (
	"quiz_engine_backend/pkg/logger"
	"sync"

	"go.uber.org/zap"
)

// AnalyticsListener 某用户的分析数据更新后的回调
type AnalyticsListener func(userID uint)

// EventBus 进程级监听器列表。Notify 按注册顺序同步调用全部监听器，
// 某个监听器 panic 不影响其余监听器执行。生命周期与进程一致。
type EventBus struct {
	mu        sync.Mutex
	nextID    int
	order     []int
	listeners map[int]AnalyticsListener
}

func NewEventBus() *EventBus {
	return &EventBus{listeners: make(map[int]AnalyticsListener)}
}

// Register 注册监听器，返回用于注销的句柄
func (b *EventBus) Register(l AnalyticsListener) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.order = append(b.order, id)
	b.listeners[id] = l
	return id
}

func (b *EventBus) Unregister(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.listeners, id)
	for i, v := range b.order {
		if v == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
}

// Notify 同步通知全部监听器
func (b *EventBus) Notify(userID uint) {
	b.mu.Lock()
	snapshot := make([]AnalyticsListener, 0, len(b.order))
	for _, id := range b.order {
		if l, ok := b.listeners[id]; ok {
			snapshot = append(snapshot, l)
		}
	}
	b.mu.Unlock()

	for _, l := range snapshot {
		b.invoke(l, userID)
	}
}

func (b *EventBus) invoke(l AnalyticsListener, userID uint) {
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Error("analytics listener panicked", zap.Any("panic", r))
		}
	}()
	l(userID)
}
