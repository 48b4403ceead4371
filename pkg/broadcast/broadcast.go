// Package broadcast 基于 Redis 发布订阅的跨实例消息广播
package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/barengs/smp/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Message 广播消息
type Message struct {
	Topic     string          `json:"topic"`
	NodeID    string          `json:"node_id"` // 发送者实例ID
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// Handler 消息处理器
type Handler func(msg *Message)

// Broadcaster 广播器，同一频道上的所有实例互相收发，忽略自己发出的消息
type Broadcaster struct {
	channel     string
	nodeID      string
	redis       *redis.Client
	subscribers map[string][]Handler
	mu          sync.RWMutex
	ctx         context.Context
	cancel      context.CancelFunc
	pubsub      *redis.PubSub
	done        chan struct{}
}

// New 创建广播器
func New(rdb *redis.Client, channel, nodeID string) *Broadcaster {
	ctx, cancel := context.WithCancel(context.Background())
	return &Broadcaster{
		channel:     channel,
		nodeID:      nodeID,
		redis:       rdb,
		subscribers: make(map[string][]Handler),
		ctx:         ctx,
		cancel:      cancel,
		done:        make(chan struct{}),
	}
}

// NodeID 当前实例ID
func (b *Broadcaster) NodeID() string {
	return b.nodeID
}

// Subscribe 订阅 topic
func (b *Broadcaster) Subscribe(topic string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[topic] = append(b.subscribers[topic], handler)
}

// Publish 发布消息，payload 为 nil 时不携带数据
func (b *Broadcaster) Publish(ctx context.Context, topic string, payload any) error {
	msg := &Message{
		Topic:     topic,
		NodeID:    b.nodeID,
		Timestamp: time.Now(),
	}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		msg.Payload = raw
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	return b.redis.Publish(ctx, b.channel, data).Err()
}

// Start 订阅频道并开始分发
func (b *Broadcaster) Start() error {
	b.pubsub = b.redis.Subscribe(b.ctx, b.channel)

	// 等待订阅确认
	if _, err := b.pubsub.Receive(b.ctx); err != nil {
		return fmt.Errorf("subscribe channel %s: %w", b.channel, err)
	}

	go b.listen()

	logger.Info("广播器已启动",
		zap.String("channel", b.channel),
		zap.String("node_id", b.nodeID),
	)
	return nil
}

func (b *Broadcaster) listen() {
	defer close(b.done)
	ch := b.pubsub.Channel()

	for {
		select {
		case <-b.ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			b.handleMessage(msg.Payload)
		}
	}
}

// handleMessage 按 topic 分发，处理器按订阅顺序同步执行
func (b *Broadcaster) handleMessage(payload string) {
	var msg Message
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		logger.Error("解析广播消息失败", zap.Error(err))
		return
	}
	if msg.NodeID == b.nodeID {
		return
	}

	b.mu.RLock()
	handlers := b.subscribers[msg.Topic]
	b.mu.RUnlock()

	for _, handler := range handlers {
		handler(&msg)
	}
}

// Stop 停止广播器
func (b *Broadcaster) Stop() error {
	b.cancel()
	if b.pubsub == nil {
		return nil
	}
	err := b.pubsub.Close()
	<-b.done
	return err
}
