package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/LENAX/schedule-migrator/pkg/logx"
)

// Handler 事件处理函数
type Handler func(event *Event) error

// Bus 进程内事件总线
// 发布会阻塞到所有订阅者确认，Run返回时订阅者已处理完全部事件
type Bus struct {
	pubsub *gochannel.GoChannel
	log    logx.Logger
	runID  string

	wg     sync.WaitGroup
	mu     sync.Mutex
	closed bool
}

// NewBus 创建事件总线，runID会写入每个事件
func NewBus(runID string, log logx.Logger) *Bus {
	log = log.With(logx.String("comp", "events"))
	pubsub := gochannel.NewGoChannel(
		gochannel.Config{
			Persistent:                     false,
			BlockPublishUntilSubscriberAck: true,
		},
		NewWatermillLogger(log),
	)
	return &Bus{pubsub: pubsub, log: log, runID: runID}
}

// RunID 返回本次运行ID
func (b *Bus) RunID() string {
	return b.runID
}

// Publish 发布事件
func (b *Bus) Publish(ctx context.Context, event *Event) error {
	if event == nil {
		return nil
	}
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return fmt.Errorf("事件总线已关闭")
	}

	if event.ID == "" {
		event.ID = watermill.NewUUID()
	}
	if event.RunID == "" {
		event.RunID = b.runID
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	payload, err := event.marshal()
	if err != nil {
		return err
	}

	msg := message.NewMessage(event.ID, payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("event_type", string(event.Type))
	msg.Metadata.Set("run_id", event.RunID)
	msg.Metadata.Set("schedule_name", event.ScheduleName)

	if err := b.pubsub.Publish(string(event.Type), msg); err != nil {
		return fmt.Errorf("发布事件失败: %w", err)
	}
	return nil
}

// Subscribe 订阅指定类型的事件，handler在独立goroutine中串行执行
// handler返回的错误只记录日志，消息总是被确认
func (b *Bus) Subscribe(ctx context.Context, eventType EventType, handler Handler) error {
	messages, err := b.pubsub.Subscribe(ctx, string(eventType))
	if err != nil {
		return fmt.Errorf("订阅事件 %s 失败: %w", eventType, err)
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for msg := range messages {
			var event Event
			if err := json.Unmarshal(msg.Payload, &event); err != nil {
				b.log.Warn("丢弃无法解析的事件", logx.String("topic", string(eventType)), logx.Err(err))
				msg.Ack()
				continue
			}
			if err := handler(&event); err != nil {
				b.log.Warn("事件处理失败", logx.String("topic", string(eventType)), logx.Err(err))
			}
			msg.Ack()
		}
	}()
	return nil
}

// Close 关闭总线并等待订阅goroutine退出
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	err := b.pubsub.Close()
	b.wg.Wait()
	return err
}

var _ Publisher = (*Bus)(nil)

// ========== watermill日志适配 ==========

type watermillLogger struct {
	log logx.Logger
}

// NewWatermillLogger 把logx适配为watermill.LoggerAdapter
func NewWatermillLogger(log logx.Logger) watermill.LoggerAdapter {
	return &watermillLogger{log: log}
}

func (w *watermillLogger) Error(msg string, err error, fields watermill.LogFields) {
	w.log.Error(msg, append(toFields(fields), logx.Err(err))...)
}

func (w *watermillLogger) Info(msg string, fields watermill.LogFields) {
	// gochannel的info日志过于琐碎，降为debug
	w.log.Debug(msg, toFields(fields)...)
}

func (w *watermillLogger) Debug(msg string, fields watermill.LogFields) {
	w.log.Debug(msg, toFields(fields)...)
}

func (w *watermillLogger) Trace(string, watermill.LogFields) {}

func (w *watermillLogger) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &watermillLogger{log: w.log.With(toFields(fields)...)}
}

func toFields(fields watermill.LogFields) []logx.Field {
	out := make([]logx.Field, 0, len(fields))
	for k, v := range fields {
		out = append(out, logx.Any(k, v))
	}
	return out
}
