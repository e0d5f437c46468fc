// Package events 迁移过程事件（基于watermill gochannel）
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType 事件类型，同时作为watermill topic
type EventType string

const (
	// ScheduleMigrated 单条调度迁移成功
	ScheduleMigrated EventType = "schedule.migrated"
	// ScheduleRetireFailed 新调度已创建，旧调度退役失败
	ScheduleRetireFailed EventType = "schedule.retire_failed"
	// ChunkCommitted 一个批次全部写入成功
	ChunkCommitted EventType = "chunk.committed"
)

// AllTypes 全部事件类型
func AllTypes() []EventType {
	return []EventType{ScheduleMigrated, ScheduleRetireFailed, ChunkCommitted}
}

// Event 迁移事件
type Event struct {
	ID            string    `json:"id"`
	Type          EventType `json:"type"`
	RunID         string    `json:"run_id,omitempty"`
	ScheduleName  string    `json:"schedule_name,omitempty"`
	QualifiedName string    `json:"qualified_name,omitempty"`
	Chunk         int       `json:"chunk,omitempty"`
	Count         int       `json:"count,omitempty"`
	Error         string    `json:"error,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewEvent 创建事件
func NewEvent(eventType EventType) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
	}
}

// Migrated 构造迁移成功事件
func Migrated(scheduleName, qualifiedName string) *Event {
	e := NewEvent(ScheduleMigrated)
	e.ScheduleName = scheduleName
	e.QualifiedName = qualifiedName
	return e
}

// RetireFailed 构造退役失败事件
func RetireFailed(scheduleName, qualifiedName string, err error) *Event {
	e := NewEvent(ScheduleRetireFailed)
	e.ScheduleName = scheduleName
	e.QualifiedName = qualifiedName
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// Committed 构造批次提交事件
func Committed(chunk, count int) *Event {
	e := NewEvent(ChunkCommitted)
	e.Chunk = chunk
	e.Count = count
	return e
}

func (e *Event) marshal() ([]byte, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("序列化事件失败: %w", err)
	}
	return payload, nil
}

// Publisher 事件发布者
type Publisher interface {
	Publish(ctx context.Context, event *Event) error
}

// Discard 丢弃所有事件
var Discard Publisher = discard{}

type discard struct{}

func (discard) Publish(context.Context, *Event) error { return nil }
