package events

import (
	"context"
	"sort"
	"sync"
)

// Summary 事件汇总
type Summary struct {
	Migrated     []string          `json:"migrated"`
	RetireFailed map[string]string `json:"retire_failed"`
	Chunks       int               `json:"chunks"`
}

// Collector 订阅全部迁移事件并汇总
type Collector struct {
	mu      sync.Mutex
	summary Summary
}

// NewCollector 创建汇总器并订阅全部事件类型
func NewCollector(ctx context.Context, bus *Bus) (*Collector, error) {
	c := &Collector{summary: Summary{RetireFailed: make(map[string]string)}}
	for _, t := range AllTypes() {
		if err := bus.Subscribe(ctx, t, c.handle); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Collector) handle(event *Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch event.Type {
	case ScheduleMigrated:
		c.summary.Migrated = append(c.summary.Migrated, event.QualifiedName)
	case ScheduleRetireFailed:
		c.summary.RetireFailed[event.ScheduleName] = event.Error
	case ChunkCommitted:
		c.summary.Chunks++
	}
	return nil
}

// Summary 返回汇总快照
func (c *Collector) Summary() Summary {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := Summary{
		Migrated:     append([]string(nil), c.summary.Migrated...),
		RetireFailed: make(map[string]string, len(c.summary.RetireFailed)),
		Chunks:       c.summary.Chunks,
	}
	for k, v := range c.summary.RetireFailed {
		out.RetireFailed[k] = v
	}
	return out
}

// RetireFailedNames 返回退役失败的调度名称（排序）
func (s Summary) RetireFailedNames() []string {
	names := make([]string, 0, len(s.RetireFailed))
	for k := range s.RetireFailed {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
