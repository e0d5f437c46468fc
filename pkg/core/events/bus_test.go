package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LENAX/schedule-migrator/pkg/logx"
)

func TestBus_CollectorReceivesEvents(t *testing.T) {
	ctx := context.Background()
	bus := NewBus("run-1", logx.Nop())
	defer bus.Close()

	collector, err := NewCollector(ctx, bus)
	require.NoError(t, err)

	require.NoError(t, bus.Publish(ctx, Migrated("a", "a-scdf_task")))
	require.NoError(t, bus.Publish(ctx, RetireFailed("a", "a-scdf_task", errors.New("boom"))))
	require.NoError(t, bus.Publish(ctx, Committed(0, 1)))

	// 发布会阻塞到订阅者确认，此处无需等待
	summary := collector.Summary()
	assert.Equal(t, []string{"a-scdf_task"}, summary.Migrated)
	assert.Equal(t, map[string]string{"a": "boom"}, summary.RetireFailed)
	assert.Equal(t, 1, summary.Chunks)
	assert.Equal(t, []string{"a"}, summary.RetireFailedNames())
}

func TestBus_FillsRunID(t *testing.T) {
	ctx := context.Background()
	bus := NewBus("run-42", logx.Nop())
	defer bus.Close()

	got := make(chan *Event, 1)
	require.NoError(t, bus.Subscribe(ctx, ChunkCommitted, func(e *Event) error {
		got <- e
		return nil
	}))

	require.NoError(t, bus.Publish(ctx, Committed(3, 10)))
	e := <-got
	assert.Equal(t, "run-42", e.RunID)
	assert.Equal(t, 3, e.Chunk)
	assert.Equal(t, 10, e.Count)
	assert.NotEmpty(t, e.ID)
}

func TestBus_HandlerErrorDoesNotBlock(t *testing.T) {
	ctx := context.Background()
	bus := NewBus("run", logx.Nop())
	defer bus.Close()

	calls := 0
	require.NoError(t, bus.Subscribe(ctx, ScheduleMigrated, func(*Event) error {
		calls++
		return errors.New("handler failed")
	}))

	require.NoError(t, bus.Publish(ctx, Migrated("x", "y")))
	require.NoError(t, bus.Publish(ctx, Migrated("x2", "y2")))
	assert.Equal(t, 2, calls)
}

func TestBus_PublishAfterClose(t *testing.T) {
	bus := NewBus("run", logx.Nop())
	require.NoError(t, bus.Close())
	require.NoError(t, bus.Close())
	assert.Error(t, bus.Publish(context.Background(), Migrated("a", "b")))
}

func TestDiscard(t *testing.T) {
	assert.NoError(t, Discard.Publish(context.Background(), Migrated("a", "b")))
}
