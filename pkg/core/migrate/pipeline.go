// Package migrate 调度迁移流水线：抽取、补全、写入
package migrate

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/LENAX/schedule-migrator/pkg/core/events"
	"github.com/LENAX/schedule-migrator/pkg/core/schedule"
	"github.com/LENAX/schedule-migrator/pkg/logx"
)

// DefaultChunkSize 默认批次大小
const DefaultChunkSize = 10

// Options 流水线选项
type Options struct {
	ChunkSize int
	RunID     string // 为空时自动生成
}

// Report 一次运行的结果，出错时也会返回已完成部分
type Report struct {
	RunID          string        `json:"run_id"`
	Extracted      int           `json:"extracted"`
	Migrated       int           `json:"migrated"`
	RetireFailures []string      `json:"retire_failures,omitempty"`
	Chunks         int           `json:"chunks"`
	Duration       time.Duration `json:"duration"`
}

// retireReporter 可选接口，Sink报告退役失败的调度
type retireReporter interface {
	RetireFailures() []string
}

// Pipeline 按批次顺序驱动 抽取 -> 补全 -> 写入
type Pipeline struct {
	source   schedule.ScheduleSource
	enricher schedule.ScheduleEnricher
	sink     schedule.ScheduleSink
	events   events.Publisher
	opts     Options
	log      logx.Logger
}

// NewPipeline 创建流水线
func NewPipeline(source schedule.ScheduleSource, enricher schedule.ScheduleEnricher, sink schedule.ScheduleSink,
	publisher events.Publisher, opts Options, log logx.Logger) *Pipeline {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	if publisher == nil {
		publisher = events.Discard
	}
	return &Pipeline{
		source:   source,
		enricher: enricher,
		sink:     sink,
		events:   publisher,
		opts:     opts,
		log:      log.With(logx.String("comp", "pipeline"), logx.String("run_id", opts.RunID)),
	}
}

// Run 执行一次完整迁移，任何错误都会中止剩余批次
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	report := &Report{RunID: p.opts.RunID}
	defer func() {
		report.Duration = time.Since(start)
		if rr, ok := p.sink.(retireReporter); ok {
			report.RetireFailures = rr.RetireFailures()
		}
	}()

	records, err := p.source.ListAll(ctx)
	if err != nil {
		return report, fmt.Errorf("抽取调度失败: %w", err)
	}
	report.Extracted = len(records)

	chunks := Partition(records, p.opts.ChunkSize)
	p.log.Info("开始迁移", logx.Int("records", len(records)), logx.Int("chunks", len(chunks)), logx.Int("chunk_size", p.opts.ChunkSize))

	for i, chunk := range chunks {
		if err := p.runChunk(ctx, i, chunk, report); err != nil {
			return report, fmt.Errorf("批次 %d 失败: %w", i, err)
		}
		report.Chunks++
		if err := p.events.Publish(ctx, events.Committed(i, len(chunk))); err != nil {
			p.log.Warn("发布事件失败", logx.Err(err))
		}
	}

	p.log.Info("迁移完成", logx.Int("migrated", report.Migrated), logx.Int("chunks", report.Chunks))
	return report, nil
}

// runChunk 先补全整个批次，再逐条写入
func (p *Pipeline) runChunk(ctx context.Context, index int, chunk []*schedule.Record, report *Report) error {
	enriched := make([]*schedule.Record, 0, len(chunk))
	for _, record := range chunk {
		if err := ctx.Err(); err != nil {
			return err
		}
		out, err := p.enricher.Enrich(ctx, record)
		if err != nil {
			return err
		}
		enriched = append(enriched, out)
	}

	for _, record := range enriched {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.sink.Load(ctx, record); err != nil {
			return err
		}
		report.Migrated++
	}
	p.log.Debug("批次已提交", logx.Int("chunk", index), logx.Int("count", len(chunk)))
	return nil
}

// Partition 把记录按固定大小分组，最后一组可能不足
func Partition(records []*schedule.Record, size int) [][]*schedule.Record {
	if size <= 0 {
		size = DefaultChunkSize
	}
	chunks := make([][]*schedule.Record, 0, (len(records)+size-1)/size)
	for start := 0; start < len(records); start += size {
		end := start + size
		if end > len(records) {
			end = len(records)
		}
		chunks = append(chunks, records[start:end])
	}
	return chunks
}
