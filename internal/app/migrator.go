package app

import (
	"context"
	"errors"

	"github.com/LENAX/schedule-migrator/pkg/core/events"
	"github.com/LENAX/schedule-migrator/pkg/core/migrate"
	"github.com/LENAX/schedule-migrator/pkg/core/schedule"
	"github.com/LENAX/schedule-migrator/pkg/logx"
)

// Result 一次迁移的结果
type Result struct {
	Report  *migrate.Report `json:"report"`
	Summary events.Summary  `json:"summary"`
	DryRun  bool            `json:"dry_run"`
}

// Migrator 组装完成的迁移器
type Migrator struct {
	extractor *migrate.Extractor
	pipeline  *migrate.Pipeline
	collector *events.Collector
	closers   []func() error
	runID     string
	dryRun    bool
	log       logx.Logger
}

// RunID 返回本次运行ID
func (m *Migrator) RunID() string {
	return m.runID
}

// Run 执行迁移，出错时仍返回已完成部分的结果
func (m *Migrator) Run(ctx context.Context) (*Result, error) {
	report, err := m.pipeline.Run(ctx)
	return &Result{
		Report:  report,
		Summary: m.collector.Summary(),
		DryRun:  m.dryRun,
	}, err
}

// List 只做抽取，返回待迁移的记录
func (m *Migrator) List(ctx context.Context) ([]*schedule.Record, error) {
	return m.extractor.ListAll(ctx)
}

// Close 按创建的逆序释放资源
func (m *Migrator) Close() error {
	var errs []error
	for i := len(m.closers) - 1; i >= 0; i-- {
		if err := m.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	m.closers = nil
	return errors.Join(errs...)
}
