// Package app 按配置组装迁移所需的全部组件
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	internalstorage "github.com/LENAX/schedule-migrator/internal/storage"
	"github.com/LENAX/schedule-migrator/pkg/backend/cloudfoundry"
	"github.com/LENAX/schedule-migrator/pkg/backend/kubernetes"
	"github.com/LENAX/schedule-migrator/pkg/config"
	"github.com/LENAX/schedule-migrator/pkg/core/events"
	"github.com/LENAX/schedule-migrator/pkg/core/migrate"
	"github.com/LENAX/schedule-migrator/pkg/core/resource"
	"github.com/LENAX/schedule-migrator/pkg/core/schedule"
	"github.com/LENAX/schedule-migrator/pkg/core/tagger"
	"github.com/LENAX/schedule-migrator/pkg/logx"
)

// platformBackend 同时提供三种后端能力的平台客户端
type platformBackend interface {
	schedule.LegacyScheduler
	schedule.TargetScheduler
	schedule.AppRegistry
}

// MigratorBuilder 迁移器构建器（链式调用）
type MigratorBuilder struct {
	cfg       *config.MigratorConfig
	log       logx.Logger
	legacy    schedule.LegacyScheduler
	target    schedule.TargetScheduler
	registry  schedule.AppRegistry
	finder    schedule.TaskDefinitionFinder
	dryRun    *bool
	chunkSize int
	runID     string
	err       error
}

// NewMigratorBuilder 创建构建器（入口）
func NewMigratorBuilder(cfg *config.MigratorConfig) *MigratorBuilder {
	b := &MigratorBuilder{cfg: cfg, log: logx.Nop()}
	if cfg == nil {
		b.err = errors.New("config cannot be nil")
	}
	return b
}

// WithLogger 设置日志（链式）
func (b *MigratorBuilder) WithLogger(log logx.Logger) *MigratorBuilder {
	if b.err != nil {
		return b
	}
	b.log = log
	return b
}

// WithBackends 使用指定后端替代按平台创建的客户端（链式）
func (b *MigratorBuilder) WithBackends(legacy schedule.LegacyScheduler, target schedule.TargetScheduler, registry schedule.AppRegistry) *MigratorBuilder {
	if b.err != nil {
		return b
	}
	if legacy == nil || target == nil || registry == nil {
		b.err = errors.New("backends cannot be nil")
		return b
	}
	b.legacy, b.target, b.registry = legacy, target, registry
	return b
}

// WithTaskDefinitions 使用指定的任务定义查询服务，不再打开数据库（链式）
func (b *MigratorBuilder) WithTaskDefinitions(finder schedule.TaskDefinitionFinder) *MigratorBuilder {
	if b.err != nil {
		return b
	}
	if finder == nil {
		b.err = errors.New("task definition finder cannot be nil")
		return b
	}
	b.finder = finder
	return b
}

// WithDryRun 覆盖配置中的dry_run（链式）
func (b *MigratorBuilder) WithDryRun(dryRun bool) *MigratorBuilder {
	if b.err != nil {
		return b
	}
	b.dryRun = &dryRun
	return b
}

// WithChunkSize 覆盖配置中的chunk_size，<=0 时忽略（链式）
func (b *MigratorBuilder) WithChunkSize(size int) *MigratorBuilder {
	if b.err != nil {
		return b
	}
	b.chunkSize = size
	return b
}

// WithRunID 指定运行ID（链式）
func (b *MigratorBuilder) WithRunID(runID string) *MigratorBuilder {
	if b.err != nil {
		return b
	}
	b.runID = runID
	return b
}

// Build 构建迁移器（最终步骤）
func (b *MigratorBuilder) Build(ctx context.Context) (*Migrator, error) {
	if b.err != nil {
		return nil, b.err
	}
	conv := b.cfg.Migrator.Converter

	// 1. 平台后端
	if b.legacy == nil {
		backend, err := b.initBackend()
		if err != nil {
			return nil, fmt.Errorf("init backend failed: %w", err)
		}
		b.legacy, b.target, b.registry = backend, backend, backend
	}

	m := &Migrator{log: b.log}

	// 2. 任务定义存储
	if b.finder == nil {
		db := b.cfg.Migrator.Storage.Database
		repo, err := internalstorage.NewTaskDefinitionRepository(ctx, internalstorage.Options{
			Type:       db.Type,
			DSN:        db.DSN,
			Table:      db.Table,
			InitSchema: db.InitSchema,
		})
		if err != nil {
			return nil, fmt.Errorf("init storage failed: %w", err)
		}
		b.finder = repo
		m.closers = append(m.closers, repo.Close)
	}

	// 3. 事件总线与汇总
	runID := b.runID
	if runID == "" {
		runID = uuid.NewString()
	}
	bus := events.NewBus(runID, b.log)
	m.closers = append(m.closers, bus.Close)
	collector, err := events.NewCollector(ctx, bus)
	if err != nil {
		m.Close()
		return nil, fmt.Errorf("init collector failed: %w", err)
	}

	// 4. 流水线
	dryRun := conv.DryRun
	if b.dryRun != nil {
		dryRun = *b.dryRun
	}
	chunkSize := b.cfg.GetChunkSize()
	if b.chunkSize > 0 {
		chunkSize = b.chunkSize
	}

	m.extractor = migrate.NewExtractor(b.legacy, b.registry, b.log)
	enricher := migrate.NewEnricher(b.registry, b.finder, tagger.New(conv.TaskLauncherPrefix), conv.ServerURI, b.log)
	loader := migrate.NewLoader(b.target, b.legacy, resource.NewResolver(), bus, migrate.LoaderConfig{
		LauncherURI:     conv.LauncherURI,
		SchedulerPrefix: conv.SchedulerPrefix,
		DryRun:          dryRun,
	}, b.log)
	m.pipeline = migrate.NewPipeline(m.extractor, enricher, loader, bus,
		migrate.Options{ChunkSize: chunkSize, RunID: runID}, b.log)
	m.collector = collector
	m.runID = runID
	m.dryRun = dryRun

	b.log.Info("迁移器已就绪",
		logx.String("platform", b.cfg.GetPlatform()),
		logx.String("run_id", runID),
		logx.Int("chunk_size", chunkSize),
		logx.Bool("dry_run", dryRun))
	return m, nil
}

// initBackend 按平台创建客户端
func (b *MigratorBuilder) initBackend() (platformBackend, error) {
	m := b.cfg.Migrator
	switch b.cfg.GetPlatform() {
	case config.PlatformCloudFoundry:
		return cloudfoundry.New(cloudfoundry.Config{
			APIURL:             m.CloudFoundry.APIURL,
			SchedulerURL:       m.CloudFoundry.SchedulerURL,
			Org:                m.CloudFoundry.Org,
			Space:              m.CloudFoundry.Space,
			Token:              m.CloudFoundry.Token,
			LauncherAppName:    m.CloudFoundry.LauncherAppName,
			JavaCommand:        m.CloudFoundry.JavaCommand,
			Timeout:            m.HTTP.Timeout,
			RateLimit:          m.HTTP.RateLimit,
			InsecureSkipVerify: m.HTTP.SkipSSLValidation,
		}, b.log)
	case config.PlatformKubernetes:
		return kubernetes.New(kubernetes.Config{
			APIURL:             m.Kubernetes.APIURL,
			Namespace:          m.Kubernetes.Namespace,
			Token:              m.Kubernetes.Token,
			TokenFile:          m.Kubernetes.TokenFile,
			PageSize:           m.Kubernetes.PageSize,
			ImagePullPolicy:    m.Kubernetes.ImagePullPolicy,
			Timeout:            m.HTTP.Timeout,
			RateLimit:          m.HTTP.RateLimit,
			InsecureSkipVerify: m.HTTP.SkipSSLValidation,
		}, b.log)
	default:
		return nil, fmt.Errorf("unsupported platform: %s", b.cfg.GetPlatform())
	}
}
