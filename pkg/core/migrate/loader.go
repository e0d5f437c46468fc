package migrate

import (
	"context"
	"fmt"
	"sync"

	"github.com/LENAX/schedule-migrator/pkg/core/events"
	"github.com/LENAX/schedule-migrator/pkg/core/schedule"
	"github.com/LENAX/schedule-migrator/pkg/core/tagger"
	"github.com/LENAX/schedule-migrator/pkg/logx"
)

// LoaderConfig Loader配置
type LoaderConfig struct {
	LauncherURI     string // 任务启动器制品坐标
	SchedulerPrefix string // 新调度名称前缀，如 scdf_
	DryRun          bool   // 只构建请求，不调用后端
}

// Loader 提交新调度并退役旧调度
type Loader struct {
	target   schedule.TargetScheduler
	legacy   schedule.LegacyScheduler
	resolver schedule.ResourceResolver
	events   events.Publisher
	cfg      LoaderConfig
	log      logx.Logger

	resourceOnce sync.Once
	resource     *schedule.Resource
	resourceErr  error

	retireFailures []string
}

// NewLoader 创建Loader，publisher为nil时丢弃事件
func NewLoader(target schedule.TargetScheduler, legacy schedule.LegacyScheduler, resolver schedule.ResourceResolver,
	publisher events.Publisher, cfg LoaderConfig, log logx.Logger) *Loader {
	if publisher == nil {
		publisher = events.Discard
	}
	return &Loader{
		target:   target,
		legacy:   legacy,
		resolver: resolver,
		events:   publisher,
		cfg:      cfg,
		log:      log.With(logx.String("comp", "loader")),
	}
}

// QualifiedName 返回迁移后的调度名称 <schedule>-<prefix><task>
func (l *Loader) QualifiedName(record *schedule.Record) string {
	return record.ScheduleName + "-" + l.cfg.SchedulerPrefix + record.TaskDefinitionName
}

// BuildRequest 根据记录构建调度请求
func (l *Loader) BuildRequest(record *schedule.Record) (*schedule.ScheduleRequest, error) {
	resource, err := l.launcherResource()
	if err != nil {
		return nil, err
	}

	name := l.QualifiedName(record)
	appProperties := make(map[string]string, len(record.AppProperties))
	for k, v := range record.AppProperties {
		appProperties[k] = v
	}
	args := append([]string(nil), record.CommandLineArgs...)
	if args == nil {
		args = []string{}
	}

	return &schedule.ScheduleRequest{
		AppDefinition:        schedule.AppDefinition{Name: name, Properties: appProperties},
		SchedulerProperties:  tagger.ExtractAndQualifySchedulerProperties(record.ScheduleProperties),
		DeploymentProperties: map[string]string{},
		CommandLineArgs:      args,
		ScheduleName:         name,
		Resource:             resource,
	}, nil
}

// Load 提交新调度，成功后按原名称退役旧调度
// 退役失败时记录日志并发布事件，新调度保留，返回RetirementError中止本次运行
func (l *Loader) Load(ctx context.Context, record *schedule.Record) error {
	req, err := l.BuildRequest(record)
	if err != nil {
		return err
	}

	if l.cfg.DryRun {
		l.log.Info("Dry run, schedule not submitted",
			logx.String("schedule", record.ScheduleName),
			logx.String("new_schedule", req.ScheduleName),
			logx.String("cron", req.CronExpression()),
			logx.Strings("args", req.CommandLineArgs))
		return nil
	}

	if err := l.target.Schedule(ctx, req); err != nil {
		return &schedule.SubmissionError{ScheduleName: req.ScheduleName, Err: err}
	}

	if err := l.legacy.Unschedule(ctx, record.ScheduleName); err != nil {
		retireErr := &schedule.RetirementError{ScheduleName: record.ScheduleName, Err: err}
		l.log.Error("旧调度退役失败，新旧调度同时存在",
			logx.String("schedule", record.ScheduleName),
			logx.String("new_schedule", req.ScheduleName),
			logx.Err(retireErr))
		l.retireFailures = append(l.retireFailures, record.ScheduleName)
		if pubErr := l.events.Publish(ctx, events.RetireFailed(record.ScheduleName, req.ScheduleName, retireErr)); pubErr != nil {
			l.log.Warn("发布事件失败", logx.Err(pubErr))
		}
		return retireErr
	}

	l.log.Info(fmt.Sprintf("Migrated Schedule %s", req.ScheduleName), logx.String("schedule", record.ScheduleName))
	if err := l.events.Publish(ctx, events.Migrated(record.ScheduleName, req.ScheduleName)); err != nil {
		l.log.Warn("发布事件失败", logx.Err(err))
	}
	return nil
}

// RetireFailures 返回退役失败的旧调度名称
func (l *Loader) RetireFailures() []string {
	return append([]string(nil), l.retireFailures...)
}

// launcherResource 解析一次启动器制品并缓存结果
func (l *Loader) launcherResource() (*schedule.Resource, error) {
	l.resourceOnce.Do(func() {
		res, err := l.resolver.Resolve(l.cfg.LauncherURI)
		if err != nil {
			l.resourceErr = fmt.Errorf("解析任务启动器制品失败: %w", err)
			return
		}
		l.resource = res
	})
	return l.resource, l.resourceErr
}

var _ schedule.ScheduleSink = (*Loader)(nil)
