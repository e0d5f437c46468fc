package migrate

import (
	"context"
	"fmt"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/robfig/cron/v3"

	"github.com/LENAX/schedule-migrator/pkg/core/schedule"
	"github.com/LENAX/schedule-migrator/pkg/logx"
)

// JarLauncherMarker 旧命令中启动类的标记，之后的内容为应用参数
const JarLauncherMarker = "org.springframework.boot.loader.JarLauncher"

// Extractor 从旧调度后端读取全部调度记录
type Extractor struct {
	scheduler schedule.LegacyScheduler
	registry  schedule.AppRegistry
	log       logx.Logger
	parser    cron.Parser

	// appIndex 应用ID到名称的映射，首次使用时构建，之后复用
	appIndex map[string]string
}

// NewExtractor 创建Extractor
func NewExtractor(scheduler schedule.LegacyScheduler, registry schedule.AppRegistry, log logx.Logger) *Extractor {
	return &Extractor{
		scheduler: scheduler,
		registry:  registry,
		log:       log.With(logx.String("comp", "extractor")),
		parser:    cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
	}
}

// ListAll 分页读取全部Job并转换为调度记录
func (e *Extractor) ListAll(ctx context.Context) ([]*schedule.Record, error) {
	first, err := e.scheduler.ListJobs(ctx, 0, false)
	if err != nil {
		return nil, fmt.Errorf("查询Job分页信息失败: %w", err)
	}
	if first == nil {
		return nil, schedule.ErrBackendUnavailable
	}

	records := make([]*schedule.Record, 0)
	for page := 1; page <= first.TotalPages; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		jobs, err := e.scheduler.ListJobs(ctx, page, true)
		if err != nil {
			return nil, fmt.Errorf("查询第%d页Job失败: %w", page, err)
		}
		if jobs == nil {
			return nil, schedule.ErrBackendUnavailable
		}
		for _, job := range jobs.Resources {
			record, err := e.toRecord(ctx, job)
			if err != nil {
				return nil, err
			}
			if record != nil {
				records = append(records, record)
			}
		}
	}

	e.log.Info("Extracted schedules", logx.Int("count", len(records)), logx.Int("pages", first.TotalPages))
	return records, nil
}

// toRecord 把一个Job转换为调度记录，所属应用不存在时返回nil
func (e *Extractor) toRecord(ctx context.Context, job schedule.Job) (*schedule.Record, error) {
	appName, ok, err := e.appName(ctx, job.ApplicationID)
	if err != nil {
		return nil, err
	}
	if !ok {
		e.log.Debug("跳过没有所属应用的Job", logx.String("job", job.Name), logx.String("app_id", job.ApplicationID))
		return nil, nil
	}

	record := schedule.NewRecord(job.Name, appName)
	record.ApplicationID = job.ApplicationID

	if len(job.JobSchedules) > 0 {
		expression := job.JobSchedules[0].Expression
		if _, err := e.parser.Parse(expression); err != nil {
			e.log.Warn("Cron表达式无法解析，原样迁移",
				logx.String("schedule", job.Name), logx.String("expression", expression), logx.Err(err))
		}
		record.ScheduleProperties[schedule.CronExpressionKey] = expression
	} else {
		e.log.Warn("Job没有关联调度", logx.String("schedule", job.Name))
	}

	args, err := ParseCommandArgs(job.Command)
	if err != nil {
		return nil, &schedule.ArgumentParseError{ScheduleName: job.Name, Command: job.Command, Err: err}
	}
	record.CommandLineArgs = args
	return record, nil
}

// appName 通过缓存的应用列表查询应用名称
func (e *Extractor) appName(ctx context.Context, appID string) (string, bool, error) {
	if e.appIndex == nil {
		apps, err := e.registry.ListApplications(ctx)
		if err != nil {
			return "", false, fmt.Errorf("查询应用列表失败: %w", err)
		}
		index := make(map[string]string, len(apps))
		for _, app := range apps {
			index[app.ID] = app.Name
		}
		e.appIndex = index
	}
	name, ok := e.appIndex[appID]
	return name, ok, nil
}

// ParseCommandArgs 取出启动类标记之后的部分并按shell规则拆分
// 没有标记时整条命令都视为参数
func ParseCommandArgs(command string) ([]string, error) {
	suffix := command
	if idx := strings.Index(command, JarLauncherMarker); idx >= 0 {
		suffix = command[idx+len(JarLauncherMarker):]
	}
	if strings.TrimSpace(suffix) == "" {
		return []string{}, nil
	}
	args, err := shellquote.Split(suffix)
	if err != nil {
		return nil, err
	}
	if args == nil {
		args = []string{}
	}
	return args, nil
}

var _ schedule.ScheduleSource = (*Extractor)(nil)
