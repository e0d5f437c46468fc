package cloudfoundry

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/LENAX/schedule-migrator/pkg/core/schedule"
	"github.com/LENAX/schedule-migrator/pkg/logx"
)

const (
	jarLauncher = "org.springframework.boot.loader.JarLauncher"
	// cronExpressionType Scheduler API的Cron表达式类型
	cronExpressionType = "cron_expression"
)

// Schedule 在启动器应用上创建Job并挂载Cron调度
func (c *Client) Schedule(ctx context.Context, req *schedule.ScheduleRequest) error {
	launcher := c.cfg.LauncherAppName
	if launcher == "" {
		launcher = req.Resource.Name()
	}
	if launcher == "" {
		return fmt.Errorf("无法确定任务启动器应用名称")
	}
	appGUID, ok, err := c.appGUID(ctx, launcher)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("任务启动器应用 %s 未部署", launcher)
	}

	command, err := BuildCommand(c.cfg.JavaCommand, req.AppDefinition.Properties, req.CommandLineArgs)
	if err != nil {
		return err
	}

	var created job
	body := createJobRequest{Name: req.ScheduleName, Command: command}
	if err := c.scheduler.Post(ctx, "/jobs", urlValues("app_guid", appGUID), body, &created); err != nil {
		return fmt.Errorf("创建Job %s 失败: %w", req.ScheduleName, err)
	}

	expression := req.CronExpression()
	if expression == "" {
		c.log.Warn("调度请求没有Cron表达式，只创建Job", logx.String("job", req.ScheduleName))
		return nil
	}
	sched := jobSchedule{Enabled: true, Expression: expression, ExpressionType: cronExpressionType}
	if err := c.scheduler.Post(ctx, "/jobs/"+created.GUID+"/schedules", nil, sched, nil); err != nil {
		// Job已创建但没有调度，需人工清理
		c.log.Error("Job已创建但挂载调度失败", logx.String("job", req.ScheduleName),
			logx.String("guid", created.GUID), logx.Err(err))
		return fmt.Errorf("创建Job %s 的调度失败，遗留未挂载调度的Job guid=%s: %w", req.ScheduleName, created.GUID, err)
	}
	c.log.Debug("已创建Job", logx.String("job", req.ScheduleName), logx.String("guid", created.GUID))
	return nil
}

// BuildCommand 构建启动器Job命令
// SPRING_APPLICATION_JSON='<props>' <java> org.springframework.boot.loader.JarLauncher <args>
func BuildCommand(javaCommand string, appProperties map[string]string, args []string) (string, error) {
	var b strings.Builder
	if len(appProperties) > 0 {
		props, err := json.Marshal(appProperties)
		if err != nil {
			return "", fmt.Errorf("序列化应用属性失败: %w", err)
		}
		b.WriteString("SPRING_APPLICATION_JSON=")
		b.WriteString(shellquote.Join(string(props)))
		b.WriteString(" ")
	}
	b.WriteString(strings.TrimSpace(javaCommand))
	b.WriteString(" ")
	b.WriteString(jarLauncher)
	if len(args) > 0 {
		b.WriteString(" ")
		b.WriteString(shellquote.Join(args...))
	}
	return b.String(), nil
}
