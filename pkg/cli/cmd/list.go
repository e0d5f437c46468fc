package cmd

import (
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/LENAX/schedule-migrator/internal/app"
	"github.com/LENAX/schedule-migrator/pkg/cli/output"
	"github.com/LENAX/schedule-migrator/pkg/core/schedule"
)

// listCmd 列出待迁移的调度
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "列出旧调度器中待迁移的调度",
	Long:  `只执行抽取阶段，列出全部调度及其下一次触发时间，不修改任何调度。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			output.Error("加载配置失败: %v", err)
			return err
		}
		log, closer, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer closer.Close()

		ctx := cmd.Context()
		m, err := app.NewMigratorBuilder(cfg).WithLogger(log).Build(ctx)
		if err != nil {
			output.Error("初始化失败: %v", err)
			return err
		}
		defer m.Close()

		records, err := m.List(ctx)
		if err != nil {
			output.Error("查询失败: %v", err)
			return err
		}

		if outputJSON {
			return output.PrintJSON(records)
		}

		if len(records) == 0 {
			output.Info("暂无待迁移的调度")
			return nil
		}

		table := output.NewTable([]string{"SCHEDULE", "TASK", "CRON", "NEXT RUN", "ARGS"})
		now := time.Now()
		for _, r := range records {
			table.AddRow([]string{
				r.ScheduleName,
				r.TaskDefinitionName,
				formatCron(r),
				nextRun(r, now),
				strings.Join(r.CommandLineArgs, " "),
			})
		}
		table.Render()
		output.Info("共 %d 个调度", table.Len())
		return nil
	},
}

func formatCron(r *schedule.Record) string {
	if expr := r.CronExpression(); expr != "" {
		return expr
	}
	return "-"
}

// nextRun 计算下一次触发时间，表达式为空或非法时返回 "-"
func nextRun(r *schedule.Record, now time.Time) string {
	expr := r.CronExpression()
	if expr == "" {
		return "-"
	}
	sched, err := cron.ParseStandard(expr)
	if err != nil {
		return "-"
	}
	return sched.Next(now).Format("2006-01-02 15:04:05")
}
