package cmd

import (
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/LENAX/schedule-migrator/internal/app"
	"github.com/LENAX/schedule-migrator/pkg/cli/output"
)

var (
	dryRun    bool
	chunkSize int
)

// migrateCmd 执行迁移
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "执行调度迁移",
	Long: `抽取旧调度器中的全部调度，按批次补全并写入新调度，成功后删除旧调度。

任意一条记录失败都会中止剩余批次，已完成的批次不会回滚。
旧调度删除失败同样中止迁移，已创建的新调度保留，失败的旧调度会列出。`,
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

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		builder := app.NewMigratorBuilder(cfg).WithLogger(log).WithChunkSize(chunkSize)
		if cmd.Flags().Changed("dry-run") {
			builder = builder.WithDryRun(dryRun)
		}
		m, err := builder.Build(ctx)
		if err != nil {
			output.Error("初始化失败: %v", err)
			return err
		}
		defer m.Close()

		result, runErr := m.Run(ctx)
		if outputJSON {
			if err := output.PrintJSON(result); err != nil {
				return err
			}
		} else {
			printResult(result)
		}

		if runErr != nil {
			output.Error("迁移失败: %v", runErr)
			return runErr
		}
		return nil
	},
}

// printResult 输出迁移结果
func printResult(result *app.Result) {
	report := result.Report
	if result.DryRun {
		output.Info("Dry run：未创建或删除任何调度")
	}
	output.Info("Run ID: %s", report.RunID)

	if len(result.Summary.Migrated) > 0 {
		table := output.NewTable([]string{"#", "NEW SCHEDULE"})
		for i, name := range result.Summary.Migrated {
			table.AddRow([]string{strconv.Itoa(i + 1), name})
		}
		table.Render()
	}

	for _, name := range result.Summary.RetireFailedNames() {
		output.Warning("旧调度 %s 删除失败: %s", name, result.Summary.RetireFailed[name])
	}

	output.Success("抽取 %d 个，迁移 %d 个，完成 %d 个批次，耗时 %s",
		report.Extracted, report.Migrated, report.Chunks, report.Duration.Round(time.Millisecond))
}

func init() {
	migrateCmd.Flags().BoolVar(&dryRun, "dry-run", false, "只构建请求，不修改任何调度")
	migrateCmd.Flags().IntVar(&chunkSize, "chunk-size", 0, "每批处理的调度数量，覆盖配置文件中的chunk_size")
}
