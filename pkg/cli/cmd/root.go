package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/LENAX/schedule-migrator/pkg/config"
	"github.com/LENAX/schedule-migrator/pkg/logx"
)

var (
	// 全局变量
	configPath string
	outputJSON bool
	logLevel   string
)

// rootCmd 根命令
var rootCmd = &cobra.Command{
	Use:   "schedule-migrator",
	Short: "Schedule Migrator - Data Flow调度迁移工具",
	Long: `Schedule Migrator 把旧调度器中的任务调度一次性迁移到新的调度格式。

迁移流程：
  - 抽取：分页读取旧调度器中的全部Job
  - 补全：合并应用环境变量、任务定义与命令行参数
  - 写入：按批次创建新调度并删除旧调度

使用示例：
  # 预览待迁移的调度
  schedule-migrator list -c ./configs/migrator.yaml

  # 只构建请求，不修改任何调度
  schedule-migrator migrate --dry-run

  # 执行迁移，每批20条
  schedule-migrator migrate --chunk-size 20`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute 执行根命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// 全局参数
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "配置文件路径")
	rootCmd.PersistentFlags().BoolVarP(&outputJSON, "json", "j", false, "使用JSON格式输出")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "日志级别，覆盖配置文件中的log_level")

	// 添加子命令
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(versionCmd)
}

// defaultConfigPaths 未指定 --config 时依次尝试的路径
var defaultConfigPaths = []string{
	"./configs/migrator.yaml",
	"./config/migrator.yaml",
	"./migrator.yaml",
}

// loadConfig 加载配置文件
func loadConfig() (*config.MigratorConfig, error) {
	path := configPath
	if path == "" {
		for _, p := range defaultConfigPaths {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
		if path == "" {
			return nil, fmt.Errorf("未找到配置文件，请使用 --config 指定")
		}
	}

	cfg, err := config.LoadMigratorConfig(path)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Migrator.General.LogLevel = logLevel
	}
	return cfg, nil
}

// newLogger 按配置创建日志器，日志输出到stderr，stdout只用于结果
func newLogger(cfg *config.MigratorConfig) (logx.Logger, io.Closer, error) {
	return logx.New(logx.Config{
		Level:   cfg.Migrator.General.LogLevel,
		Console: true,
		NoColor: cfg.Migrator.General.NoColor,
		File:    cfg.Migrator.General.LogFile,
	})
}
