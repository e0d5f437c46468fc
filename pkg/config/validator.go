package config

import (
	"fmt"

	"github.com/LENAX/schedule-migrator/pkg/core/resource"
	"github.com/LENAX/schedule-migrator/pkg/storage"
)

// ValidateMigratorConfig 校验配置合法性
func ValidateMigratorConfig(cfg *MigratorConfig) error {
	if cfg == nil {
		return fmt.Errorf("配置不能为空")
	}
	m := &cfg.Migrator

	// 校验General
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[m.General.LogLevel] {
		return fmt.Errorf("log_level必须是debug/info/warn/error之一")
	}

	// 校验Converter
	if m.Converter.LauncherURI == "" {
		return fmt.Errorf("converter.scheduler_task_launcher_url不能为空")
	}
	launcher, err := resource.NewResolver().Resolve(m.Converter.LauncherURI)
	if err != nil {
		return fmt.Errorf("converter.scheduler_task_launcher_url非法: %w", err)
	}
	if m.Converter.ChunkSize <= 0 {
		return fmt.Errorf("converter.chunk_size必须大于0")
	}

	// 校验Storage.Database
	validDBTypes := map[string]bool{
		"sqlite":     true,
		"sqlite3":    true,
		"postgres":   true,
		"postgresql": true,
		"mysql":      true,
	}
	if !validDBTypes[m.Storage.Database.Type] {
		return fmt.Errorf("database.type必须是sqlite/postgres/mysql之一")
	}
	if m.Storage.Database.DSN == "" {
		return fmt.Errorf("database.dsn不能为空")
	}
	if err := storage.ValidateTableName(m.Storage.Database.Table); err != nil {
		return fmt.Errorf("database.table: %w", err)
	}

	// 校验HTTP
	if m.HTTP.Timeout <= 0 {
		return fmt.Errorf("http.timeout必须大于0")
	}

	// 校验平台
	switch m.General.Platform {
	case PlatformCloudFoundry:
		cf := m.CloudFoundry
		if cf.APIURL == "" {
			return fmt.Errorf("cloudfoundry.api_url不能为空")
		}
		if cf.SchedulerURL == "" {
			return fmt.Errorf("cloudfoundry.scheduler_url不能为空")
		}
		if cf.Org == "" || cf.Space == "" {
			return fmt.Errorf("cloudfoundry.org和cloudfoundry.space不能为空")
		}
	case PlatformKubernetes:
		if m.Kubernetes.APIURL == "" {
			return fmt.Errorf("kubernetes.api_url不能为空")
		}
		if m.Kubernetes.Namespace == "" {
			return fmt.Errorf("kubernetes.namespace不能为空")
		}
		// CronJob只能运行镜像
		if launcher.Scheme != "docker" {
			return fmt.Errorf("kubernetes平台的converter.scheduler_task_launcher_url必须是docker:镜像，实际为%s", launcher.Scheme)
		}
	default:
		return fmt.Errorf("general.platform必须是cloudfoundry/kubernetes之一")
	}

	return nil
}
