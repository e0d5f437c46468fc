package config

import (
	"time"
)

// 默认值
const (
	DefaultLauncherURI     = "maven://org.springframework.cloud:spring-cloud-dataflow-scheduler-task-launcher:2.3.0.BUILD-SNAPSHOT"
	DefaultSchedulerPrefix = "scdf_"
	DefaultLauncherPrefix  = "tasklauncher"
	DefaultServerURI       = "http://localhost:9393"
	DefaultChunkSize       = 10
	DefaultHTTPTimeout     = 30 * time.Second
	DefaultRateLimit       = 10.0
	DefaultK8sPageSize     = 50

	PlatformCloudFoundry = "cloudfoundry"
	PlatformKubernetes   = "kubernetes"
)

// MigratorConfig 迁移工具配置（对外导出）
type MigratorConfig struct {
	Migrator struct {
		General struct {
			LogLevel string `yaml:"log_level"`
			LogFile  string `yaml:"log_file"`
			NoColor  bool   `yaml:"no_color"`
			Platform string `yaml:"platform"`
		} `yaml:"general"`
		Converter struct {
			LauncherURI        string `yaml:"scheduler_task_launcher_url"`
			SchedulerPrefix    string `yaml:"scheduler_prefix"`
			TaskLauncherPrefix string `yaml:"task_launcher_prefix"`
			ServerURI          string `yaml:"dataflow_server_uri"`
			ChunkSize          int    `yaml:"chunk_size"`
			DryRun             bool   `yaml:"dry_run"`
		} `yaml:"converter"`
		Storage struct {
			Database struct {
				Type       string `yaml:"type"`
				DSN        string `yaml:"dsn"`
				Table      string `yaml:"table"`
				InitSchema bool   `yaml:"init_schema"`
			} `yaml:"database"`
		} `yaml:"storage"`
		HTTP struct {
			Timeout           time.Duration `yaml:"timeout"`
			RateLimit         float64       `yaml:"rate_limit"`
			SkipSSLValidation bool          `yaml:"skip_ssl_validation"`
		} `yaml:"http"`
		CloudFoundry struct {
			APIURL          string `yaml:"api_url"`
			SchedulerURL    string `yaml:"scheduler_url"`
			Org             string `yaml:"org"`
			Space           string `yaml:"space"`
			Token           string `yaml:"token"`
			LauncherAppName string `yaml:"launcher_app_name"`
			JavaCommand     string `yaml:"java_command"`
		} `yaml:"cloudfoundry"`
		Kubernetes struct {
			APIURL          string `yaml:"api_url"`
			Namespace       string `yaml:"namespace"`
			Token           string `yaml:"token"`
			TokenFile       string `yaml:"token_file"`
			PageSize        int    `yaml:"page_size"`
			ImagePullPolicy string `yaml:"image_pull_policy"`
		} `yaml:"kubernetes"`
	} `yaml:"migrator"`
}

// GetPlatform 获取平台类型
func (c *MigratorConfig) GetPlatform() string {
	return c.Migrator.General.Platform
}

// GetDatabaseType 获取数据库类型
func (c *MigratorConfig) GetDatabaseType() string {
	return c.Migrator.Storage.Database.Type
}

// GetDatabaseDSN 获取数据库DSN
func (c *MigratorConfig) GetDatabaseDSN() string {
	return c.Migrator.Storage.Database.DSN
}

// GetChunkSize 获取批次大小
func (c *MigratorConfig) GetChunkSize() int {
	size := c.Migrator.Converter.ChunkSize
	if size <= 0 {
		return DefaultChunkSize // 默认值
	}
	return size
}

// ApplyDefaults 应用默认值
func (c *MigratorConfig) ApplyDefaults() {
	// General默认值
	if c.Migrator.General.LogLevel == "" {
		c.Migrator.General.LogLevel = "info"
	}
	if c.Migrator.General.Platform == "" {
		c.Migrator.General.Platform = PlatformCloudFoundry
	}

	// Converter默认值
	conv := &c.Migrator.Converter
	if conv.LauncherURI == "" {
		conv.LauncherURI = DefaultLauncherURI
	}
	if conv.SchedulerPrefix == "" {
		conv.SchedulerPrefix = DefaultSchedulerPrefix
	}
	if conv.TaskLauncherPrefix == "" {
		conv.TaskLauncherPrefix = DefaultLauncherPrefix
	}
	if conv.ServerURI == "" {
		conv.ServerURI = DefaultServerURI
	}
	if conv.ChunkSize <= 0 {
		conv.ChunkSize = DefaultChunkSize
	}

	// Database默认值
	db := &c.Migrator.Storage.Database
	if db.Type == "" {
		db.Type = "sqlite"
	}
	if db.Table == "" {
		db.Table = "task_definitions"
	}

	// HTTP默认值
	if c.Migrator.HTTP.Timeout <= 0 {
		c.Migrator.HTTP.Timeout = DefaultHTTPTimeout
	}
	if c.Migrator.HTTP.RateLimit <= 0 {
		c.Migrator.HTTP.RateLimit = DefaultRateLimit
	}

	// Kubernetes默认值
	if c.Migrator.Kubernetes.Namespace == "" {
		c.Migrator.Kubernetes.Namespace = DefaultLauncherPrefix
	}
	if c.Migrator.Kubernetes.PageSize <= 0 {
		c.Migrator.Kubernetes.PageSize = DefaultK8sPageSize
	}
}
