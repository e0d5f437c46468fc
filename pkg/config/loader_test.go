package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "migrator.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("创建测试配置文件失败: %v", err)
	}
	return configPath
}

func TestLoadMigratorConfig(t *testing.T) {
	configPath := writeConfig(t, `
migrator:
  general:
    log_level: "debug"
    platform: "kubernetes"
  converter:
    scheduler_task_launcher_url: "docker:springcloud/spring-cloud-dataflow-scheduler-task-launcher:2.3.0"
    scheduler_prefix: "mig_"
    chunk_size: 25
    dry_run: true
  storage:
    database:
      type: "postgres"
      dsn: "postgres://scdf@localhost/dataflow?sslmode=disable"
      table: "task_definitions"
  http:
    timeout: "45s"
    rate_limit: 5
  kubernetes:
    api_url: "https://k8s.example.com"
    namespace: "batch"
    page_size: 20
`)

	cfg, err := LoadMigratorConfig(configPath)
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}

	if cfg.Migrator.General.LogLevel != "debug" {
		t.Errorf("期望log_level为debug，实际为%s", cfg.Migrator.General.LogLevel)
	}
	if cfg.GetPlatform() != PlatformKubernetes {
		t.Errorf("期望platform为kubernetes，实际为%s", cfg.GetPlatform())
	}
	if cfg.Migrator.Converter.SchedulerPrefix != "mig_" {
		t.Errorf("期望scheduler_prefix为mig_，实际为%s", cfg.Migrator.Converter.SchedulerPrefix)
	}
	if cfg.GetChunkSize() != 25 {
		t.Errorf("期望chunk_size为25，实际为%d", cfg.GetChunkSize())
	}
	if !cfg.Migrator.Converter.DryRun {
		t.Error("期望dry_run为true")
	}
	if cfg.GetDatabaseType() != "postgres" {
		t.Errorf("期望database.type为postgres，实际为%s", cfg.GetDatabaseType())
	}
	if cfg.Migrator.HTTP.Timeout != 45*time.Second {
		t.Errorf("期望timeout为45s，实际为%v", cfg.Migrator.HTTP.Timeout)
	}
	if cfg.Migrator.Kubernetes.PageSize != 20 {
		t.Errorf("期望page_size为20，实际为%d", cfg.Migrator.Kubernetes.PageSize)
	}
}

func TestLoadMigratorConfig_WithDefaults(t *testing.T) {
	configPath := writeConfig(t, `
migrator:
  storage:
    database:
      dsn: "./dataflow.db"
  cloudfoundry:
    api_url: "https://api.cf.example.com"
    scheduler_url: "https://scheduler.cf.example.com"
    org: "org"
    space: "space"
`)

	cfg, err := LoadMigratorConfig(configPath)
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}

	if cfg.GetPlatform() != PlatformCloudFoundry {
		t.Errorf("期望默认platform为cloudfoundry，实际为%s", cfg.GetPlatform())
	}
	if cfg.Migrator.Converter.LauncherURI != DefaultLauncherURI {
		t.Errorf("期望默认启动器地址，实际为%s", cfg.Migrator.Converter.LauncherURI)
	}
	if cfg.Migrator.Converter.SchedulerPrefix != "scdf_" {
		t.Errorf("期望默认scheduler_prefix为scdf_，实际为%s", cfg.Migrator.Converter.SchedulerPrefix)
	}
	if cfg.Migrator.Converter.TaskLauncherPrefix != "tasklauncher" {
		t.Errorf("期望默认task_launcher_prefix为tasklauncher，实际为%s", cfg.Migrator.Converter.TaskLauncherPrefix)
	}
	if cfg.GetChunkSize() != DefaultChunkSize {
		t.Errorf("期望默认chunk_size为%d，实际为%d", DefaultChunkSize, cfg.GetChunkSize())
	}
	if cfg.GetDatabaseType() != "sqlite" {
		t.Errorf("期望默认database.type为sqlite，实际为%s", cfg.GetDatabaseType())
	}
	if cfg.Migrator.Storage.Database.Table != "task_definitions" {
		t.Errorf("期望默认table为task_definitions，实际为%s", cfg.Migrator.Storage.Database.Table)
	}
	if cfg.Migrator.HTTP.Timeout != DefaultHTTPTimeout {
		t.Errorf("期望默认timeout为30s，实际为%v", cfg.Migrator.HTTP.Timeout)
	}
	if cfg.Migrator.Kubernetes.Namespace != "tasklauncher" {
		t.Errorf("期望默认namespace为tasklauncher，实际为%s", cfg.Migrator.Kubernetes.Namespace)
	}
}

func TestLoadMigratorConfig_WithEnvVars(t *testing.T) {
	t.Setenv("TEST_CF_TOKEN", "secret-token")
	t.Setenv("TEST_DB_PATH", "/tmp/test.db")

	configPath := writeConfig(t, `
migrator:
  storage:
    database:
      dsn: "${TEST_DB_PATH}"
  cloudfoundry:
    api_url: "https://api.cf.example.com"
    scheduler_url: "https://scheduler.cf.example.com"
    org: "${TEST_CF_ORG:-default-org}"
    space: "space"
    token: "${TEST_CF_TOKEN}"
    java_command: "java $JAVA_OPTS -jar"
`)

	cfg, err := LoadMigratorConfig(configPath)
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}

	cf := cfg.Migrator.CloudFoundry
	if cf.Token != "secret-token" {
		t.Errorf("期望token为secret-token，实际为%s", cf.Token)
	}
	if cf.Org != "default-org" {
		t.Errorf("期望org使用默认值default-org，实际为%s", cf.Org)
	}
	if cf.JavaCommand != "java $JAVA_OPTS -jar" {
		t.Errorf("裸$变量不应被替换，实际为%s", cf.JavaCommand)
	}
	if cfg.GetDatabaseDSN() != "/tmp/test.db" {
		t.Errorf("期望dsn为/tmp/test.db，实际为%s", cfg.GetDatabaseDSN())
	}
}

func TestLoadMigratorConfig_FileNotFound(t *testing.T) {
	if _, err := LoadMigratorConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("期望文件不存在时返回错误")
	}
}

func TestLoadMigratorConfig_InvalidYAML(t *testing.T) {
	configPath := writeConfig(t, "migrator: [unclosed")
	if _, err := LoadMigratorConfig(configPath); err == nil {
		t.Fatal("期望YAML格式错误时返回错误")
	}
}
