package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*))?\}`)

// expandEnv 替换 ${VAR} 与 ${VAR:-默认值}，不处理裸 $VAR
func expandEnv(data []byte) []byte {
	return envPattern.ReplaceAllFunc(data, func(m []byte) []byte {
		sub := envPattern.FindSubmatch(m)
		if v, ok := os.LookupEnv(string(sub[1])); ok && v != "" {
			return []byte(v)
		}
		return sub[3]
	})
}

// LoadMigratorConfig 加载配置文件：环境变量替换、默认值填充、校验
func LoadMigratorConfig(path string) (*MigratorConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}
	return ParseMigratorConfig(data)
}

// ParseMigratorConfig 解析YAML配置内容
func ParseMigratorConfig(data []byte) (*MigratorConfig, error) {
	var cfg MigratorConfig
	if err := yaml.Unmarshal(expandEnv(data), &cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}
	cfg.ApplyDefaults()
	if err := ValidateMigratorConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
