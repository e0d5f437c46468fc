package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/LENAX/schedule-migrator/pkg/storage"
	"github.com/LENAX/schedule-migrator/pkg/storage/mysql"
	"github.com/LENAX/schedule-migrator/pkg/storage/postgres"
	pkgsqlite "github.com/LENAX/schedule-migrator/pkg/storage/sqlite"
)

// Options 任务定义存储选项（内部使用）
type Options struct {
	Type       string // sqlite/mysql/postgres
	DSN        string
	Table      string
	InitSchema bool // 表不存在时创建，主要用于本地sqlite
}

// NewTaskDefinitionRepository 按数据库类型创建任务定义Repository（内部方法）
func NewTaskDefinitionRepository(ctx context.Context, opts Options) (storage.TaskDefinitionRepository, error) {
	var (
		repo *storage.SQLTaskDefinitionRepo
		err  error
	)
	switch strings.ToLower(opts.Type) {
	case "sqlite", "sqlite3":
		repo, err = pkgsqlite.NewTaskDefinitionRepoFromDSN(opts.DSN, opts.Table)
	case "mysql":
		repo, err = mysql.NewTaskDefinitionRepoFromDSN(opts.DSN, opts.Table)
	case "postgres", "postgresql":
		repo, err = postgres.NewTaskDefinitionRepoFromDSN(opts.DSN, opts.Table)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", opts.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s repository failed: %w", opts.Type, err)
	}

	if opts.InitSchema {
		if err := repo.InitSchema(ctx); err != nil {
			repo.Close()
			return nil, err
		}
	}
	return repo, nil
}
