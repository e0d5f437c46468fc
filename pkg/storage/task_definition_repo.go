package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	"github.com/jmoiron/sqlx"

	"github.com/LENAX/schedule-migrator/pkg/core/schedule"
	"github.com/LENAX/schedule-migrator/pkg/storage/dao"
)

// DefaultTaskDefinitionTable Data Flow任务定义表名
const DefaultTaskDefinitionTable = "task_definitions"

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// TaskDefinitionRepository 任务定义存储接口（对外导出）
type TaskDefinitionRepository interface {
	schedule.TaskDefinitionFinder
	// List 返回全部任务定义，按名称排序
	List(ctx context.Context) ([]*schedule.TaskDefinition, error)
	// Save 保存任务定义（存在则更新）
	Save(ctx context.Context, def *schedule.TaskDefinition) error
	// InitSchema 表不存在时创建
	InitSchema(ctx context.Context) error
	Close() error
}

// SQLTaskDefinitionRepo 基于sqlx的任务定义Repository（对外导出）
type SQLTaskDefinitionRepo struct {
	db      *sqlx.DB
	dialect Dialect
	table   string
}

// ValidateTableName 校验表名，只允许 [schema.]table 形式的标识符
func ValidateTableName(table string) error {
	if !tableNamePattern.MatchString(table) {
		return fmt.Errorf("非法的表名: %q", table)
	}
	return nil
}

// NewSQLTaskDefinitionRepo 创建Repository实例，table为空时使用默认表名
func NewSQLTaskDefinitionRepo(db *sqlx.DB, dialect Dialect, table string) (*SQLTaskDefinitionRepo, error) {
	if table == "" {
		table = DefaultTaskDefinitionTable
	}
	if err := ValidateTableName(table); err != nil {
		return nil, err
	}
	return &SQLTaskDefinitionRepo{db: db, dialect: dialect, table: table}, nil
}

// OpenDB 按方言打开数据库并执行连接配置
func OpenDB(dialect Dialect, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("打开数据库失败: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("数据库连接失败: %w", err)
	}
	for _, stmt := range dialect.ConfigureDB() {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("配置%s失败: %w", dialect.Name(), err)
		}
	}
	return db, nil
}

// GetDB 获取底层数据库连接（对外导出）
func (r *SQLTaskDefinitionRepo) GetDB() *sqlx.DB {
	return r.db
}

// Table 返回表名
func (r *SQLTaskDefinitionRepo) Table() string {
	return r.table
}

// Close 关闭数据库连接（对外导出）
func (r *SQLTaskDefinitionRepo) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// InitSchema 初始化表结构
func (r *SQLTaskDefinitionRepo) InitSchema(ctx context.Context) error {
	schema := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %s (
		DEFINITION_NAME VARCHAR(255) NOT NULL PRIMARY KEY,
		DEFINITION TEXT,
		DESCRIPTION VARCHAR(255)
	)`, r.table)
	if _, err := r.db.ExecContext(ctx, r.dialect.CreateTableSQL(schema)); err != nil {
		return fmt.Errorf("创建表 %s 失败: %w", r.table, err)
	}
	return nil
}

func (r *SQLTaskDefinitionRepo) selectSQL() string {
	return fmt.Sprintf(
		"SELECT DEFINITION_NAME AS definition_name, DEFINITION AS definition, DESCRIPTION AS description FROM %s",
		r.table)
}

// FindByTaskName 按名称查询任务定义，不存在时返回 nil, nil
func (r *SQLTaskDefinitionRepo) FindByTaskName(ctx context.Context, name string) (*schedule.TaskDefinition, error) {
	query := r.selectSQL() + " WHERE DEFINITION_NAME = " + r.dialect.Placeholder(1)

	var row dao.TaskDefinitionDAO
	if err := r.db.GetContext(ctx, &row, query, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询任务定义 %s 失败: %w", name, err)
	}
	return row.ToDomain(), nil
}

// List 返回全部任务定义
func (r *SQLTaskDefinitionRepo) List(ctx context.Context) ([]*schedule.TaskDefinition, error) {
	var rows []dao.TaskDefinitionDAO
	if err := r.db.SelectContext(ctx, &rows, r.selectSQL()+" ORDER BY DEFINITION_NAME"); err != nil {
		return nil, fmt.Errorf("查询任务定义列表失败: %w", err)
	}
	defs := make([]*schedule.TaskDefinition, 0, len(rows))
	for i := range rows {
		defs = append(defs, rows[i].ToDomain())
	}
	return defs, nil
}

// Save 保存任务定义
func (r *SQLTaskDefinitionRepo) Save(ctx context.Context, def *schedule.TaskDefinition) error {
	query := r.dialect.UpsertSQL(r.table,
		[]string{"definition_name", "definition", "description"},
		"definition_name",
		[]string{"definition", "description"})
	if _, err := r.db.NamedExecContext(ctx, query, dao.FromDomain(def)); err != nil {
		return fmt.Errorf("保存任务定义 %s 失败: %w", def.TaskName, err)
	}
	return nil
}

var _ TaskDefinitionRepository = (*SQLTaskDefinitionRepo)(nil)
