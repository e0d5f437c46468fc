package sqlite

import (
	_ "github.com/mattn/go-sqlite3"

	"github.com/LENAX/schedule-migrator/pkg/storage"
)

// NewTaskDefinitionRepoFromDSN 通过DSN创建任务定义Repository（对外导出）
func NewTaskDefinitionRepoFromDSN(dsn, table string) (*storage.SQLTaskDefinitionRepo, error) {
	db, err := storage.OpenDB(NewSQLiteDialect(), dsn)
	if err != nil {
		return nil, err
	}
	repo, err := storage.NewSQLTaskDefinitionRepo(db, NewSQLiteDialect(), table)
	if err != nil {
		db.Close()
		return nil, err
	}
	return repo, nil
}
