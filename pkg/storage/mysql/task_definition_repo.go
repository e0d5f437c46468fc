package mysql

import (
	_ "github.com/go-sql-driver/mysql"

	"github.com/LENAX/schedule-migrator/pkg/storage"
)

// NewTaskDefinitionRepoFromDSN 通过DSN创建任务定义Repository（对外导出）
// DSN格式：user:password@tcp(host:3306)/dataflow
func NewTaskDefinitionRepoFromDSN(dsn, table string) (*storage.SQLTaskDefinitionRepo, error) {
	db, err := storage.OpenDB(NewMySQLDialect(), dsn)
	if err != nil {
		return nil, err
	}
	repo, err := storage.NewSQLTaskDefinitionRepo(db, NewMySQLDialect(), table)
	if err != nil {
		db.Close()
		return nil, err
	}
	return repo, nil
}
