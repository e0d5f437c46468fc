package dao

import (
	"database/sql"

	"github.com/LENAX/schedule-migrator/pkg/core/schedule"
)

// TaskDefinitionDAO task_definitions表的数据访问对象
type TaskDefinitionDAO struct {
	DefinitionName string         `db:"definition_name"`
	Definition     string         `db:"definition"`
	Description    sql.NullString `db:"description"`
}

// ToDomain 转换为领域对象
func (d *TaskDefinitionDAO) ToDomain() *schedule.TaskDefinition {
	def := schedule.NewTaskDefinition(d.DefinitionName, d.Definition)
	if d.Description.Valid {
		def.Description = d.Description.String
	}
	return def
}

// FromDomain 由领域对象构造DAO
func FromDomain(def *schedule.TaskDefinition) *TaskDefinitionDAO {
	return &TaskDefinitionDAO{
		DefinitionName: def.TaskName,
		Definition:     def.DSLText,
		Description:    sql.NullString{String: def.Description, Valid: def.Description != ""},
	}
}
