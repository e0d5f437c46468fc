package schedule

import (
	"fmt"
	"strings"
)

// CronExpressionKey 调度器属性中保存Cron表达式的Key
const CronExpressionKey = "spring.cloud.scheduler.cron.expression"

// Record 待迁移的调度记录（对外导出）
// 由Extractor创建，Enricher原地修改，Loader只读消费
type Record struct {
	ScheduleName       string            `json:"schedule_name"`        // 原调度名称，退役时使用
	TaskDefinitionName string            `json:"task_definition_name"` // 平台应用名称
	ApplicationID      string            `json:"application_id,omitempty"`
	RegisteredAppName  string            `json:"registered_app_name,omitempty"`
	ScheduleProperties map[string]string `json:"schedule_properties"`
	AppProperties      map[string]string `json:"app_properties"` // 仅在Enrich之后非空
	CommandLineArgs    []string          `json:"command_line_args"`
}

// NewRecord 创建调度记录
func NewRecord(scheduleName, taskDefinitionName string) *Record {
	return &Record{
		ScheduleName:       scheduleName,
		TaskDefinitionName: taskDefinitionName,
		ScheduleProperties: make(map[string]string),
		AppProperties:      make(map[string]string),
		CommandLineArgs:    make([]string, 0),
	}
}

// CronExpression 返回记录携带的Cron表达式（可能为空）
func (r *Record) CronExpression() string {
	if r == nil || r.ScheduleProperties == nil {
		return ""
	}
	return r.ScheduleProperties[CronExpressionKey]
}

func (r *Record) String() string {
	return fmt.Sprintf("Record{schedule=%s, task=%s, args=%v}", r.ScheduleName, r.TaskDefinitionName, r.CommandLineArgs)
}

// TaskDefinition 已注册的任务定义（只读）
type TaskDefinition struct {
	TaskName          string `json:"task_name"`
	DSLText           string `json:"dsl_text"`
	Description       string `json:"description,omitempty"`
	RegisteredAppName string `json:"registered_app_name"`
}

// NewTaskDefinition 根据任务名称和DSL创建任务定义，并解析出注册的应用名称
func NewTaskDefinition(taskName, dsl string) *TaskDefinition {
	return &TaskDefinition{
		TaskName:          taskName,
		DSLText:           dsl,
		RegisteredAppName: RegisteredAppNameFromDSL(dsl),
	}
}

// RegisteredAppNameFromDSL 从任务DSL中解析应用名称
// 支持 "app --opt=1" 与 "label: app --opt=1" 两种形式
func RegisteredAppNameFromDSL(dsl string) string {
	fields := strings.Fields(strings.TrimSpace(dsl))
	if len(fields) == 0 {
		return ""
	}
	first := fields[0]
	if strings.HasSuffix(first, ":") {
		if len(fields) > 1 {
			return fields[1]
		}
		return ""
	}
	// "label:app" 紧凑写法
	if idx := strings.Index(first, ":"); idx > 0 && !strings.HasPrefix(first, "--") {
		return first[idx+1:]
	}
	return first
}

// Application 平台应用注册表中的应用摘要
type Application struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AppEnvironment 平台提供的应用环境变量
type AppEnvironment struct {
	UserProvided map[string]string `json:"user_provided"`
}

// JobSchedule 旧调度后端中Job的触发器
type JobSchedule struct {
	Expression     string `json:"expression"`
	ExpressionType string `json:"expression_type,omitempty"`
}

// Job 旧调度后端返回的Job条目
type Job struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	ApplicationID string        `json:"application_id"`
	Command       string        `json:"command"`
	JobSchedules  []JobSchedule `json:"job_schedules,omitempty"`
}

// JobPage 一页Job列表
type JobPage struct {
	Resources  []Job `json:"resources"`
	TotalPages int   `json:"total_pages"`
}

// AppDefinition 被启动应用的定义
type AppDefinition struct {
	Name       string            `json:"name"`
	Properties map[string]string `json:"properties"`
}

// ScheduleRequest 提交给新调度后端的请求
type ScheduleRequest struct {
	AppDefinition        AppDefinition     `json:"app_definition"`
	SchedulerProperties  map[string]string `json:"scheduler_properties"`
	DeploymentProperties map[string]string `json:"deployment_properties"`
	CommandLineArgs      []string          `json:"command_line_args"`
	ScheduleName         string            `json:"schedule_name"`
	Resource             *Resource         `json:"resource"`
}

// CronExpression 返回请求中的Cron表达式
func (r *ScheduleRequest) CronExpression() string {
	if r == nil {
		return ""
	}
	return r.SchedulerProperties[CronExpressionKey]
}

// Resource 任务启动器制品
type Resource struct {
	URI        string `json:"uri"`
	Scheme     string `json:"scheme"`
	GroupID    string `json:"group_id,omitempty"`
	ArtifactID string `json:"artifact_id,omitempty"`
	Version    string `json:"version,omitempty"`
	Extension  string `json:"extension,omitempty"`
	Classifier string `json:"classifier,omitempty"`
	Image      string `json:"image,omitempty"`
	Location   string `json:"location,omitempty"`
}

// Name 返回制品的短名称，用于推断部署后的应用名
func (r *Resource) Name() string {
	if r == nil {
		return ""
	}
	switch {
	case r.ArtifactID != "":
		return r.ArtifactID
	case r.Image != "":
		name := r.Image
		if idx := strings.LastIndex(name, "/"); idx >= 0 {
			name = name[idx+1:]
		}
		if idx := strings.Index(name, ":"); idx >= 0 {
			name = name[:idx]
		}
		return name
	case r.Location != "":
		name := r.Location
		if idx := strings.LastIndex(name, "/"); idx >= 0 {
			name = name[idx+1:]
		}
		return strings.TrimSuffix(name, ".jar")
	}
	return ""
}
