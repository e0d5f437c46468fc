package schedule

import "context"

// LegacyScheduler 旧调度后端
type LegacyScheduler interface {
	// ListJobs 查询指定页的Job列表，page从1开始；page为0时只需返回分页信息
	// 返回 nil, nil 表示后端没有响应
	ListJobs(ctx context.Context, page int, detailed bool) (*JobPage, error)
	// Unschedule 按名称删除调度
	Unschedule(ctx context.Context, scheduleName string) error
}

// TargetScheduler 新调度后端
type TargetScheduler interface {
	Schedule(ctx context.Context, req *ScheduleRequest) error
}

// AppRegistry 平台应用注册表
type AppRegistry interface {
	ListApplications(ctx context.Context) ([]Application, error)
	// GetEnvironment 返回 nil, nil 表示应用没有环境信息
	GetEnvironment(ctx context.Context, appName string) (*AppEnvironment, error)
}

// EnvironmentByID 可按应用ID查询环境变量的注册表
// 多个调度共用同一应用名称时（如Kubernetes每个CronJob各自携带环境变量），必须按ID查询
type EnvironmentByID interface {
	// GetEnvironmentByID 返回 nil, nil 表示应用不存在
	GetEnvironmentByID(ctx context.Context, appID string) (*AppEnvironment, error)
}

// TaskDefinitionFinder 任务定义查询服务
type TaskDefinitionFinder interface {
	// FindByTaskName 未找到时返回 nil, nil
	FindByTaskName(ctx context.Context, name string) (*TaskDefinition, error)
}

// ResourceResolver 启动器制品解析器
type ResourceResolver interface {
	Resolve(uri string) (*Resource, error)
}

// ========== 流水线能力接口 ==========

// ScheduleSource 提供全部待迁移记录
type ScheduleSource interface {
	ListAll(ctx context.Context) ([]*Record, error)
}

// ScheduleEnricher 补全单条记录
type ScheduleEnricher interface {
	Enrich(ctx context.Context, record *Record) (*Record, error)
}

// ScheduleSink 写入新调度并退役旧调度
type ScheduleSink interface {
	Load(ctx context.Context, record *Record) error
}
