package migrate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/LENAX/schedule-migrator/pkg/core/schedule"
	"github.com/LENAX/schedule-migrator/pkg/core/tagger"
	"github.com/LENAX/schedule-migrator/pkg/logx"
)

// AppJSONKey 平台环境变量中内嵌应用属性的Key
const AppJSONKey = "SPRING_APPLICATION_JSON"

// Enricher 补全调度记录：合并环境变量、解析内嵌属性、解析任务定义并打标签
type Enricher struct {
	registry  schedule.AppRegistry
	finder    schedule.TaskDefinitionFinder
	tagger    *tagger.Tagger
	serverURI string
	log       logx.Logger
}

// NewEnricher 创建Enricher
func NewEnricher(registry schedule.AppRegistry, finder schedule.TaskDefinitionFinder, tg *tagger.Tagger, serverURI string, log logx.Logger) *Enricher {
	return &Enricher{
		registry:  registry,
		finder:    finder,
		tagger:    tg,
		serverURI: serverURI,
		log:       log.With(logx.String("comp", "enricher")),
	}
}

// Enrich 补全记录，失败时记录的AppProperties保持不变
func (e *Enricher) Enrich(ctx context.Context, record *schedule.Record) (*schedule.Record, error) {
	env, err := e.environment(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("查询应用 %s 环境变量失败: %w", record.TaskDefinitionName, err)
	}
	if record.ScheduleProperties == nil {
		record.ScheduleProperties = make(map[string]string)
	}
	if env != nil {
		for k, v := range env.UserProvided {
			record.ScheduleProperties[k] = v
		}
	}

	args := e.tagger.TagCommandLineArgs(record.CommandLineArgs)
	args = append(args, tagger.TaskNameArg(record.TaskDefinitionName))
	record.CommandLineArgs = args

	decoded, err := DecodeAppProperties(record.ScheduleProperties[AppJSONKey])
	if err != nil {
		return nil, &schedule.PropertyDecodeError{ScheduleName: record.ScheduleName, Err: err}
	}

	taskName, ok := decoded[tagger.TaskNameKey]
	if !ok || taskName == "" {
		taskName = record.TaskDefinitionName
		if len(decoded) > 0 {
			e.log.Warn("应用属性缺少任务名称，按所属应用名称查询任务定义",
				logx.String("schedule", record.ScheduleName), logx.String("task", taskName))
		}
	}
	definition, err := e.finder.FindByTaskName(ctx, taskName)
	if err != nil {
		return nil, fmt.Errorf("查询任务定义 %s 失败: %w", taskName, err)
	}
	if definition == nil && len(decoded) > 0 {
		return nil, &schedule.UnresolvedTaskDefinitionError{
			ScheduleName:       record.ScheduleName,
			TaskDefinitionName: record.TaskDefinitionName,
		}
	}

	registeredAppName := ""
	if definition != nil {
		registeredAppName = definition.RegisteredAppName
	} else {
		e.log.Debug("未找到任务定义，应用属性为空", logx.String("schedule", record.ScheduleName), logx.String("task", taskName))
	}

	appProperties := e.tagger.TagAppProperties(registeredAppName, decoded, tagger.AppPrefix)
	appProperties = tagger.AddSchedulerAppProps(appProperties, e.serverURI)

	record.RegisteredAppName = registeredAppName
	record.AppProperties = appProperties
	return record, nil
}

// DecodeAppProperties 把JSON对象解析为扁平的字符串map
// 空字符串返回空map；非字符串标量转为字符串，嵌套对象和数组重新编码为紧凑JSON
func DecodeAppProperties(raw string) (map[string]string, error) {
	result := make(map[string]string)
	if raw == "" {
		return result, nil
	}

	decoder := json.NewDecoder(bytes.NewReader([]byte(raw)))
	decoder.UseNumber()
	var values map[string]any
	if err := decoder.Decode(&values); err != nil {
		return nil, err
	}
	if decoder.More() {
		return nil, fmt.Errorf("JSON对象之后存在多余内容")
	}

	for k, v := range values {
		s, err := stringify(v)
		if err != nil {
			return nil, fmt.Errorf("属性 %s: %w", k, err)
		}
		result[k] = s
	}
	return result, nil
}

// environment 优先按应用ID查询，注册表不支持或记录没有ID时按名称查询
func (e *Enricher) environment(ctx context.Context, record *schedule.Record) (*schedule.AppEnvironment, error) {
	if byID, ok := e.registry.(schedule.EnvironmentByID); ok && record.ApplicationID != "" {
		return byID.GetEnvironmentByID(ctx, record.ApplicationID)
	}
	return e.registry.GetEnvironment(ctx, record.TaskDefinitionName)
}

func stringify(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case json.Number:
		return val.String(), nil
	case bool:
		return strconv.FormatBool(val), nil
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}

var _ schedule.ScheduleEnricher = (*Enricher)(nil)
