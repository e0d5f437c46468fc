// Package tagger 负责属性与命令行参数的重命名/加前缀，不做任何I/O
package tagger

import (
	"sort"
	"strings"
)

const (
	// DataFlowURIKey Data Flow服务地址属性
	DataFlowURIKey = "spring.cloud.dataflow.client.serverUri"
	// TaskNameKey 任务名称属性，打标签时总是丢弃，由调用方显式注入
	TaskNameKey = "spring.cloud.task.name"
	// CommandArgumentPrefix 命令行参数标记
	CommandArgumentPrefix = "cmdarg."
	// AppPrefix 应用属性前缀
	AppPrefix = "app."
	// DeployerPrefix 部署属性前缀
	DeployerPrefix = "deployer."
	// SchedulerPropertyPrefix 调度器属性命名空间
	SchedulerPropertyPrefix = "spring.cloud.scheduler."
	// TaskLauncherTaskNameArg 调度启动器的任务名参数
	TaskLauncherTaskNameArg = "--spring.cloud.scheduler.task.launcher.taskName="
)

// Tagger 属性标签器
type Tagger struct {
	namespace string
}

// New 创建标签器，namespace为任务启动器属性命名空间（如 tasklauncher）
func New(namespace string) *Tagger {
	return &Tagger{namespace: namespace}
}

// TagCommandLineArgs 给命令行参数打标签
// 含任务名的参数被丢弃，Data Flow服务地址参数原样保留，其余加上 cmdarg.<namespace>. 前缀
func (t *Tagger) TagCommandLineArgs(args []string) []string {
	tagged := make([]string, 0, len(args)+1)
	for _, arg := range args {
		if strings.Contains(arg, TaskNameKey) {
			continue
		}
		if isDataFlowURI(arg) {
			tagged = append(tagged, arg)
			continue
		}
		tagged = append(tagged, CommandArgumentPrefix+t.namespace+"."+arg)
	}
	return tagged
}

// TaskNameArg 构造调度启动器的任务名参数
func TaskNameArg(taskDefinitionName string) string {
	return TaskLauncherTaskNameArg + taskDefinitionName
}

// TagAppProperties 给应用属性打标签
// key变为 <namespace>.<prefix><appName>.<key>，appName为空时省略
func (t *Tagger) TagAppProperties(appName string, props map[string]string, prefix string) map[string]string {
	tagged := make(map[string]string, len(props))
	for key, value := range props {
		if strings.Contains(key, TaskNameKey) {
			continue
		}
		updatedKey := key
		if !strings.HasPrefix(key, DataFlowURIKey) {
			if appName != "" {
				updatedKey = t.namespace + "." + prefix + appName + "." + key
			} else {
				updatedKey = t.namespace + "." + prefix + key
			}
		}
		tagged[updatedKey] = value
	}
	return tagged
}

// AddSchedulerAppProps 复制属性并注入Data Flow服务地址
func AddSchedulerAppProps(props map[string]string, serverURI string) map[string]string {
	result := make(map[string]string, len(props)+1)
	for k, v := range props {
		result[k] = v
	}
	result[DataFlowURIKey] = serverURI
	return result
}

// ExtractAndQualifySchedulerProperties 只保留调度器命名空间下的属性
// 按key排序遍历，重复key以后者为准
func ExtractAndQualifySchedulerProperties(input map[string]string) map[string]string {
	keys := make([]string, 0, len(input))
	for k := range input {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := make(map[string]string)
	for _, k := range keys {
		if strings.HasPrefix(k, SchedulerPropertyPrefix) {
			result[k] = input[k]
		}
	}
	return result
}

func isDataFlowURI(arg string) bool {
	return strings.HasPrefix(arg, DataFlowURIKey) || strings.HasPrefix("--"+arg, DataFlowURIKey)
}
