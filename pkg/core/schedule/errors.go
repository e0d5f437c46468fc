package schedule

import (
	"errors"
	"fmt"
)

var (
	// ErrBackendUnavailable 调度后端未返回响应
	ErrBackendUnavailable = errors.New("scheduler service returned a null response")
	// ErrArgumentParse 旧命令行无法按shell规则拆分
	ErrArgumentParse = errors.New("unable to parse command line arguments")
	// ErrPropertyDecode 内嵌的JSON配置无法解析
	ErrPropertyDecode = errors.New("unable to parse SPRING_APPLICATION_JSON from user variables")
	// ErrUnresolvedTaskDefinition 存在应用属性但找不到任务定义
	ErrUnresolvedTaskDefinition = errors.New("task definition does not exist")
	// ErrSubmission 新调度后端拒绝了调度请求
	ErrSubmission = errors.New("schedule submission failed")
	// ErrRetirement 旧调度退役失败
	ErrRetirement = errors.New("schedule retirement failed")
	// ErrInvalidResource 启动器制品坐标无效
	ErrInvalidResource = errors.New("invalid resource uri")
)

// ArgumentParseError 命令行解析错误
type ArgumentParseError struct {
	ScheduleName string
	Command      string
	Err          error
}

func (e *ArgumentParseError) Error() string {
	return fmt.Sprintf("schedule %s: %v: %q: %v", e.ScheduleName, ErrArgumentParse, e.Command, e.Err)
}

func (e *ArgumentParseError) Unwrap() []error { return []error{ErrArgumentParse, e.Err} }

// PropertyDecodeError 属性解码错误
type PropertyDecodeError struct {
	ScheduleName string
	Err          error
}

func (e *PropertyDecodeError) Error() string {
	return fmt.Sprintf("schedule %s: %v: %v", e.ScheduleName, ErrPropertyDecode, e.Err)
}

func (e *PropertyDecodeError) Unwrap() []error { return []error{ErrPropertyDecode, e.Err} }

// UnresolvedTaskDefinitionError 找不到任务定义
type UnresolvedTaskDefinitionError struct {
	ScheduleName       string
	TaskDefinitionName string
}

func (e *UnresolvedTaskDefinitionError) Error() string {
	return fmt.Sprintf("the schedule %s contains properties but the task definition %s does not exist and thus can't be migrated",
		e.ScheduleName, e.TaskDefinitionName)
}

func (e *UnresolvedTaskDefinitionError) Unwrap() error { return ErrUnresolvedTaskDefinition }

// SubmissionError 提交新调度失败，旧调度仍然有效
type SubmissionError struct {
	ScheduleName string
	Err          error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("schedule %s: %v: %v", e.ScheduleName, ErrSubmission, e.Err)
}

func (e *SubmissionError) Unwrap() []error { return []error{ErrSubmission, e.Err} }

// RetirementError 退役旧调度失败，新旧调度同时存在
type RetirementError struct {
	ScheduleName string
	Err          error
}

func (e *RetirementError) Error() string {
	return fmt.Sprintf("schedule %s: %v: %v", e.ScheduleName, ErrRetirement, e.Err)
}

func (e *RetirementError) Unwrap() []error { return []error{ErrRetirement, e.Err} }
