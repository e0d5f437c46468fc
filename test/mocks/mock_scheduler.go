package mocks

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/LENAX/schedule-migrator/pkg/core/schedule"
)

// MockLegacyScheduler 模拟旧调度后端
// pages[i] 为第 i+1 页的Job
type MockLegacyScheduler struct {
	mu                   sync.RWMutex
	pages                [][]schedule.Job
	shouldFailList       bool
	nilResponse          bool
	shouldFailUnschedule bool
	listCalls            []int
	unscheduled          []string
}

// NewMockLegacyScheduler 创建MockLegacyScheduler
func NewMockLegacyScheduler(pages ...[]schedule.Job) *MockLegacyScheduler {
	return &MockLegacyScheduler{pages: pages}
}

// SetShouldFailList 设置列表查询是否失败
func (m *MockLegacyScheduler) SetShouldFailList(shouldFail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shouldFailList = shouldFail
}

// SetNilResponse 设置列表查询是否返回空响应
func (m *MockLegacyScheduler) SetNilResponse(nilResponse bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nilResponse = nilResponse
}

// SetShouldFailUnschedule 设置退役是否失败
func (m *MockLegacyScheduler) SetShouldFailUnschedule(shouldFail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shouldFailUnschedule = shouldFail
}

// ListJobs 返回指定页
func (m *MockLegacyScheduler) ListJobs(ctx context.Context, page int, detailed bool) (*schedule.JobPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls = append(m.listCalls, page)

	if m.shouldFailList {
		return nil, errors.New("模拟后端故障：列表查询失败")
	}
	if m.nilResponse {
		return nil, nil
	}
	result := &schedule.JobPage{TotalPages: len(m.pages)}
	if page >= 1 && page <= len(m.pages) {
		result.Resources = append([]schedule.Job(nil), m.pages[page-1]...)
	}
	return result, nil
}

// Unschedule 删除调度
func (m *MockLegacyScheduler) Unschedule(ctx context.Context, scheduleName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unscheduled = append(m.unscheduled, scheduleName)

	if m.shouldFailUnschedule {
		return fmt.Errorf("模拟后端故障：退役 %s 失败", scheduleName)
	}
	return nil
}

// ListCalls 返回列表查询的页码
func (m *MockLegacyScheduler) ListCalls() []int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]int(nil), m.listCalls...)
}

// Unscheduled 返回被退役的调度名称
func (m *MockLegacyScheduler) Unscheduled() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.unscheduled...)
}

// MockTargetScheduler 模拟新调度后端
type MockTargetScheduler struct {
	mu                 sync.RWMutex
	requests           []*schedule.ScheduleRequest
	shouldFailSchedule bool
	failAfter          int
}

// NewMockTargetScheduler 创建MockTargetScheduler
func NewMockTargetScheduler() *MockTargetScheduler {
	return &MockTargetScheduler{failAfter: -1}
}

// SetShouldFailSchedule 设置提交是否失败
func (m *MockTargetScheduler) SetShouldFailSchedule(shouldFail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shouldFailSchedule = shouldFail
}

// SetFailAfter 前n次提交成功，之后失败（用于模拟部分失败）
func (m *MockTargetScheduler) SetFailAfter(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failAfter = n
}

// Schedule 记录请求
func (m *MockTargetScheduler) Schedule(ctx context.Context, req *schedule.ScheduleRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.shouldFailSchedule || (m.failAfter >= 0 && len(m.requests) >= m.failAfter) {
		return fmt.Errorf("模拟后端故障：提交 %s 失败", req.ScheduleName)
	}
	m.requests = append(m.requests, req)
	return nil
}

// Requests 返回成功提交的请求
func (m *MockTargetScheduler) Requests() []*schedule.ScheduleRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*schedule.ScheduleRequest(nil), m.requests...)
}

// MockAppRegistry 模拟平台应用注册表
type MockAppRegistry struct {
	mu             sync.RWMutex
	apps           []schedule.Application
	envs           map[string]map[string]string
	shouldFailList bool
	shouldFailEnv  bool
	listCalls      int
	envCalls       []string
}

// NewMockAppRegistry 创建MockAppRegistry
func NewMockAppRegistry(apps ...schedule.Application) *MockAppRegistry {
	return &MockAppRegistry{apps: apps, envs: make(map[string]map[string]string)}
}

// SetEnvironment 设置应用环境变量
func (m *MockAppRegistry) SetEnvironment(appName string, env map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.envs[appName] = env
}

// SetShouldFailList 设置应用列表查询是否失败
func (m *MockAppRegistry) SetShouldFailList(shouldFail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shouldFailList = shouldFail
}

// SetShouldFailEnv 设置环境变量查询是否失败
func (m *MockAppRegistry) SetShouldFailEnv(shouldFail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shouldFailEnv = shouldFail
}

// ListApplications 返回应用列表
func (m *MockAppRegistry) ListApplications(ctx context.Context) ([]schedule.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++

	if m.shouldFailList {
		return nil, errors.New("模拟后端故障：应用列表查询失败")
	}
	return append([]schedule.Application(nil), m.apps...), nil
}

// GetEnvironment 返回应用环境变量，未设置时返回nil
func (m *MockAppRegistry) GetEnvironment(ctx context.Context, appName string) (*schedule.AppEnvironment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.envCalls = append(m.envCalls, appName)

	if m.shouldFailEnv {
		return nil, errors.New("模拟后端故障：环境变量查询失败")
	}
	env, ok := m.envs[appName]
	if !ok {
		return nil, nil
	}
	cp := make(map[string]string, len(env))
	for k, v := range env {
		cp[k] = v
	}
	return &schedule.AppEnvironment{UserProvided: cp}, nil
}

// ListCalls 返回应用列表查询次数
func (m *MockAppRegistry) ListCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listCalls
}

// EnvCalls 返回环境变量查询的应用名称
func (m *MockAppRegistry) EnvCalls() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.envCalls...)
}

var (
	_ schedule.LegacyScheduler = (*MockLegacyScheduler)(nil)
	_ schedule.TargetScheduler = (*MockTargetScheduler)(nil)
	_ schedule.AppRegistry     = (*MockAppRegistry)(nil)
)
