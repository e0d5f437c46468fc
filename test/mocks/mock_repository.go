package mocks

import (
	"context"
	"errors"
	"sync"

	"github.com/LENAX/schedule-migrator/pkg/core/schedule"
)

// MockTaskDefinitionRepository 模拟任务定义查询，支持模拟故障
type MockTaskDefinitionRepository struct {
	mu             sync.RWMutex
	definitions    map[string]*schedule.TaskDefinition
	shouldFailFind bool
	lookups        []string
}

// NewMockTaskDefinitionRepository 创建MockTaskDefinitionRepository
func NewMockTaskDefinitionRepository() *MockTaskDefinitionRepository {
	return &MockTaskDefinitionRepository{
		definitions: make(map[string]*schedule.TaskDefinition),
	}
}

// Add 添加任务定义
func (m *MockTaskDefinitionRepository) Add(def *schedule.TaskDefinition) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.definitions[def.TaskName] = def
}

// SetShouldFailFind 设置查询是否失败
func (m *MockTaskDefinitionRepository) SetShouldFailFind(shouldFail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shouldFailFind = shouldFail
}

// Lookups 返回查询过的任务名称
func (m *MockTaskDefinitionRepository) Lookups() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.lookups...)
}

// FindByTaskName 按名称查询任务定义
func (m *MockTaskDefinitionRepository) FindByTaskName(ctx context.Context, name string) (*schedule.TaskDefinition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups = append(m.lookups, name)

	if m.shouldFailFind {
		return nil, errors.New("模拟存储故障：查询失败")
	}
	def, ok := m.definitions[name]
	if !ok {
		return nil, nil
	}
	return def, nil
}

var _ schedule.TaskDefinitionFinder = (*MockTaskDefinitionRepository)(nil)
