package workflow

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/BaSui01/memeflow/types"
)

// Snapshot 是某次阶段转换后的状态快照，可 JSON 序列化
type Snapshot struct {
	RunID     string    `json:"run_id"`
	Stage     Stage     `json:"stage"`
	State     *State    `json:"state"`
	CreatedAt time.Time `json:"created_at"`
}

// Marshal 将快照编码为 JSON
func (s *Snapshot) Marshal() ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, types.NewError(types.ErrPipeline, "failed to marshal snapshot").WithCause(err)
	}
	return data, nil
}

// Store 持久化运行快照。核心流水线只负责写入，不做断点续跑
type Store interface {
	// Save 保存一份快照
	Save(ctx context.Context, snapshot *Snapshot) error

	// Load 按运行 ID 加载最新快照
	Load(ctx context.Context, runID string) (*Snapshot, error)

	// List 按运行 ID 列出全部快照，按保存顺序
	List(ctx context.Context, runID string) ([]*Snapshot, error)
}

// MemoryStore 是 Store 的内存实现
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string][]*Snapshot
}

// NewMemoryStore 创建内存快照存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snapshots: make(map[string][]*Snapshot)}
}

// Save 实现 Store
func (m *MemoryStore) Save(ctx context.Context, snapshot *Snapshot) error {
	if snapshot == nil || snapshot.RunID == "" {
		return types.NewError(types.ErrInvalidInput, "snapshot requires a run ID")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[snapshot.RunID] = append(m.snapshots[snapshot.RunID], snapshot)
	return nil
}

// Load 实现 Store
func (m *MemoryStore) Load(ctx context.Context, runID string) (*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := m.snapshots[runID]
	if len(list) == 0 {
		return nil, types.NewError(types.ErrInvalidInput, "no snapshot for run "+runID)
	}
	return list[len(list)-1], nil
}

// List 实现 Store
func (m *MemoryStore) List(ctx context.Context, runID string) ([]*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := m.snapshots[runID]
	out := make([]*Snapshot, len(list))
	copy(out, list)
	return out, nil
}
