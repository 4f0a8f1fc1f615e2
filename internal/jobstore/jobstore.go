package jobstore

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

type Job struct {
	ID          string
	Source      string
	Candidate   int
	Marketplace string
	Status      Status
	OutputFile  string
	Score       float64
	Error       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// 任务状态由调用方注入的 store 持有，优化核心不碰全局可变状态。
type Store interface {
	Create(job Job) (Job, error)
	Get(id string) (Job, bool)
	Update(id string, fn func(*Job)) error
	List() []Job
}

type Memory struct {
	mu    sync.Mutex
	jobs  map[string]Job
	order []string
}

func NewMemory() *Memory {
	return &Memory{jobs: map[string]Job{}}
}

func (m *Memory) Create(job Job) (Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if _, exists := m.jobs[job.ID]; exists {
		return Job{}, fmt.Errorf("任务已存在：%s", job.ID)
	}
	now := time.Now()
	job.CreatedAt = now
	job.UpdatedAt = now
	if job.Status == "" {
		job.Status = StatusPending
	}
	m.jobs[job.ID] = job
	m.order = append(m.order, job.ID)
	return job, nil
}

func (m *Memory) Get(id string) (Job, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	return job, ok
}

func (m *Memory) Update(id string, fn func(*Job)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return fmt.Errorf("任务不存在：%s", id)
	}
	fn(&job)
	job.ID = id
	job.UpdatedAt = time.Now()
	m.jobs[id] = job
	return nil
}

func (m *Memory) List() []Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Job, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.jobs[id])
	}
	return out
}
