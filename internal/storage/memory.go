package storage

import (
	"context"
	"sort"
	"storyshot-ai/internal/apperr"
	"storyshot-ai/internal/types"
	"sync"
	"time"
)

// MemoryProjectStore 进程内的项目存储，重启后丢失
type MemoryProjectStore struct {
	mu       sync.RWMutex
	projects map[string]*types.Project
}

func NewMemoryProjectStore() *MemoryProjectStore {
	return &MemoryProjectStore{projects: make(map[string]*types.Project)}
}

func cloneProject(p *types.Project) *types.Project {
	cp := *p
	cp.Segments = append([]types.Segment(nil), p.Segments...)
	if p.VisualBible != nil {
		vb := *p.VisualBible
		cp.VisualBible = &vb
	}
	return &cp
}

func (s *MemoryProjectStore) Create(_ context.Context, project *types.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[project.Id]; ok {
		return apperr.NewConflictError("项目已存在")
	}
	now := time.Now()
	project.CreatedAt, project.UpdatedAt = now, now
	s.projects[project.Id] = cloneProject(project)
	return nil
}

func (s *MemoryProjectStore) Get(_ context.Context, id string) (*types.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[id]
	if !ok {
		return nil, apperr.NewNotFoundError("项目不存在")
	}
	return cloneProject(p), nil
}

// List 按更新时间倒序
func (s *MemoryProjectStore) List(_ context.Context) ([]*types.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := make([]*types.Project, 0, len(s.projects))
	for _, p := range s.projects {
		list = append(list, cloneProject(p))
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].UpdatedAt.After(list[j].UpdatedAt)
	})
	return list, nil
}

func (s *MemoryProjectStore) Update(_ context.Context, project *types.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.projects[project.Id]
	if !ok {
		return apperr.NewNotFoundError("项目不存在")
	}
	project.CreatedAt = old.CreatedAt
	project.UpdatedAt = time.Now()
	s.projects[project.Id] = cloneProject(project)
	return nil
}

func (s *MemoryProjectStore) SaveSegments(_ context.Context, projectId string, segments []types.Segment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[projectId]
	if !ok {
		return apperr.NewNotFoundError("项目不存在")
	}
	p.Segments = append([]types.Segment(nil), segments...)
	p.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryProjectStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[id]; !ok {
		return apperr.NewNotFoundError("项目不存在")
	}
	delete(s.projects, id)
	return nil
}
