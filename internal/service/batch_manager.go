package service

import (
	"storyshot-ai/internal/apperr"
	"storyshot-ai/internal/types"
	"sync"
	"time"

	"github.com/samber/lo"
)

// batchRun 一次正在进行的批处理，不持久化
type batchRun struct {
	kind      types.BatchKind
	token     *CancelToken
	currentId string
	inFlight  []string
	succeeded int
	total     int
	startedAt time.Time
}

// BatchManager 每个项目同一时间最多一个批处理，批处理期间拒绝单个分镜的操作
type BatchManager struct {
	mu          sync.Mutex
	runs        map[string]*batchRun
	last        map[string]types.BatchSummary
	subscribers map[string]map[chan types.BatchEvent]struct{}
	steps       map[string]int // 进行中的单个分镜操作数
}

func NewBatchManager() *BatchManager {
	return &BatchManager{
		runs:        make(map[string]*batchRun),
		last:        make(map[string]types.BatchSummary),
		subscribers: make(map[string]map[chan types.BatchEvent]struct{}),
		steps:       make(map[string]int),
	}
}

// begin 登记批处理，已有批处理时返回冲突错误
func (m *BatchManager) begin(projectId string, kind types.BatchKind, ids []string) (*CancelToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.runs[projectId]; ok {
		return nil, apperr.NewConflictError("该项目已有批处理在进行中，请等待完成或先停止")
	}
	if m.steps[projectId] > 0 {
		return nil, apperr.NewConflictError("该项目有分镜正在生成，请等待完成后再开始批处理")
	}
	token := &CancelToken{}
	m.runs[projectId] = &batchRun{
		kind:      kind,
		token:     token,
		inFlight:  ids,
		total:     len(ids),
		startedAt: time.Now(),
	}
	return token, nil
}

// enterStep 登记一个单个分镜的操作，批处理进行中时返回冲突错误
// 返回的函数在操作结束（包括保存）后调用
func (m *BatchManager) enterStep(projectId string) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.runs[projectId]; ok {
		return nil, apperr.NewConflictError("批处理进行中，请等待完成或先停止")
	}
	m.steps[projectId]++

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			m.steps[projectId]--
			if m.steps[projectId] <= 0 {
				delete(m.steps, projectId)
			}
		})
	}, nil
}

// track 根据进度事件更新批处理状态，并推送给订阅者
func (m *BatchManager) track(projectId string, event types.BatchEvent) {
	m.mu.Lock()
	if run, ok := m.runs[projectId]; ok {
		switch event.Type {
		case types.BatchEventItemStarted:
			run.currentId = event.SegmentId
		case types.BatchEventItemSucceeded, types.BatchEventItemFailed:
			run.currentId = ""
			run.succeeded = event.Succeeded
			run.inFlight = lo.Without(run.inFlight, event.SegmentId)
		}
	}
	// 结束事件推送前先清除批处理，订阅者收到结束事件后即可发起新的批处理
	if event.Type == types.BatchEventFinished && event.Summary != nil {
		delete(m.runs, projectId)
		m.last[projectId] = *event.Summary
	}
	event.ProjectId = projectId
	subs := lo.Keys(m.subscribers[projectId])
	m.mu.Unlock()

	for _, ch := range subs {
		// 订阅者消费太慢时丢弃事件，不阻塞批处理
		select {
		case ch <- event:
		default:
		}
	}
}

// IsActive 项目是否有批处理在进行
func (m *BatchManager) IsActive(projectId string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.runs[projectId]
	return ok
}

// Cancel 设置取消标记，当前分镜处理完后停止
func (m *BatchManager) Cancel(projectId string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[projectId]
	if !ok {
		return false
	}
	run.token.Cancel()
	return true
}

// CancelAll 停止所有批处理，退出前调用，已完成的分镜仍会持久化
func (m *BatchManager) CancelAll() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, run := range m.runs {
		run.token.Cancel()
	}
	return len(m.runs)
}

func (m *BatchManager) Status(projectId string) types.BatchStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	status := types.BatchStatus{}
	if summary, ok := m.last[projectId]; ok {
		status.LastSummary = &summary
	}
	run, ok := m.runs[projectId]
	if !ok {
		return status
	}
	status.Active = true
	status.Kind = run.kind
	status.CurrentId = run.currentId
	status.InFlightIds = append([]string(nil), run.inFlight...)
	status.Succeeded = run.succeeded
	status.Total = run.total
	status.Cancelling = run.token.Cancelled()
	status.StartedAt = run.startedAt
	return status
}

// Subscribe 订阅项目的批处理事件，返回的函数用于取消订阅
func (m *BatchManager) Subscribe(projectId string) (<-chan types.BatchEvent, func()) {
	ch := make(chan types.BatchEvent, 64)
	m.mu.Lock()
	if m.subscribers[projectId] == nil {
		m.subscribers[projectId] = make(map[chan types.BatchEvent]struct{})
	}
	m.subscribers[projectId][ch] = struct{}{}
	m.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subscribers[projectId], ch)
			if len(m.subscribers[projectId]) == 0 {
				delete(m.subscribers, projectId)
			}
			m.mu.Unlock()
		})
	}
}
