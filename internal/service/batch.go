package service

import (
	"context"
	"fmt"
	"storyshot-ai/internal/types"
	"storyshot-ai/log"
	"sync/atomic"

	"go.uber.org/zap"
)

// CancelToken 协作式取消标记，只在两个分镜之间检查，进行中的请求不会被打断
type CancelToken struct {
	cancelled atomic.Bool
}

func (t *CancelToken) Cancel() {
	t.cancelled.Store(true)
}

func (t *CancelToken) Cancelled() bool {
	return t != nil && t.cancelled.Load()
}

// SegmentOperation 对单个分镜执行的操作，成功时直接修改传入的分镜
type SegmentOperation func(ctx context.Context, seg *types.Segment) error

// BatchOptions 批处理的可选参数
type BatchOptions struct {
	Kind    types.BatchKind
	Token   *CancelToken
	Persist func(ctx context.Context, segments []types.Segment) error // 批处理结束后调用一次，只传入处理成功的分镜
	OnEvent func(event types.BatchEvent)
}

// RunBatch 按原顺序依次处理符合条件的分镜
// 单个分镜失败只记录日志并继续；每处理一个前检查取消标记；结束后（无论完成还是停止）统一持久化一次
// @return 处理后的分镜列表副本和汇总结果
func RunBatch(ctx context.Context, segments []types.Segment, eligible func(types.Segment) bool, op SegmentOperation, opts BatchOptions) ([]types.Segment, types.BatchSummary) {
	working := append([]types.Segment(nil), segments...)
	emit := func(e types.BatchEvent) {
		if opts.OnEvent != nil {
			e.Kind = opts.Kind
			opts.OnEvent(e)
		}
	}

	var indexes []int
	for i := range working {
		if eligible(working[i]) {
			indexes = append(indexes, i)
		}
	}

	summary := types.BatchSummary{Kind: opts.Kind, Total: len(indexes)}
	if len(indexes) == 0 {
		summary.State = types.BatchStateEmpty
		summary.Message = "没有需要处理的分镜"
		emit(types.BatchEvent{Type: types.BatchEventFinished, Summary: &summary})
		return working, summary
	}

	emit(types.BatchEvent{Type: types.BatchEventStarted, Total: len(indexes)})
	summary.State = types.BatchStateCompleted
	var done []types.Segment
	for pos, idx := range indexes {
		if opts.Token.Cancelled() || ctx.Err() != nil {
			summary.State = types.BatchStateStopped
			break
		}

		seg := &working[idx]
		emit(types.BatchEvent{Type: types.BatchEventItemStarted, SegmentId: seg.Id, Position: pos + 1, Total: len(indexes), Succeeded: summary.Succeeded})
		summary.Processed++
		if err := op(ctx, seg); err != nil {
			log.GetLogger().Warn("batch item failed", zap.String("kind", string(opts.Kind)), zap.String("segmentId", seg.Id), zap.Error(err))
			summary.Failed++
			summary.FailedIds = append(summary.FailedIds, seg.Id)
			emit(types.BatchEvent{Type: types.BatchEventItemFailed, SegmentId: seg.Id, Position: pos + 1, Total: len(indexes), Succeeded: summary.Succeeded, Error: err.Error()})
			continue
		}
		summary.Succeeded++
		done = append(done, *seg)
		emit(types.BatchEvent{Type: types.BatchEventItemSucceeded, SegmentId: seg.Id, Position: pos + 1, Total: len(indexes), Succeeded: summary.Succeeded})
	}

	if opts.Persist != nil {
		// 批处理可能已被取消，持久化不跟随请求的ctx
		if err := opts.Persist(context.WithoutCancel(ctx), done); err != nil {
			log.GetLogger().Error("batch persist failed", zap.String("kind", string(opts.Kind)), zap.Error(err))
		}
	}

	if summary.State == types.BatchStateStopped {
		summary.Message = fmt.Sprintf("已停止，成功处理 %d 个", summary.Succeeded)
	} else {
		summary.Message = fmt.Sprintf("批量处理完成，成功 %d 个", summary.Succeeded)
	}
	log.GetLogger().Info("batch finished", zap.String("kind", string(opts.Kind)), zap.String("state", string(summary.State)),
		zap.Int("total", summary.Total), zap.Int("succeeded", summary.Succeeded), zap.Int("failed", summary.Failed))
	emit(types.BatchEvent{Type: types.BatchEventFinished, Total: len(indexes), Succeeded: summary.Succeeded, Summary: &summary})
	return working, summary
}
