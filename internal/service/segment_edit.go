package service

import (
	"context"
	"storyshot-ai/internal/apperr"
	"storyshot-ai/internal/types"
	"storyshot-ai/log"
	"storyshot-ai/pkg/util"
	"strings"

	"go.uber.org/zap"
)

// 合并方向
const (
	MergeUp   = "up"
	MergeDown = "down"
)

// CutSegments 在offset（按字符计）处把分镜切成两个新分镜，并重新编号
// @return 新的分镜列表，以及切出来的两个分镜
func CutSegments(segments []types.Segment, segmentId string, offset int) ([]types.Segment, []types.Segment, error) {
	idx := -1
	for i := range segments {
		if segments[i].Id == segmentId {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, nil, apperr.NewNotFoundError("分镜不存在")
	}

	original := segments[idx]
	runes := []rune(original.Text)
	if offset <= 0 || offset >= len(runes) {
		return nil, nil, apperr.NewValidationError("剪切位置无效")
	}
	left := strings.TrimSpace(string(runes[:offset]))
	right := strings.TrimSpace(string(runes[offset:]))
	if left == "" || right == "" {
		return nil, nil, apperr.NewValidationError("剪切后的两段都不能为空")
	}

	// 切出来的是新分镜，原有的描述和素材不再适用
	parts := []types.Segment{
		{Id: util.GenerateID(), Language: original.Language, Text: left},
		{Id: util.GenerateID(), Language: original.Language, Text: right},
	}
	result := make([]types.Segment, 0, len(segments)+1)
	result = append(result, segments[:idx]...)
	result = append(result, parts...)
	result = append(result, segments[idx+1:]...)
	types.Renumber(result)
	return result, []types.Segment{result[idx], result[idx+1]}, nil
}

// MergeSegments 把index处的分镜与上一个或下一个分镜合并，文本以一个空格连接
// index处的分镜保留（沿用其id），相邻分镜被丢弃；合并越界时原样返回
// @return 新的分镜列表，合并后的分镜，是否发生了合并
func MergeSegments(segments []types.Segment, index int, direction string) ([]types.Segment, *types.Segment, bool, error) {
	if index < 0 || index >= len(segments) {
		return nil, nil, false, apperr.NewValidationError("分镜序号超出范围")
	}

	var neighbor int
	switch direction {
	case MergeUp:
		neighbor = index - 1
	case MergeDown:
		neighbor = index + 1
	default:
		return nil, nil, false, apperr.NewValidationError("合并方向只能是 up 或 down")
	}
	result := append([]types.Segment(nil), segments...)
	if neighbor < 0 || neighbor >= len(segments) {
		return result, nil, false, nil
	}

	survivor := result[index]
	if direction == MergeUp {
		survivor.Text = result[neighbor].Text + " " + survivor.Text
	} else {
		survivor.Text = survivor.Text + " " + result[neighbor].Text
	}
	survivor.Translation = ""
	result[index] = survivor

	result = append(result[:neighbor], result[neighbor+1:]...)
	types.Renumber(result)
	merged := result[min(index, neighbor)]
	return result, &merged, true, nil
}

// CutProjectSegment 剪切立即保存，外语分镜的翻译在后台补上
func (s *Service) CutProjectSegment(ctx context.Context, projectId, segmentId string, offset int) ([]types.Segment, error) {
	if err := s.ensureIdle(projectId); err != nil {
		return nil, err
	}
	var parts []types.Segment
	segments, err := s.mutateSegments(ctx, projectId, func(p *types.Project) ([]types.Segment, error) {
		result, cut, err := CutSegments(p.Segments, segmentId, offset)
		parts = cut
		return result, err
	})
	if err != nil {
		return nil, err
	}
	log.GetLogger().Info("segment cut", zap.String("projectId", projectId), zap.String("segmentId", segmentId), zap.Int("offset", offset))
	s.retranslateInBackground(projectId, parts)
	return segments, nil
}

// MergeProjectSegment 合并立即保存，外语分镜的翻译在后台补上
func (s *Service) MergeProjectSegment(ctx context.Context, projectId string, index int, direction string) ([]types.Segment, error) {
	if err := s.ensureIdle(projectId); err != nil {
		return nil, err
	}
	var merged *types.Segment
	segments, err := s.mutateSegments(ctx, projectId, func(p *types.Project) ([]types.Segment, error) {
		result, m, _, err := MergeSegments(p.Segments, index, direction)
		merged = m
		return result, err
	})
	if err != nil {
		return nil, err
	}
	if merged != nil {
		log.GetLogger().Info("segment merged", zap.String("projectId", projectId), zap.String("segmentId", merged.Id), zap.String("direction", direction))
		s.retranslateInBackground(projectId, []types.Segment{*merged})
	}
	return segments, nil
}
