// Package storage 项目数据与生成素材的持久化
package storage

import (
	"context"
	"storyshot-ai/internal/types"
)

// ProjectStore 项目存储，Get返回的是副本，修改后需要调用Update/SaveSegments
type ProjectStore interface {
	Create(ctx context.Context, project *types.Project) error
	Get(ctx context.Context, id string) (*types.Project, error)
	List(ctx context.Context) ([]*types.Project, error)
	Update(ctx context.Context, project *types.Project) error
	// SaveSegments 只覆盖分镜列表
	SaveSegments(ctx context.Context, projectId string, segments []types.Segment) error
	Delete(ctx context.Context, id string) error
}
