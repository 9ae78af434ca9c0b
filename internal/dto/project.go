package dto

import "storyshot-ai/internal/types"

type CreateProjectReq struct {
	Name           string               `json:"name" binding:"required"`
	CreationMode   string               `json:"creationMode"`
	ScriptContent  string               `json:"scriptContent"`
	StyleSettings  types.StyleSettings  `json:"styleSettings"`
	GenerationMode types.GenerationMode `json:"generationMode"`
	AspectRatio    string               `json:"aspectRatio"`
}

// UpdateProjectReq 只更新非空字段，步骤只能通过 SetProjectStepReq 修改
type UpdateProjectReq struct {
	Name           *string               `json:"name"`
	CreationMode   *string               `json:"creationMode"`
	ScriptContent  *string               `json:"scriptContent"`
	StyleSettings  *types.StyleSettings  `json:"styleSettings"`
	GenerationMode *types.GenerationMode `json:"generationMode"`
	AspectRatio    *string               `json:"aspectRatio"`
}

type SetProjectStepReq struct {
	Step int `json:"step" binding:"required,min=1,max=6"`
}

type ProjectResData struct {
	Project *types.Project `json:"project"`
}

type ProjectListResData struct {
	Projects []*types.Project `json:"projects"`
}
