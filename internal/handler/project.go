package handler

import (
	"storyshot-ai/internal/dto"
	"storyshot-ai/internal/response"

	"github.com/gin-gonic/gin"
)

func (h Handler) CreateProject(c *gin.Context) {
	var req dto.CreateProjectReq
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.Service.CreateProject(c.Request.Context(), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	ok(c, dto.ProjectResData{Project: p})
}

func (h Handler) ListProjects(c *gin.Context) {
	list, err := h.Service.ListProjects(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	ok(c, dto.ProjectListResData{Projects: list})
}

func (h Handler) GetProject(c *gin.Context) {
	p, err := h.Service.GetProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	ok(c, dto.ProjectResData{Project: p})
}

func (h Handler) UpdateProject(c *gin.Context) {
	var req dto.UpdateProjectReq
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.Service.UpdateProject(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	ok(c, dto.ProjectResData{Project: p})
}

// SetProjectStep 切换向导步骤
func (h Handler) SetProjectStep(c *gin.Context) {
	var req dto.SetProjectStepReq
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.Service.SetProjectStep(c.Request.Context(), c.Param("id"), req.Step)
	if err != nil {
		response.Fail(c, err)
		return
	}
	ok(c, dto.ProjectResData{Project: p})
}

func (h Handler) DeleteProject(c *gin.Context) {
	if err := h.Service.DeleteProject(c.Request.Context(), c.Param("id")); err != nil {
		response.Fail(c, err)
		return
	}
	ok(c, nil)
}
