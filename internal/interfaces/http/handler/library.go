package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"fairybook-api/internal/application/library"
	"fairybook-api/internal/domain/service"
	"fairybook-api/internal/interfaces/http/dto"
)

// LibraryHandler 作品库
type LibraryHandler struct {
	library *library.Service
	loc     *time.Location
}

func NewLibraryHandler(svc *library.Service, loc *time.Location) *LibraryHandler {
	return &LibraryHandler{library: svc, loc: loc}
}

// List 登录用户只看自己的作品，匿名时返回全部
// @Summary 作品库
// @Tags Library
// @Produce json
// @Param limit query int false "条数" default(50)
// @Success 200 {object} dto.LibraryListResponse
// @Router /api/library [get]
func (h *LibraryHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	entries, err := h.library.List(ctx, service.SessionFromContext(ctx).UID(), dto.BindLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}
	dto.OK(c, dto.LibraryListResponse{Entries: dto.NewLibraryEntries(entries, h.loc)})
}

// RecordExport 记录一次导出
// @Summary 记录导出
// @Tags Library
// @Accept json
// @Produce json
// @Param body body dto.RecordExportRequest true "导出信息"
// @Success 201 {object} dto.RecordExportResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/library [post]
func (h *LibraryHandler) RecordExport(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.RecordExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	session := service.SessionFromContext(ctx)
	in := library.ExportInput{
		AuthorUID:   session.UID(),
		Title:       req.Title,
		StageCount:  req.StageCount,
		StageNames:  req.StageNames,
		DownloadURL: req.DownloadURL,
	}
	if session.User != nil {
		in.AuthorName = session.User.DisplayName
	}

	entry, err := h.library.RecordExport(ctx, in)
	if err != nil {
		respondError(c, err)
		return
	}
	dto.Created(c, dto.RecordExportResponse{Entry: dto.NewLibraryEntry(entry, h.loc)})
}
