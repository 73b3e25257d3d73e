package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"fairybook-api/internal/application/motd"
	"fairybook-api/internal/interfaces/http/dto"
)

// MOTDHandler 公告
type MOTDHandler struct {
	motd *motd.Service
	loc  *time.Location
}

func NewMOTDHandler(svc *motd.Service, loc *time.Location) *MOTDHandler {
	return &MOTDHandler{motd: svc, loc: loc}
}

// Get 当前公告，未发布时 motd 为 null
// @Summary 当前公告
// @Tags MOTD
// @Produce json
// @Success 200 {object} dto.MOTDResponse
// @Router /api/motd [get]
func (h *MOTDHandler) Get(c *gin.Context) {
	m, err := h.motd.Current(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	dto.OK(c, dto.MOTDResponse{MOTD: dto.NewMOTD(m, h.loc)})
}
