package dto

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// CatalogQuery 目录抽样参数
type CatalogQuery struct {
	Count int
	Stage string
}

// BindCatalogQuery 解析 ?count=N&stage=S，count 无效时取 0 交由目录使用默认值
func BindCatalogQuery(c *gin.Context) CatalogQuery {
	return CatalogQuery{
		Count: parseIntWithDefault(c.Query("count"), 0),
		Stage: strings.TrimSpace(c.Query("stage")),
	}
}

// BindLimit 解析 ?limit=N
func BindLimit(c *gin.Context) int {
	return parseIntWithDefault(c.Query("limit"), 0)
}

// parseIntWithDefault 解析整数，失败时返回默认值
func parseIntWithDefault(s string, defaultVal int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}
