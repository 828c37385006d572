package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"beacon-core/internal/handler/response"
	"beacon-core/internal/service/beacon"
	"beacon-core/pkg/errno"
)

// StatusProvider 由 beacon.Beacon 实现
type StatusProvider interface {
	Status() beacon.Status
}

type StatusHandler struct {
	provider StatusProvider
	version  string
}

func NewStatusHandler(p StatusProvider, version string) *StatusHandler {
	return &StatusHandler{provider: p, version: version}
}

// Health 只要还没有任何节点同步成功就返回 503
func (h *StatusHandler) Health(c *gin.Context) {
	st := h.provider.Status()
	if len(st.Nodes) == 0 && st.Last != nil {
		response.Error(c, http.StatusServiceUnavailable, errno.ErrEmptySnapshotStore)
		return
	}
	response.Success(c, gin.H{
		"status":  "UP",
		"version": h.version,
		"service": "beacon",
	})
}

// Status 当前各节点快照、历史最高高度以及最近一次周期结果
func (h *StatusHandler) Status(c *gin.Context) {
	response.Success(c, h.provider.Status())
}
