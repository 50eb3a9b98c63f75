package handler

import (
	"net/http"

	"llm-tracker/internal/store"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	store *store.Store
}

func NewAdminHandler(st *store.Store) *AdminHandler {
	return &AdminHandler{store: st}
}

// ResetAll 清空全部数据并重置自增序列
func (h *AdminHandler) ResetAll(c *gin.Context) {
	if err := h.store.ResetAll(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "All data has been reset"})
}
