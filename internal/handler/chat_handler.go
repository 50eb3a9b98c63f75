package handler

import (
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"llm-tracker/internal/service"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	chatService   *service.ChatService
	maxMessageLen int
}

func NewChatHandler(chatService *service.ChatService, maxMessageLen int) *ChatHandler {
	return &ChatHandler{chatService: chatService, maxMessageLen: maxMessageLen}
}

// ProcessMessage 处理一条聊天消息。
// 校验在边界完成：空消息/超长消息在进入管线之前就拒绝。
func (h *ChatHandler) ProcessMessage(c *gin.Context) {
	var req struct {
		Message string `json:"message"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required and must be a string"})
		return
	}
	if utf8.RuneCountInString(req.Message) > h.maxMessageLen {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is too long"})
		return
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message must not be empty"})
		return
	}

	result, err := h.chatService.ProcessMessage(c.Request.Context(), message)
	if err != nil {
		// 解析服务失败：还没有任何写入，客户端可安全重试
		if errors.Is(err, service.ErrInterpretation) {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}
