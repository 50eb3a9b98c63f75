package service

import (
	"context"

	"llm-tracker/internal/config"
	"llm-tracker/internal/store"

	"gorm.io/gorm"
)

type ServiceContext struct {
	Store       *store.Store
	ChatService *ChatService
	TaskService *TaskService
}

func NewServiceContext(ctx context.Context, cfg *config.Config, gormDB *gorm.DB) (*ServiceContext, error) {
	llmClient, err := NewGeminiClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
	if err != nil {
		return nil, err
	}

	st := store.New(gormDB)
	return &ServiceContext{
		Store:       st,
		ChatService: NewChatService(st, llmClient, cfg.Chat.HistoryLimit),
		TaskService: NewTaskService(st),
	}, nil
}
