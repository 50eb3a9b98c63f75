package service

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"llm-tracker/internal/db"
	"llm-tracker/internal/model"
	"llm-tracker/internal/store"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// fakeLLM 确定性的 LLMClient 假实现，用来测试管线本身的幂等和原子性
type fakeLLM struct {
	mu    sync.Mutex
	calls int

	delay time.Duration
	reply *LLMReply
	err   error
	fn    func(message string) (*LLMReply, error)
}

func (f *fakeLLM) GenerateContent(ctx context.Context, system string, history []model.ChatMessage, message string) (*LLMReply, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.fn != nil {
		return f.fn(message)
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.reply != nil {
		return f.reply, nil
	}
	return &LLMReply{Text: "ok"}, nil
}

func (f *fakeLLM) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// newTestStore 每个测试一个独立的 sqlite 文件库。
// _txlock=immediate 让并发的写事务在 BEGIN 处排队，配合 busy_timeout
// 模拟生产库"同摘要只有一个提交者"的行为。
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_txlock=immediate",
		filepath.Join(t.TempDir(), "test.db"))
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("打开测试数据库失败: %v", err)
	}
	if err := db.Migrate(gormDB); err != nil {
		t.Fatalf("迁移测试数据库失败: %v", err)
	}

	sqlDB, err := gormDB.DB()
	if err == nil {
		t.Cleanup(func() { _ = sqlDB.Close() })
	}
	return store.New(gormDB)
}

func newTestChatService(t *testing.T, llm LLMClient) (*ChatService, *store.Store) {
	t.Helper()
	st := newTestStore(t)
	return NewChatService(st, llm, 20), st
}
