package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"llm-tracker/internal/model"
	"llm-tracker/internal/store"

	"gorm.io/gorm"
)

// ChatService 聊天消息处理管线：
//
//	消息 -> [快路径幂等检查] -> 组装快照 -> 调模型解析（事务外）
//	     -> [事务内复查缓存 + 执行意图 + 写对话 + 写缓存] -> 响应
//
// 模型调用又慢又不确定，绝不能放进写事务；事务内的缓存复查
// 负责收掉两个同内容并发请求同时越过快路径的竞态：先提交者胜出，
// 后提交者原样返回胜者的缓存响应。
type ChatService struct {
	store       *store.Store
	assembler   *ContextAssembler
	interpreter *Interpreter
}

func NewChatService(st *store.Store, client LLMClient, historyLimit int) *ChatService {
	return &ChatService{
		store:       st,
		assembler:   NewContextAssembler(st, historyLimit),
		interpreter: NewInterpreter(client),
	}
}

// ProcessMessage 处理一条入站消息，返回完整的 {回复, 副作用} 或错误，
// 绝不返回半截结果。同一条消息（规范化后）重复投递不会重复产生副作用。
func (s *ChatService) ProcessMessage(ctx context.Context, message string) (*ChatResult, error) {
	digest := MessageDigest(message)

	// 快路径：完全相同的重试直接吃缓存，不读写任何表、不调模型
	if raw, ok, err := s.store.FindCachedResponse(digest); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	} else if ok {
		return decodeCachedResult(raw)
	}

	snapshot, err := s.assembler.Assemble()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}

	// 此时还没有任何写入，模型调用失败可安全重试，也不会污染缓存
	outcome, err := s.interpreter.Interpret(ctx, message, snapshot)
	if err != nil {
		return nil, err
	}

	var result *ChatResult
	err = s.store.RunAtomic(ctx, func(tx *store.Store) error {
		// 竞态复查：另一个同内容请求可能已经提交
		if raw, ok, err := tx.FindCachedResponse(digest); err != nil {
			return err
		} else if ok {
			cached, err := decodeCachedResult(raw)
			if err != nil {
				return err
			}
			result = cached
			return nil
		}

		effects, err := executeIntents(tx, outcome.Intents)
		if err != nil {
			return err
		}

		if _, err := tx.AppendMessage(model.RoleUser, message); err != nil {
			return err
		}
		assistant, err := tx.AppendMessage(model.RoleAssistant, outcome.Reply)
		if err != nil {
			return err
		}

		result = &ChatResult{Message: *assistant, SideEffects: effects}
		raw, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("序列化响应失败: %w", err)
		}
		return tx.StoreCachedResponse(digest, string(raw))
	})
	if err != nil {
		// 复查和写入之间仍可能被并发提交抢先（取决于数据库的隔离级别），
		// 唯一键冲突意味着胜者已落库，转为返回它的缓存响应
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if raw, ok, lookupErr := s.store.FindCachedResponse(digest); lookupErr == nil && ok {
				return decodeCachedResult(raw)
			}
		}
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}

	return result, nil
}

// decodeCachedResult 缓存里存的是完全独立的序列化快照，
// 后续对任务的修改不会回头改写已缓存的响应
func decodeCachedResult(raw string) (*ChatResult, error) {
	var result ChatResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("%w: 解码缓存响应失败: %v", ErrStore, err)
	}
	return &result, nil
}
