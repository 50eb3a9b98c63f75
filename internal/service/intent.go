package service

import (
	"llm-tracker/internal/model"
)

// 意图类型：模型通过函数调用表达的任务变更请求
const (
	IntentCreateTask = "create_task"
	IntentUpdateTask = "update_task"
	IntentDeleteTask = "delete_task"
	IntentAddNote    = "add_note"
)

// Intent 一条待执行的变更请求。只是请求，不是结果：
// 引用了不存在任务的意图会被静默丢弃，不会中断整批执行。
type Intent struct {
	Type string

	// create_task
	Title       string
	Description string
	Priority    string

	// update_task / delete_task / add_note 的目标任务
	TaskID uint

	// update_task 的可选变更，nil 表示该字段不动
	NewTitle       *string
	NewDescription *string
	NewStatus      *string
	NewPriority    *string

	// add_note
	Content string
}

// 副作用类型
const (
	EffectCreated   = "created"
	EffectUpdated   = "updated"
	EffectDeleted   = "deleted"
	EffectNoteAdded = "note_added"
)

// SideEffect 一条真正落库的变更记录。deleted 携带删除前的任务快照
type SideEffect struct {
	Type string          `json:"type"`
	Task model.Task      `json:"task"`
	Note *model.TaskNote `json:"note,omitempty"`
}

// ChatResult processMessage 的完整返回：助手回复 + 本次落库的副作用列表
type ChatResult struct {
	Message     model.ChatMessage `json:"message"`
	SideEffects []SideEffect      `json:"sideEffects"`
}
