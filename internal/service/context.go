package service

import (
	"llm-tracker/internal/model"
	"llm-tracker/internal/store"
)

// ContextSnapshot 解析一条新消息所需的最小状态快照
type ContextSnapshot struct {
	Tasks          []model.Task
	NoteCounts     map[uint]int
	RecentMessages []model.ChatMessage
}

// ContextAssembler 纯读取的快照组装器，不产生任何副作用
type ContextAssembler struct {
	store        *store.Store
	historyLimit int
}

func NewContextAssembler(st *store.Store, historyLimit int) *ContextAssembler {
	return &ContextAssembler{store: st, historyLimit: historyLimit}
}

func (a *ContextAssembler) Assemble() (*ContextSnapshot, error) {
	tasks, err := a.store.ListTasks()
	if err != nil {
		return nil, err
	}
	counts, err := a.store.NoteCountsByTask()
	if err != nil {
		return nil, err
	}
	messages, err := a.store.RecentMessages(a.historyLimit)
	if err != nil {
		return nil, err
	}
	return &ContextSnapshot{
		Tasks:          tasks,
		NoteCounts:     counts,
		RecentMessages: messages,
	}, nil
}
