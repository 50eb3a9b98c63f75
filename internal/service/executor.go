package service

import (
	"llm-tracker/internal/model"
	"llm-tracker/internal/store"
)

// executeIntents 按解析产出的顺序执行意图，每条成功落库的意图产出一条副作用。
// 目标任务不存在的意图静默跳过；预期之外的存储错误中断整批，由外层事务回滚。
func executeIntents(tx *store.Store, intents []Intent) ([]SideEffect, error) {
	// 空批也要序列化成 []，缓存的响应里 sideEffects 永远是数组
	effects := make([]SideEffect, 0, len(intents))

	for _, intent := range intents {
		switch intent.Type {
		case IntentCreateTask:
			priority := intent.Priority
			if priority == "" {
				priority = model.PriorityMedium
			}
			task := &model.Task{
				Title:       intent.Title,
				Description: intent.Description,
				Status:      model.StatusTodo,
				Priority:    priority,
			}
			if err := tx.CreateTask(task); err != nil {
				return nil, err
			}
			effects = append(effects, SideEffect{Type: EffectCreated, Task: *task})

		case IntentUpdateTask:
			updates := map[string]interface{}{}
			if intent.NewTitle != nil {
				updates["title"] = *intent.NewTitle
			}
			if intent.NewDescription != nil {
				updates["description"] = *intent.NewDescription
			}
			if intent.NewStatus != nil {
				updates["status"] = *intent.NewStatus
			}
			if intent.NewPriority != nil {
				updates["priority"] = *intent.NewPriority
			}
			task, err := tx.UpdateTask(intent.TaskID, updates)
			if err != nil {
				return nil, err
			}
			if task == nil {
				continue
			}
			effects = append(effects, SideEffect{Type: EffectUpdated, Task: *task})

		case IntentDeleteTask:
			task, err := tx.GetTask(intent.TaskID)
			if err != nil {
				return nil, err
			}
			if task == nil {
				continue
			}
			if _, err := tx.DeleteTask(intent.TaskID); err != nil {
				return nil, err
			}
			effects = append(effects, SideEffect{Type: EffectDeleted, Task: *task})

		case IntentAddNote:
			task, err := tx.GetTask(intent.TaskID)
			if err != nil {
				return nil, err
			}
			if task == nil {
				continue
			}
			note, err := tx.CreateNote(intent.TaskID, intent.Content)
			if err != nil {
				return nil, err
			}
			effects = append(effects, SideEffect{Type: EffectNoteAdded, Task: *task, Note: note})
		}
	}

	return effects, nil
}
