package service

import (
	"llm-tracker/internal/model"
	"llm-tracker/internal/store"
)

// TaskService 任务面板的读取和状态切换，供 HTTP 边界直接调用。
// 这些操作不经过聊天管线，也不参与幂等缓存。
type TaskService struct {
	store *store.Store
}

func NewTaskService(st *store.Store) *TaskService {
	return &TaskService{store: st}
}

func (s *TaskService) ListTasks() ([]model.Task, error) {
	return s.store.ListTasks()
}

// GetTaskWithNotes 返回任务及其全部备注（时间正序），任务不存在时返回 (nil, nil, nil)
func (s *TaskService) GetTaskWithNotes(id uint) (*model.Task, []model.TaskNote, error) {
	task, err := s.store.GetTask(id)
	if err != nil || task == nil {
		return task, nil, err
	}
	notes, err := s.store.ListNotes(id)
	if err != nil {
		return nil, nil, err
	}
	return task, notes, nil
}

// UpdateStatus 切换任务状态，任务不存在时返回 (nil, nil)
func (s *TaskService) UpdateStatus(id uint, status string) (*model.Task, error) {
	return s.store.UpdateTask(id, map[string]interface{}{"status": status})
}
