package store

import (
	"context"
	"errors"
	"fmt"

	"llm-tracker/internal/model"

	"gorm.io/gorm"
)

// Store 任务/备注/对话/幂等缓存的统一持久层。
// 所有写操作要么走单条语句，要么在 RunAtomic 的事务内执行。
type Store struct {
	db *gorm.DB
}

func New(gormDB *gorm.DB) *Store {
	return &Store{db: gormDB}
}

// RunAtomic 在一个事务内执行 fn，fn 收到的是绑定到该事务的 Store。
// fn 返回错误时整个事务回滚，任何写入都不会落库。
func (s *Store) RunAtomic(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// ---------- 任务 ----------

func (s *Store) ListTasks() ([]model.Task, error) {
	var tasks []model.Task
	if err := s.db.Order("created_at DESC, id DESC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("查询任务列表失败: %w", err)
	}
	return tasks, nil
}

// GetTask 按 ID 查询任务，不存在时返回 (nil, nil)
func (s *Store) GetTask(id uint) (*model.Task, error) {
	var task model.Task
	err := s.db.First(&task, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("查询任务失败: %w", err)
	}
	return &task, nil
}

func (s *Store) CreateTask(task *model.Task) error {
	if err := s.db.Create(task).Error; err != nil {
		return fmt.Errorf("创建任务失败: %w", err)
	}
	return nil
}

// UpdateTask 只更新 updates 中出现的字段，返回更新后的任务。
// 任务不存在时返回 (nil, nil)。
func (s *Store) UpdateTask(id uint, updates map[string]interface{}) (*model.Task, error) {
	if len(updates) > 0 {
		result := s.db.Model(&model.Task{}).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			return nil, fmt.Errorf("更新任务失败: %w", result.Error)
		}
	}
	return s.GetTask(id)
}

// DeleteTask 删除任务及其全部备注，返回是否真的删掉了行
func (s *Store) DeleteTask(id uint) (bool, error) {
	if err := s.db.Where("task_id = ?", id).Delete(&model.TaskNote{}).Error; err != nil {
		return false, fmt.Errorf("删除任务备注失败: %w", err)
	}
	result := s.db.Delete(&model.Task{}, id)
	if result.Error != nil {
		return false, fmt.Errorf("删除任务失败: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// ---------- 备注 ----------

func (s *Store) ListNotes(taskID uint) ([]model.TaskNote, error) {
	var notes []model.TaskNote
	err := s.db.Where("task_id = ?", taskID).Order("created_at ASC, id ASC").Find(&notes).Error
	if err != nil {
		return nil, fmt.Errorf("查询备注失败: %w", err)
	}
	return notes, nil
}

func (s *Store) CreateNote(taskID uint, content string) (*model.TaskNote, error) {
	note := &model.TaskNote{TaskID: taskID, Content: content}
	if err := s.db.Create(note).Error; err != nil {
		return nil, fmt.Errorf("创建备注失败: %w", err)
	}
	return note, nil
}

// NoteCountsByTask 统计每个任务的备注数量
func (s *Store) NoteCountsByTask() (map[uint]int, error) {
	var rows []struct {
		TaskID uint `gorm:"column:task_id"`
		Cnt    int  `gorm:"column:cnt"`
	}
	err := s.db.Model(&model.TaskNote{}).
		Select("task_id, COUNT(*) as cnt").
		Group("task_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("统计备注数量失败: %w", err)
	}

	counts := make(map[uint]int, len(rows))
	for _, row := range rows {
		counts[row.TaskID] = row.Cnt
	}
	return counts, nil
}

// ---------- 对话 ----------

// RecentMessages 返回最近 limit 条对话，按时间从旧到新排列
func (s *Store) RecentMessages(limit int) ([]model.ChatMessage, error) {
	var messages []model.ChatMessage
	err := s.db.Order("id DESC").Limit(limit).Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("查询对话记录失败: %w", err)
	}
	// 倒序查出来的，翻回时间正序
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (s *Store) AppendMessage(role, content string) (*model.ChatMessage, error) {
	message := &model.ChatMessage{Role: role, Content: content}
	if err := s.db.Create(message).Error; err != nil {
		return nil, fmt.Errorf("写入对话记录失败: %w", err)
	}
	return message, nil
}

// ---------- 幂等缓存 ----------

// FindCachedResponse 按摘要查缓存，第二个返回值表示是否命中
func (s *Store) FindCachedResponse(digest string) (string, bool, error) {
	var cached model.CachedResponse
	err := s.db.First(&cached, "digest = ?", digest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("查询幂等缓存失败: %w", err)
	}
	return cached.ResponseJSON, true, nil
}

// StoreCachedResponse 写入缓存。同一摘要重复写入会触发唯一键冲突
// （gorm.ErrDuplicatedKey），由调用方决定如何收场。
func (s *Store) StoreCachedResponse(digest, responseJSON string) error {
	cached := &model.CachedResponse{Digest: digest, ResponseJSON: responseJSON}
	return s.db.Create(cached).Error
}

// ---------- 重置 ----------

// ResetAll 清空全部表并重置自增序列
func (s *Store) ResetAll(ctx context.Context) error {
	err := s.RunAtomic(ctx, func(tx *Store) error {
		for _, table := range []string{"cached_responses", "chat_messages", "task_notes", "tasks"} {
			if err := tx.db.Exec("DELETE FROM " + table).Error; err != nil {
				return fmt.Errorf("清空表 %s 失败: %w", table, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	// 序列重置是尽力而为：sqlite 未用过 AUTOINCREMENT 时该表不存在，
	// mysql 的 ALTER 会隐式提交，所以都放在事务之外
	switch s.db.Dialector.Name() {
	case "sqlite":
		_ = s.db.Exec("DELETE FROM sqlite_sequence").Error
	case "mysql":
		for _, table := range []string{"chat_messages", "task_notes", "tasks"} {
			_ = s.db.Exec("ALTER TABLE " + table + " AUTO_INCREMENT = 1").Error
		}
	}
	return nil
}
