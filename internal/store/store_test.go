package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"llm-tracker/internal/db"
	"llm-tracker/internal/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestStore(t *testing.T) *Store {
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
	return New(gormDB)
}

func TestTaskCRUD(t *testing.T) {
	st := newTestStore(t)

	task := &model.Task{Title: "buy milk", Status: model.StatusTodo, Priority: model.PriorityMedium}
	if err := st.CreateTask(task); err != nil {
		t.Fatalf("创建失败: %v", err)
	}
	if task.ID == 0 {
		t.Fatal("创建后应回填ID")
	}
	if task.CreatedAt.IsZero() || task.UpdatedAt.IsZero() {
		t.Error("创建后应回填时间戳")
	}

	got, err := st.GetTask(task.ID)
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if got == nil || got.Title != "buy milk" {
		t.Errorf("查询结果不符: %+v", got)
	}

	// 不存在的ID返回 (nil, nil)，不是错误
	missing, err := st.GetTask(9999)
	if err != nil || missing != nil {
		t.Errorf("不存在的任务应返回 nil, got %+v err=%v", missing, err)
	}

	updated, err := st.UpdateTask(task.ID, map[string]interface{}{"status": model.StatusDone})
	if err != nil {
		t.Fatalf("更新失败: %v", err)
	}
	if updated.Status != model.StatusDone || updated.Title != "buy milk" {
		t.Errorf("部分更新结果不符: %+v", updated)
	}

	// 更新不存在的任务返回 nil
	ghost, err := st.UpdateTask(9999, map[string]interface{}{"status": model.StatusDone})
	if err != nil || ghost != nil {
		t.Errorf("更新不存在的任务应返回 nil, got %+v err=%v", ghost, err)
	}

	deleted, err := st.DeleteTask(task.ID)
	if err != nil || !deleted {
		t.Fatalf("删除失败: deleted=%v err=%v", deleted, err)
	}
	deleted, err = st.DeleteTask(task.ID)
	if err != nil || deleted {
		t.Errorf("重复删除应返回 false, got %v err=%v", deleted, err)
	}
}

func TestNotesAndCounts(t *testing.T) {
	st := newTestStore(t)

	taskA := &model.Task{Title: "a", Status: model.StatusTodo, Priority: model.PriorityMedium}
	taskB := &model.Task{Title: "b", Status: model.StatusTodo, Priority: model.PriorityMedium}
	if err := st.CreateTask(taskA); err != nil {
		t.Fatal(err)
	}
	if err := st.CreateTask(taskB); err != nil {
		t.Fatal(err)
	}

	for _, content := range []string{"first", "second"} {
		if _, err := st.CreateNote(taskA.ID, content); err != nil {
			t.Fatalf("创建备注失败: %v", err)
		}
	}

	notes, err := st.ListNotes(taskA.ID)
	if err != nil {
		t.Fatalf("查询备注失败: %v", err)
	}
	// 备注按时间从旧到新排列
	if len(notes) != 2 || notes[0].Content != "first" || notes[1].Content != "second" {
		t.Errorf("备注顺序不符: %+v", notes)
	}

	counts, err := st.NoteCountsByTask()
	if err != nil {
		t.Fatalf("统计失败: %v", err)
	}
	if counts[taskA.ID] != 2 {
		t.Errorf("任务A备注数应为 2, got %d", counts[taskA.ID])
	}
	if _, ok := counts[taskB.ID]; ok {
		t.Error("无备注的任务不应出现在统计里")
	}
}

func TestRecentMessagesOrdering(t *testing.T) {
	st := newTestStore(t)

	for _, content := range []string{"one", "two", "three"} {
		if _, err := st.AppendMessage(model.RoleUser, content); err != nil {
			t.Fatalf("写入失败: %v", err)
		}
	}

	messages, err := st.RecentMessages(2)
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	// 取最近2条，返回顺序仍是从旧到新
	if len(messages) != 2 || messages[0].Content != "two" || messages[1].Content != "three" {
		t.Errorf("最近消息顺序不符: %+v", messages)
	}
}

func TestCachedResponseUniqueness(t *testing.T) {
	st := newTestStore(t)

	if _, ok, err := st.FindCachedResponse("digest-1"); err != nil || ok {
		t.Fatalf("空缓存不应命中: ok=%v err=%v", ok, err)
	}

	if err := st.StoreCachedResponse("digest-1", `{"a":1}`); err != nil {
		t.Fatalf("写入缓存失败: %v", err)
	}

	raw, ok, err := st.FindCachedResponse("digest-1")
	if err != nil || !ok || raw != `{"a":1}` {
		t.Errorf("缓存读取不符: raw=%q ok=%v err=%v", raw, ok, err)
	}

	// 同摘要重复写入必须炸出唯一键冲突，而不是静默覆盖
	err = st.StoreCachedResponse("digest-1", `{"a":2}`)
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Errorf("期望 gorm.ErrDuplicatedKey, got %v", err)
	}
	raw, _, _ = st.FindCachedResponse("digest-1")
	if raw != `{"a":1}` {
		t.Errorf("冲突写入不应改动已有缓存: %q", raw)
	}
}

func TestRunAtomicRollback(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := st.RunAtomic(ctx, func(tx *Store) error {
		if err := tx.CreateTask(&model.Task{Title: "ghost", Status: model.StatusTodo, Priority: model.PriorityMedium}); err != nil {
			return err
		}
		if _, err := tx.AppendMessage(model.RoleUser, "ghost message"); err != nil {
			return err
		}
		if err := tx.StoreCachedResponse("ghost-digest", "{}"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("期望事务返回注入的错误, got %v", err)
	}

	// 回滚后任何写入都不可见
	tasks, _ := st.ListTasks()
	if len(tasks) != 0 {
		t.Errorf("任务写入应已回滚, got %d", len(tasks))
	}
	messages, _ := st.RecentMessages(10)
	if len(messages) != 0 {
		t.Errorf("对话写入应已回滚, got %d", len(messages))
	}
	if _, ok, _ := st.FindCachedResponse("ghost-digest"); ok {
		t.Error("缓存写入应已回滚")
	}
}

func TestResetAll(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	task := &model.Task{Title: "old", Status: model.StatusTodo, Priority: model.PriorityMedium}
	if err := st.CreateTask(task); err != nil {
		t.Fatal(err)
	}
	if _, err := st.CreateNote(task.ID, "note"); err != nil {
		t.Fatal(err)
	}
	if _, err := st.AppendMessage(model.RoleUser, "hi"); err != nil {
		t.Fatal(err)
	}
	if err := st.StoreCachedResponse("d", "{}"); err != nil {
		t.Fatal(err)
	}

	if err := st.ResetAll(ctx); err != nil {
		t.Fatalf("重置失败: %v", err)
	}

	tasks, _ := st.ListTasks()
	messages, _ := st.RecentMessages(10)
	_, cacheHit, _ := st.FindCachedResponse("d")
	if len(tasks) != 0 || len(messages) != 0 || cacheHit {
		t.Errorf("重置后应全部清空: tasks=%d messages=%d cache=%v", len(tasks), len(messages), cacheHit)
	}

	// 自增序列重置，新任务从 1 开始
	fresh := &model.Task{Title: "fresh", Status: model.StatusTodo, Priority: model.PriorityMedium}
	if err := st.CreateTask(fresh); err != nil {
		t.Fatal(err)
	}
	if fresh.ID != 1 {
		t.Errorf("重置后ID应从 1 重新分配, got %d", fresh.ID)
	}
}
