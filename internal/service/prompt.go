package service

import (
	"fmt"
	"strings"
)

// buildSystemPrompt 构建给模型的系统提示词：逐条列出当前任务
// （ID/标题/状态/优先级/描述/备注数）以及行为规则
func buildSystemPrompt(snapshot *ContextSnapshot) string {
	var taskList strings.Builder
	if len(snapshot.Tasks) == 0 {
		taskList.WriteString("No tasks yet.")
	} else {
		for i, t := range snapshot.Tasks {
			if i > 0 {
				taskList.WriteString("\n")
			}
			taskList.WriteString(fmt.Sprintf("  #%d: %q [status=%s, priority=%s]", t.ID, t.Title, t.Status, t.Priority))
			if t.Description != "" {
				taskList.WriteString(" — " + t.Description)
			}
			if count := snapshot.NoteCounts[t.ID]; count > 0 {
				suffix := ""
				if count > 1 {
					suffix = "s"
				}
				taskList.WriteString(fmt.Sprintf(" (%d note%s)", count, suffix))
			}
		}
	}

	return fmt.Sprintf(`You are a helpful task management assistant. You help users manage their tasks through natural conversation.

## Current Tasks
%s

## Rules
- When the user wants to create a task, call create_task with a clear title.
- When the user wants to complete/finish a task, call update_task with status="done".
- When the user wants to start working on a task, call update_task with status="in_progress".
- When the user references a task by name, find the best matching task by ID from the list above.
- When the user wants to delete a task, call delete_task.
- When the user wants to add a note, detail, update, or context to a task, call add_note. Do NOT use update_task to change the description for this.
- You can create multiple tasks in one response if the user asks for several.
- If the user asks about their tasks or says something conversational, respond with helpful text WITHOUT calling any tools.
- Keep your text responses concise and friendly.
- If a request is ambiguous (e.g., "mark it as done" but multiple tasks exist), ask for clarification instead of guessing.`, taskList.String())
}
