package service

import (
	"context"
	"fmt"
	"strings"

	"llm-tracker/internal/model"
)

// 模型既没给文本也没给任何可接受的函数调用时的兜底回复
const fallbackReply = "I'm sorry, I couldn't process that request."

// InterpretOutcome 解析结果：给用户的回复文本 + 按产出顺序排列的意图列表
type InterpretOutcome struct {
	Reply   string
	Intents []Intent
}

// Interpreter 把一条新消息和状态快照交给外部模型，解析出结构化意图
type Interpreter struct {
	client LLMClient
}

func NewInterpreter(client LLMClient) *Interpreter {
	return &Interpreter{client: client}
}

func (i *Interpreter) Interpret(ctx context.Context, message string, snapshot *ContextSnapshot) (*InterpretOutcome, error) {
	system := buildSystemPrompt(snapshot)
	reply, err := i.client.GenerateContent(ctx, system, snapshot.RecentMessages, message)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInterpretation, err)
	}

	// 缺必填字段或类型不对的调用直接丢弃，不算请求级错误
	var intents []Intent
	for _, call := range reply.Calls {
		if intent, ok := parseToolCall(call); ok {
			intents = append(intents, intent)
		}
	}

	text := strings.TrimSpace(reply.Text)
	if text == "" {
		if len(intents) > 0 {
			text = summarizeIntents(intents)
		} else {
			text = fallbackReply
		}
	}

	return &InterpretOutcome{Reply: text, Intents: intents}, nil
}

func parseToolCall(call ToolCall) (Intent, bool) {
	if call.Args == nil {
		return Intent{}, false
	}

	switch call.Name {
	case IntentCreateTask:
		title, ok := argString(call.Args, "title")
		if !ok || title == "" {
			return Intent{}, false
		}
		intent := Intent{Type: IntentCreateTask, Title: title}
		intent.Description, _ = argString(call.Args, "description")
		if priority, ok := argString(call.Args, "priority"); ok {
			if !model.ValidPriority(priority) {
				return Intent{}, false
			}
			intent.Priority = priority
		}
		return intent, true

	case IntentUpdateTask:
		taskID, ok := argTaskID(call.Args)
		if !ok {
			return Intent{}, false
		}
		intent := Intent{Type: IntentUpdateTask, TaskID: taskID}
		if title, ok := argString(call.Args, "title"); ok && title != "" {
			intent.NewTitle = &title
		}
		if description, ok := argString(call.Args, "description"); ok {
			intent.NewDescription = &description
		}
		if status, ok := argString(call.Args, "status"); ok {
			if !model.ValidStatus(status) {
				return Intent{}, false
			}
			intent.NewStatus = &status
		}
		if priority, ok := argString(call.Args, "priority"); ok {
			if !model.ValidPriority(priority) {
				return Intent{}, false
			}
			intent.NewPriority = &priority
		}
		return intent, true

	case IntentDeleteTask:
		taskID, ok := argTaskID(call.Args)
		if !ok {
			return Intent{}, false
		}
		return Intent{Type: IntentDeleteTask, TaskID: taskID}, true

	case IntentAddNote:
		taskID, ok := argTaskID(call.Args)
		if !ok {
			return Intent{}, false
		}
		content, ok := argString(call.Args, "content")
		if !ok || content == "" {
			return Intent{}, false
		}
		return Intent{Type: IntentAddNote, TaskID: taskID, Content: content}, true
	}

	return Intent{}, false
}

// summarizeIntents 模型只给了函数调用没给文本时，拼一条人类可读的摘要
func summarizeIntents(intents []Intent) string {
	parts := make([]string, 0, len(intents))
	for _, intent := range intents {
		switch intent.Type {
		case IntentCreateTask:
			parts = append(parts, fmt.Sprintf("Created task %q", intent.Title))
		case IntentUpdateTask:
			parts = append(parts, fmt.Sprintf("Updated task #%d", intent.TaskID))
		case IntentDeleteTask:
			parts = append(parts, fmt.Sprintf("Deleted task #%d", intent.TaskID))
		case IntentAddNote:
			parts = append(parts, fmt.Sprintf("Added a note to task #%d", intent.TaskID))
		}
	}
	return strings.Join(parts, ". ") + "."
}

func argString(args map[string]interface{}, key string) (string, bool) {
	value, ok := args[key].(string)
	return value, ok
}

// argTaskID 读取 task_id，必须是正数。Gemini 的参数经 JSON 解码后数字是 float64
func argTaskID(args map[string]interface{}) (uint, bool) {
	switch v := args["task_id"].(type) {
	case float64:
		if v <= 0 {
			return 0, false
		}
		return uint(v), true
	case int64:
		if v <= 0 {
			return 0, false
		}
		return uint(v), true
	case int:
		if v <= 0 {
			return 0, false
		}
		return uint(v), true
	}
	return 0, false
}
