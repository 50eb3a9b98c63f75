package service

import (
	"context"
	"fmt"

	"llm-tracker/internal/model"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ToolCall 模型返回的一次结构化函数调用
type ToolCall struct {
	Name string
	Args map[string]interface{}
}

// LLMReply 模型的原始输出：自由文本和零或多次函数调用
type LLMReply struct {
	Text  string
	Calls []ToolCall
}

// LLMClient 外部自然语言解析服务的最小能力接口。
// 管线的正确性（幂等、原子性）只依赖这个契约，测试用确定性的假实现替换。
type LLMClient interface {
	GenerateContent(ctx context.Context, system string, history []model.ChatMessage, message string) (*LLMReply, error)
}

// GeminiClient 基于 Gemini 函数调用的 LLMClient 实现
type GeminiClient struct {
	client    *genai.Client
	modelName string
}

func NewGeminiClient(ctx context.Context, apiKey, modelName string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("创建Gemini客户端失败: %w", err)
	}
	return &GeminiClient{client: client, modelName: modelName}, nil
}

func (c *GeminiClient) GenerateContent(ctx context.Context, system string, history []model.ChatMessage, message string) (*LLMReply, error) {
	// SystemInstruction 是模型级状态，每次请求构建独立的模型实例避免并发互踩
	m := c.client.GenerativeModel(c.modelName)
	m.SetTemperature(0.2)
	m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	m.Tools = []*genai.Tool{{FunctionDeclarations: taskToolDeclarations()}}

	session := m.StartChat()
	session.History = make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		role := "user"
		if msg.Role == model.RoleAssistant {
			role = "model"
		}
		session.History = append(session.History, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(msg.Content)},
		})
	}

	resp, err := session.SendMessage(ctx, genai.Text(message))
	if err != nil {
		return nil, fmt.Errorf("调用Gemini失败: %w", err)
	}

	reply := &LLMReply{}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return reply, nil
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		switch p := part.(type) {
		case genai.Text:
			reply.Text += string(p)
		case genai.FunctionCall:
			reply.Calls = append(reply.Calls, ToolCall{Name: p.Name, Args: p.Args})
		}
	}
	return reply, nil
}

// taskToolDeclarations 固定的函数调用词表：create_task/update_task/delete_task/add_note
func taskToolDeclarations() []*genai.FunctionDeclaration {
	return []*genai.FunctionDeclaration{
		{
			Name:        "create_task",
			Description: "Create a new task. Use when the user asks to add, create, or make a new task/todo/item.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"title":       {Type: genai.TypeString, Description: "Short descriptive title for the task"},
					"description": {Type: genai.TypeString, Description: "Optional longer description or notes"},
					"priority":    {Type: genai.TypeString, Description: "Priority level", Enum: []string{"low", "medium", "high"}},
				},
				Required: []string{"title"},
			},
		},
		{
			Name:        "update_task",
			Description: "Update an existing task. Use to change title, description, status, or priority. Use status 'done' to mark a task as complete, 'in_progress' to mark as started.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"task_id":     {Type: genai.TypeNumber, Description: "The ID of the task to update"},
					"title":       {Type: genai.TypeString, Description: "New title"},
					"description": {Type: genai.TypeString, Description: "New description"},
					"status":      {Type: genai.TypeString, Description: "New status", Enum: []string{"todo", "in_progress", "done"}},
					"priority":    {Type: genai.TypeString, Description: "New priority", Enum: []string{"low", "medium", "high"}},
				},
				Required: []string{"task_id"},
			},
		},
		{
			Name:        "delete_task",
			Description: "Permanently delete a task. Only use when the user explicitly asks to delete or remove a task.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"task_id": {Type: genai.TypeNumber, Description: "The ID of the task to delete"},
				},
				Required: []string{"task_id"},
			},
		},
		{
			Name:        "add_note",
			Description: "Append a note to an existing task. Use when the user wants to add a note, detail, update, or context to a task. Do NOT use update_task to change the description for this.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"task_id": {Type: genai.TypeNumber, Description: "The ID of the task to annotate"},
					"content": {Type: genai.TypeString, Description: "The note content"},
				},
				Required: []string{"task_id", "content"},
			},
		},
	}
}
