package model

import (
	"time"
)

// 对话角色
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage 对话记录表 - 只增不改的日志
type ChatMessage struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Role      string    `gorm:"type:varchar(20);not null" json:"role"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// CachedResponse 幂等缓存表 - 以规范化消息的摘要为主键。
// 同一摘要至多存在一条记录；重复写入必须触发唯一键冲突而不是覆盖。
type CachedResponse struct {
	Digest       string    `gorm:"primaryKey;type:varchar(64)" json:"digest"`
	ResponseJSON string    `gorm:"type:longtext;not null" json:"responseJson"`
	CreatedAt    time.Time `json:"createdAt"`
}
