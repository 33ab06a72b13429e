package store

import "time"

// Conversation 是一次用户与 AI 的会话。
// ModelID 记录该会话绑定的模型标识，路由核心据此解析 provider。
type Conversation struct {
	ID        string `gorm:"primaryKey;size:36"`
	Title     string `gorm:"size:255"`
	ModelID   string `gorm:"size:128;index"`
	CreatedAt time.Time
	UpdatedAt time.Time `gorm:"index"`

	Messages    []ChatMessage    `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE"`
	MemoryLinks []InjectedMemory `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE"`
}

// ChatMessage 是会话内的单条消息。
type ChatMessage struct {
	ID             uint   `gorm:"primaryKey"`
	ConversationID string `gorm:"size:36;index:idx_conv_ts,priority:1"`
	Role           string `gorm:"size:20"`
	Content        string `gorm:"type:text"`
	Timestamp      time.Time `gorm:"autoCreateTime;index:idx_conv_ts,priority:2"`
}

// Memory 是可注入会话上下文的记忆片段。
type Memory struct {
	ID        uint   `gorm:"primaryKey"`
	Title     string `gorm:"size:255"`
	Content   string `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// InjectedMemory 把记忆挂载到会话上。
// Active 决定该记忆是否进入上下文块；路由核心只读这个标记。
type InjectedMemory struct {
	ID             uint   `gorm:"primaryKey"`
	ConversationID string `gorm:"size:36;index"`
	MemoryID       uint   `gorm:"index"`
	Memory         Memory `gorm:"foreignKey:MemoryID"`
	Active         bool   `gorm:"index"`
	CreatedAt      time.Time
}
