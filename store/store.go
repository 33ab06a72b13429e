// Package store 是会话 / 消息 / 记忆的持久化协作方。
// 路由核心（llm 包）不直接依赖它：store 负责把存储记录加载成
// llm.ConversationData，再交给调度器消费。
package store

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/BaSui01/chimera/llm"
)

type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// Open 打开（或创建）sqlite 数据库并完成表迁移。
// path 传 ":memory:" 时使用内存库，测试用。
func Open(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if err := db.AutoMigrate(&Conversation{}, &ChatMessage{}, &Memory{}, &InjectedMemory{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// DB 暴露底层句柄，供上层做事务组合。
func (s *Store) DB() *gorm.DB { return s.db }

// CreateConversation 新建会话，ID 为 UUID。
func (s *Store) CreateConversation(title, modelID string) (*Conversation, error) {
	conv := &Conversation{
		ID:      uuid.NewString(),
		Title:   title,
		ModelID: modelID,
	}
	if err := s.db.Create(conv).Error; err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	return conv, nil
}

// AppendMessage 追加一条消息并刷新会话的更新时间。
func (s *Store) AppendMessage(convID string, role llm.Role, content string) error {
	msg := &ChatMessage{
		ConversationID: convID,
		Role:           string(role),
		Content:        content,
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return fmt.Errorf("append message: %w", err)
		}
		return tx.Model(&Conversation{}).
			Where("id = ?", convID).
			Update("updated_at", msg.Timestamp).Error
	})
}

// RecentMessages 返回最近 limit 条消息，按时间顺序（最旧在前）。
func (s *Store) RecentMessages(convID string, limit int) ([]llm.Message, error) {
	var rows []ChatMessage
	err := s.db.
		Where("conversation_id = ?", convID).
		Order("timestamp DESC, id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load recent messages: %w", err)
	}
	// 倒序查询后还原为时间顺序
	out := make([]llm.Message, len(rows))
	for i, row := range rows {
		out[len(rows)-1-i] = llm.Message{
			Role:      llm.Role(row.Role),
			Content:   row.Content,
			Timestamp: row.Timestamp,
		}
	}
	return out, nil
}

// CreateMemory 新建记忆片段。
func (s *Store) CreateMemory(title, content string) (*Memory, error) {
	m := &Memory{Title: title, Content: content}
	if err := s.db.Create(m).Error; err != nil {
		return nil, fmt.Errorf("create memory: %w", err)
	}
	return m, nil
}

// AttachMemory 把记忆挂载到会话。
func (s *Store) AttachMemory(convID string, memoryID uint, active bool) (*InjectedMemory, error) {
	link := &InjectedMemory{
		ConversationID: convID,
		MemoryID:       memoryID,
		Active:         active,
	}
	if err := s.db.Create(link).Error; err != nil {
		return nil, fmt.Errorf("attach memory: %w", err)
	}
	return link, nil
}

// SetInjectionActive 切换挂载记忆的激活状态。
func (s *Store) SetInjectionActive(linkID uint, active bool) error {
	return s.db.Model(&InjectedMemory{}).
		Where("id = ?", linkID).
		Update("active", active).Error
}

// ActiveInjectedMemories 返回会话当前激活的注入记忆。
func (s *Store) ActiveInjectedMemories(convID string) ([]llm.InjectedMemory, error) {
	links, err := s.loadLinks(convID, true)
	if err != nil {
		return nil, err
	}
	return links, nil
}

// ConversationData 把存储记录加载成调度器消费的纯数据形态：
// 模型标识、完整时间序历史、全部挂载记忆（含激活标记）。
func (s *Store) ConversationData(convID string) (llm.ConversationData, error) {
	var conv Conversation
	if err := s.db.First(&conv, "id = ?", convID).Error; err != nil {
		return llm.ConversationData{}, fmt.Errorf("load conversation %s: %w", convID, err)
	}

	var rows []ChatMessage
	if err := s.db.
		Where("conversation_id = ?", convID).
		Order("timestamp ASC, id ASC").
		Find(&rows).Error; err != nil {
		return llm.ConversationData{}, fmt.Errorf("load messages: %w", err)
	}
	history := make([]llm.Message, len(rows))
	for i, row := range rows {
		history[i] = llm.Message{
			Role:      llm.Role(row.Role),
			Content:   row.Content,
			Timestamp: row.Timestamp,
		}
	}

	memories, err := s.loadLinks(convID, false)
	if err != nil {
		return llm.ConversationData{}, err
	}

	return llm.ConversationData{
		ModelID:  conv.ModelID,
		History:  history,
		Memories: memories,
	}, nil
}

func (s *Store) loadLinks(convID string, activeOnly bool) ([]llm.InjectedMemory, error) {
	query := s.db.Preload("Memory").Where("conversation_id = ?", convID)
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	var links []InjectedMemory
	if err := query.Order("id ASC").Find(&links).Error; err != nil {
		return nil, fmt.Errorf("load memory links: %w", err)
	}
	out := make([]llm.InjectedMemory, len(links))
	for i, link := range links {
		out[i] = llm.InjectedMemory{
			Title:   link.Memory.Title,
			Content: link.Memory.Content,
			Active:  link.Active,
		}
	}
	return out, nil
}
