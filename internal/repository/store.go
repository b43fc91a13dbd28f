// Package repository 提供数据访问层的实现
// 封装所有与数据库的交互操作
package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store 聚合所有仓库
// 同一个 Store 内的仓库共享同一个数据库句柄，
// Transaction 回调里拿到的 Store 则共享同一个事务
type Store struct {
	db *gorm.DB

	Conversations *ConversationRepository
	Messages      *MessageRepository
	Prompts       *PromptRepository
	Endpoints     *EndpointRepository
}

// NewStore 创建 Store 实例
// 参数:
//   - db: GORM 数据库连接，由 main 创建后显式传入
//
// 返回:
//   - *Store: 仓库集合
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:            db,
		Conversations: NewConversationRepository(db),
		Messages:      NewMessageRepository(db),
		Prompts:       NewPromptRepository(db),
		Endpoints:     NewEndpointRepository(db),
	}
}

// Transaction 在一个事务中执行 fn
// fn 返回 nil 时提交，返回错误或 panic 时回滚
// 参数:
//   - ctx: 上下文
//   - fn: 事务回调，参数是绑定到事务的 Store
//
// 返回:
//   - error: fn 的错误或提交失败的错误
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

// Ping 检查数据库连接是否可用
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
