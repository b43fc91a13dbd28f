package database

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"pocket-chat-server/internal/model"
)

// messageOrderIndex messages 表上 (conversation_id, sort_order) 的唯一索引
const messageOrderIndex = "idx_messages_conversation_sort"

// migration 一个版本化的迁移步骤
// up 必须幂等：先检查是否已经生效，再执行变更
type migration struct {
	version int
	name    string
	up      func(tx *gorm.DB) error
}

// migrations 按版本号顺序执行，已发布的步骤不能修改或重新编号
var migrations = []migration{
	{1, "create_core_tables", createCoreTables},
	{2, "add_conversation_system_prompt", addConversationSystemPrompt},
	{3, "add_message_usage_columns", addMessageUsageColumns},
	{4, "create_endpoints_table", createEndpointsTable},
	{5, "add_endpoint_cost_columns", addEndpointCostColumns},
	{6, "add_message_order_index", addMessageOrderIndex},
}

// LatestVersion 当前代码期望的最新迁移版本
func LatestVersion() int {
	return migrations[len(migrations)-1].version
}

// Migrate 执行所有尚未记录的迁移
// 每个步骤在独立事务中执行，并写入 schema_migrations
// 参数:
//   - ctx: 上下文
//   - db: 数据库句柄
//   - log: 日志实例
//
// 返回:
//   - []int: 本次执行的迁移版本号
//   - error: 任一步骤失败时返回错误，已成功的步骤保持提交状态
func Migrate(ctx context.Context, db *gorm.DB, log *zap.Logger) ([]int, error) {
	db = db.WithContext(ctx)

	if !db.Migrator().HasTable(&model.SchemaMigration{}) {
		if err := db.Migrator().CreateTable(&model.SchemaMigration{}); err != nil {
			return nil, fmt.Errorf("failed to create schema_migrations table: %w", err)
		}
	}

	var done []int
	if err := db.Model(&model.SchemaMigration{}).Pluck("version", &done).Error; err != nil {
		return nil, fmt.Errorf("failed to read applied migrations: %w", err)
	}
	applied := make(map[int]bool, len(done))
	for _, v := range done {
		applied[v] = true
	}

	var ran []int
	for _, m := range migrations {
		if applied[m.version] {
			continue
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := m.up(tx); err != nil {
				return err
			}
			return tx.Create(&model.SchemaMigration{
				Version:   m.version,
				Name:      m.name,
				AppliedAt: time.Now().UTC(),
			}).Error
		})
		if err != nil {
			return ran, fmt.Errorf("migration %d (%s) failed: %w", m.version, m.name, err)
		}

		log.Info("applied migration", zap.Int("version", m.version), zap.String("name", m.name))
		ran = append(ran, m.version)
	}

	return ran, nil
}

// createCoreTables 创建会话、消息、图片和提示词库表
// 父表必须先于子表创建，外键约束才能建立
func createCoreTables(tx *gorm.DB) error {
	tables := []interface{}{
		&model.Conversation{},
		&model.Message{},
		&model.MessageImage{},
		&model.SystemPrompt{},
	}
	for _, t := range tables {
		if tx.Migrator().HasTable(t) {
			continue
		}
		if err := tx.Migrator().CreateTable(t); err != nil {
			return err
		}
	}
	return nil
}

// addConversationSystemPrompt 旧库的 conversations 表没有 system_prompt 列
func addConversationSystemPrompt(tx *gorm.DB) error {
	return addColumnIfMissing(tx, &model.Conversation{}, "conversations", "system_prompt", "TEXT NOT NULL DEFAULT ''")
}

// addMessageUsageColumns 为 messages 表补齐 token 和费用列
func addMessageUsageColumns(tx *gorm.DB) error {
	columns := []struct {
		name string
		def  string
	}{
		{"input_tokens", "INTEGER NOT NULL DEFAULT 0"},
		{"output_tokens", "INTEGER NOT NULL DEFAULT 0"},
		{"cost", floatType(tx)},
	}
	for _, c := range columns {
		if err := addColumnIfMissing(tx, &model.Message{}, "messages", c.name, c.def); err != nil {
			return err
		}
	}
	return nil
}

// createEndpointsTable 创建上游端点表
func createEndpointsTable(tx *gorm.DB) error {
	if tx.Migrator().HasTable(&model.Endpoint{}) {
		return nil
	}
	return tx.Migrator().CreateTable(&model.Endpoint{})
}

// addEndpointCostColumns 为 endpoints 表补齐价格列
func addEndpointCostColumns(tx *gorm.DB) error {
	for _, name := range []string{"cost_per_million_input", "cost_per_million_output"} {
		if err := addColumnIfMissing(tx, &model.Endpoint{}, "endpoints", name, floatType(tx)+" NOT NULL DEFAULT 0"); err != nil {
			return err
		}
	}
	return nil
}

// addMessageOrderIndex 旧库没有 (conversation_id, sort_order) 唯一索引
// 如果已有重复的 sort_order，这一步会失败，需要人工处理
func addMessageOrderIndex(tx *gorm.DB) error {
	if tx.Migrator().HasIndex(&model.Message{}, messageOrderIndex) {
		return nil
	}
	return tx.Migrator().CreateIndex(&model.Message{}, messageOrderIndex)
}

// addColumnIfMissing 列不存在时用原始 DDL 添加
// 只在升级旧的 SQLite 库时才会真正执行，新库在建表时已包含全部列
func addColumnIfMissing(tx *gorm.DB, value interface{}, table, column, definition string) error {
	if tx.Migrator().HasColumn(value, column) {
		return nil
	}
	return tx.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, definition)).Error
}

// floatType 返回当前方言下的双精度浮点类型
func floatType(tx *gorm.DB) string {
	switch tx.Dialector.Name() {
	case "mysql":
		return "DOUBLE"
	case "postgres":
		return "DOUBLE PRECISION"
	default:
		return "REAL"
	}
}
