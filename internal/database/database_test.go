package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"pocket-chat-server/internal/config"
	"pocket-chat-server/internal/model"
)

func openTestDB(t *testing.T, driver string) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "chat.db")
	db, err := Open(config.DatabaseConfig{Driver: driver, Path: path}, false)
	require.NoError(t, err)
	t.Cleanup(func() { Close(db) })
	return db
}

func TestOpen_CreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "chat.db")

	db, err := Open(config.DatabaseConfig{Driver: config.DriverSQLite, Path: path}, false)
	require.NoError(t, err)
	defer Close(db)

	require.NoError(t, db.Exec("SELECT 1").Error)
	_, err = os.Stat(path)
	assert.NoError(t, err, "database file should exist")
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: "oracle"}, false)
	assert.Error(t, err)
}

func TestOpen_ForeignKeysEnabled(t *testing.T) {
	for _, driver := range []string{config.DriverSQLite, config.DriverSQLitePure} {
		t.Run(driver, func(t *testing.T) {
			db := openTestDB(t, driver)
			var on int
			require.NoError(t, db.Raw("PRAGMA foreign_keys").Scan(&on).Error)
			assert.Equal(t, 1, on)
		})
	}
}

func TestOpen_PureDriverName(t *testing.T) {
	db := openTestDB(t, config.DriverSQLitePure)

	dialector, ok := db.Dialector.(*sqlite.Dialector)
	require.True(t, ok, "sqlite_pure should use the gorm sqlite dialector")
	assert.Equal(t, "sqlite", dialector.DriverName)

	require.NoError(t, db.Exec("CREATE TABLE t (id INTEGER PRIMARY KEY)").Error)
	require.NoError(t, db.Exec("INSERT INTO t (id) VALUES (1)").Error)
	var n int
	require.NoError(t, db.Raw("SELECT COUNT(*) FROM t").Scan(&n).Error)
	assert.Equal(t, 1, n)
}

func TestMigrate_FreshDatabase(t *testing.T) {
	db := openTestDB(t, config.DriverSQLite)

	ran, err := Migrate(context.Background(), db, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, ran)
	assert.Equal(t, 6, LatestVersion())

	m := db.Migrator()
	for _, table := range []interface{}{&model.Conversation{}, &model.Message{}, &model.MessageImage{}, &model.SystemPrompt{}, &model.Endpoint{}} {
		assert.True(t, m.HasTable(table))
	}
	assert.True(t, m.HasColumn(&model.Message{}, "cost"))
	assert.True(t, m.HasIndex(&model.Message{}, messageOrderIndex))

	var count int64
	require.NoError(t, db.Model(&model.SchemaMigration{}).Count(&count).Error)
	assert.Equal(t, int64(6), count)
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t, config.DriverSQLite)

	_, err := Migrate(context.Background(), db, zap.NewNop())
	require.NoError(t, err)

	ran, err := Migrate(context.Background(), db, zap.NewNop())
	require.NoError(t, err)
	assert.Empty(t, ran, "second run should apply nothing")
}

func TestMigrate_PureDriver(t *testing.T) {
	db := openTestDB(t, config.DriverSQLitePure)

	ran, err := Migrate(context.Background(), db, zap.NewNop())
	require.NoError(t, err)
	assert.Len(t, ran, 6)
}

// 模拟最早期版本的数据库：没有 system_prompt、token 列和 endpoints 表，也没有迁移记录
const legacySchema = `
CREATE TABLE conversations (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    title       TEXT NOT NULL DEFAULT 'New Chat',
    created_at  TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at  TEXT NOT NULL DEFAULT (datetime('now'))
);
CREATE TABLE messages (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    conversation_id INTEGER NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
    role            TEXT NOT NULL CHECK(role IN ('user','assistant')),
    text            TEXT NOT NULL DEFAULT '',
    created_at      TEXT NOT NULL DEFAULT (datetime('now')),
    sort_order      INTEGER NOT NULL
);
CREATE TABLE message_images (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    message_id INTEGER NOT NULL REFERENCES messages(id) ON DELETE CASCADE,
    data_url   TEXT NOT NULL
);
CREATE TABLE system_prompts (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    name       TEXT NOT NULL,
    text       TEXT NOT NULL,
    created_at TEXT NOT NULL DEFAULT (datetime('now'))
);
`

func TestMigrate_UpgradesLegacyDatabase(t *testing.T) {
	db := openTestDB(t, config.DriverSQLite)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	_, err = sqlDB.Exec(legacySchema)
	require.NoError(t, err)
	_, err = sqlDB.Exec(`INSERT INTO conversations (title) VALUES ('old chat')`)
	require.NoError(t, err)
	_, err = sqlDB.Exec(`INSERT INTO messages (conversation_id, role, text, sort_order) VALUES (1, 'user', 'hi', 0)`)
	require.NoError(t, err)

	ran, err := Migrate(context.Background(), db, zap.NewNop())
	require.NoError(t, err)
	assert.Len(t, ran, 6)

	m := db.Migrator()
	assert.True(t, m.HasColumn(&model.Conversation{}, "system_prompt"))
	assert.True(t, m.HasColumn(&model.Message{}, "input_tokens"))
	assert.True(t, m.HasColumn(&model.Message{}, "output_tokens"))
	assert.True(t, m.HasColumn(&model.Message{}, "cost"))
	assert.True(t, m.HasTable(&model.Endpoint{}))
	assert.True(t, m.HasIndex(&model.Message{}, messageOrderIndex))

	var conv model.Conversation
	require.NoError(t, db.First(&conv, 1).Error)
	assert.Equal(t, "old chat", conv.Title)
	assert.Equal(t, "", conv.SystemPrompt)

	var msg model.Message
	require.NoError(t, db.First(&msg, 1).Error)
	assert.Equal(t, int64(0), msg.InputTokens)
	assert.Nil(t, msg.Cost)
}
