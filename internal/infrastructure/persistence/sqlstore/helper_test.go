package sqlstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/xiebiao/lending/internal/domain/book"
	"github.com/xiebiao/lending/internal/domain/member"
	"github.com/xiebiao/lending/internal/infrastructure/config"
)

// newTestDB 每个测试一个独立的SQLite内存库
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	cfg := &config.Config{
		Server:   config.ServerConfig{Mode: "test"},
		Database: config.DatabaseConfig{Driver: config.DriverSQLite, Path: ":memory:"},
	}
	db, err := NewDB(cfg, zap.NewNop())
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// seedBook 登记一本有copies个副本的图书
func seedBook(t *testing.T, db *gorm.DB, isbn string, copies int) *book.Book {
	t.Helper()
	b := book.NewBook(isbn, "测试图书"+isbn, "测试作者", copies)
	require.NoError(t, NewBookRepository(db).Create(context.Background(), b))
	return b
}

// seedMember 登记一个会员
func seedMember(t *testing.T, db *gorm.DB, name string) *member.Member {
	t.Helper()
	m := member.NewMember(name, name+"@example.com")
	require.NoError(t, NewMemberRepository(db).Create(context.Background(), m))
	return m
}

var fixedNow = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
