package sqlstore

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// txKey context中事务DB的key
type txKey struct{}

// TxManager 事务管理器
// 教学要点:
// 1. 封装GORM的Transaction方法
// 2. 通过context传递事务DB(避免全局变量)
// 3. 支持嵌套事务(context里已有事务时,GORM自动使用Savepoint)
// 4. 每个事务开头设置锁等待上限,超时按Unavailable返回
type TxManager struct {
	db              *gorm.DB
	lockWaitTimeout time.Duration
}

// NewTxManager 创建事务管理器
// lockWaitTimeout<=0表示使用数据库默认值
func NewTxManager(db *gorm.DB, lockWaitTimeout time.Duration) *TxManager {
	return &TxManager{db: db, lockWaitTimeout: lockWaitTimeout}
}

// Transaction 执行事务
// 教学要点:
// 1. fn函数内的所有Repository操作都会在同一事务中执行
// 2. fn返回error时自动ROLLBACK,返回nil时自动COMMIT
// 3. 领域错误原样返回;提交失败等底层错误按是否可重试分类
//
// 使用示例:
//
//	err := txManager.Transaction(ctx, func(ctx context.Context) error {
//	    b, err := bookRepo.LockByID(ctx, bookID)
//	    if err != nil {
//	        return err
//	    }
//	    if !b.HasAvailableCopy() {
//	        return book.ErrNoCopiesAvailable // 自动回滚
//	    }
//	    return bookRepo.AdjustAvailable(ctx, bookID, -1)
//	})
func (m *TxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	db := m.db
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		db = tx
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := m.applyLockWaitTimeout(tx); err != nil {
			return classifyError(err, "设置锁等待超时失败")
		}
		// 将事务DB注入到Context中
		// Repository的getDB方法会从context提取事务DB
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
	return classifyError(err, "事务执行失败")
}

// applyLockWaitTimeout 设置本事务的行锁等待上限
// MySQL只有会话级变量,连接池里每个事务都会重新设置,不会相互影响
// SQLite没有行锁,跳过
func (m *TxManager) applyLockWaitTimeout(tx *gorm.DB) error {
	if m.lockWaitTimeout <= 0 {
		return nil
	}

	switch tx.Dialector.Name() {
	case "mysql":
		// innodb_lock_wait_timeout单位为秒,最小1秒
		seconds := int(m.lockWaitTimeout / time.Second)
		if seconds < 1 {
			seconds = 1
		}
		return tx.Exec(fmt.Sprintf("SET SESSION innodb_lock_wait_timeout = %d", seconds)).Error
	case "postgres":
		return tx.Exec(fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", m.lockWaitTimeout.Milliseconds())).Error
	default:
		return nil
	}
}

// getDB 从context获取事务DB,如果没有则使用默认DB
// 教学要点:事务传递机制,事务内的所有读写都必须经过这里
func getDB(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return db.WithContext(ctx)
}
