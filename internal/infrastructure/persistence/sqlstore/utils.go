package sqlstore

import (
	"context"
	"database/sql/driver"
	"errors"
	"strings"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"

	apperrors "github.com/xiebiao/lending/pkg/errors"
)

// isDuplicateError 判断是否为唯一索引冲突错误
// 开启TranslateError后三种驱动都会翻译成gorm.ErrDuplicatedKey,
// 这里再按错误信息兜底:
// - MySQL 1062: Duplicate entry 'xxx' for key 'yyy'
// - PostgreSQL 23505: duplicate key value violates unique constraint
// - SQLite: UNIQUE constraint failed
func isDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

// classifyError 把存储层错误转换成AppError
// 已经是AppError(领域错误)的原样返回;
// 锁等待超时、死锁、连接中断等瞬时故障返回Unavailable,调用方可以重试;
// 其余按内部错误包装
func classifyError(err error, message string) error {
	if err == nil {
		return nil
	}
	if apperrors.IsAppError(err) {
		return err
	}
	if isTransientError(err) {
		return apperrors.Unavailable(err, message)
	}
	return apperrors.Wrap(err, message)
}

// isTransientError 判断是否为瞬时故障
func isTransientError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, mysqldriver.ErrInvalidConn) {
		return true
	}

	var mysqlErr *mysqldriver.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case 1205, // Lock wait timeout exceeded
			1213: // Deadlock found when trying to get lock
			return true
		}
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "55P03", // lock_not_available(lock_timeout)
			"40P01", // deadlock_detected
			"40001", // serialization_failure
			"57014": // query_canceled(statement_timeout)
			return true
		}
		// 08xxx: connection_exception
		return strings.HasPrefix(pgErr.Code, "08")
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}

	return false
}

// dueDateAddExpr 返回"应还日期加N天"的表达式,参数为天数
// 教学要点:表达式在数据库内计算,不把当前日期读到内存再写回,
// 两个并发续借各自加到最新值上,不会丢失更新
func dueDateAddExpr(db *gorm.DB) string {
	switch db.Dialector.Name() {
	case "postgres":
		return "due_date + make_interval(days => ?)"
	case "sqlite":
		return "datetime(due_date, '+' || ? || ' days')"
	default:
		return "DATE_ADD(due_date, INTERVAL ? DAY)"
	}
}
