package sqlstore

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/lending/internal/infrastructure/config"
)

// sqlite内存库路径
const memoryPath = ":memory:"

// NewDB 创建数据库连接
// 设计说明：
// 1. 使用GORM v2作为ORM框架，按配置选择MySQL/PostgreSQL/SQLite方言
// 2. 配置连接池参数（MaxOpenConns、MaxIdleConns、ConnMaxLifetime）
// 3. 开发环境开启SQL日志，生产环境关闭
// 4. 自动迁移表结构（AutoMigrate）
func NewDB(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	dialector, err := openDialector(cfg.Database)
	if err != nil {
		return nil, err
	}

	logLevel := logger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Info // 开发环境打印SQL
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		// 唯一索引冲突统一翻译成gorm.ErrDuplicatedKey
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}

	maxOpen, maxIdle, lifetime := cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime
	if cfg.Database.Driver == config.DriverSQLite && cfg.Database.Path == memoryPath {
		// 内存库每个连接各自独立，只能用一个连接且不能回收
		// 文件库可以用连接池，写事务靠DSN里的_txlock=immediate串行
		maxOpen, maxIdle, lifetime = 1, 1, 0
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxLifetime(lifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	log.Info("数据库连接成功", zap.String("driver", cfg.Database.Driver))

	// 注意：生产环境应使用专门的迁移工具（如golang-migrate）
	if err := autoMigrate(db); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	return db, nil
}

func openDialector(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case config.DriverMySQL:
		return mysql.Open(cfg.DSN()), nil
	case config.DriverPostgres:
		return postgres.Open(cfg.DSN()), nil
	case config.DriverSQLite:
		return sqlite.Open(cfg.DSN()), nil
	default:
		return nil, fmt.Errorf("不支持的数据库驱动: %s", cfg.Driver)
	}
}

// autoMigrate 自动迁移表结构
// 学习要点：
// 1. AutoMigrate只会创建表、添加字段，不会删除或修改现有字段
// 2. 生产环境应使用版本化的迁移脚本，不要依赖AutoMigrate
func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&BookModel{},
		&MemberModel{},
		&LoanModel{},
		&LedgerEntryModel{},
	)
}

// BookModel GORM图书模型
// 设计说明:
// 1. 这是infrastructure层的数据模型，包含GORM tag
// 2. domain/book/entity.go是领域实体，不依赖GORM
// 3. available_copies只通过表达式更新修改
type BookModel struct {
	ID              uint      `gorm:"primaryKey"`
	ISBN            string    `gorm:"uniqueIndex;size:20;not null;comment:ISBN号"`
	Title           string    `gorm:"size:200;not null;comment:书名"`
	Author          string    `gorm:"size:100;not null;comment:作者"`
	TotalCopies     int       `gorm:"not null;default:0;comment:馆藏副本总数"`
	AvailableCopies int       `gorm:"not null;default:0;comment:可借副本数"`
	CreatedAt       time.Time `gorm:"comment:创建时间"`
	UpdatedAt       time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (BookModel) TableName() string {
	return "books"
}

// MemberModel GORM会员模型
type MemberModel struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"size:100;not null;comment:姓名"`
	Email     string    `gorm:"uniqueIndex;size:100;not null;comment:邮箱"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (MemberModel) TableName() string {
	return "members"
}

// LoanModel GORM借阅模型
// 教学要点:
//  1. Active是进行中标记：进行中为true，归还后置为NULL
//  2. 唯一索引uk_loans_active(book_id, member_id, active)：
//     三种数据库的唯一索引都允许多个NULL，所以历史借阅不受限制，
//     但同一会员对同一本书最多只能有一条进行中的借阅
//  3. idx_loans_book_returned服务于归还时的加锁查询
type LoanModel struct {
	ID         uint       `gorm:"primaryKey"`
	BookID     uint       `gorm:"not null;index:idx_loans_book_returned,priority:1;uniqueIndex:uk_loans_active,priority:1;comment:图书ID"`
	MemberID   uint       `gorm:"not null;index;uniqueIndex:uk_loans_active,priority:2;comment:会员ID"`
	LoanDate   time.Time  `gorm:"not null;comment:借出时间"`
	DueDate    time.Time  `gorm:"not null;comment:应还日期(UTC零点)"`
	IsReturned bool       `gorm:"not null;default:false;index:idx_loans_book_returned,priority:2;comment:是否已归还"`
	ReturnDate *time.Time `gorm:"comment:归还时间"`
	Active     *bool      `gorm:"uniqueIndex:uk_loans_active,priority:3;comment:进行中标记(归还后为NULL)"`
	CreatedAt  time.Time  `gorm:"comment:创建时间"`
	UpdatedAt  time.Time  `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (LoanModel) TableName() string {
	return "loans"
}

// LedgerEntryModel 库存流水模型
// 与books.available_copies在同一事务内写入
type LedgerEntryModel struct {
	ID         uint      `gorm:"primaryKey"`
	BookID     uint      `gorm:"not null;index;comment:图书ID"`
	LoanID     uint      `gorm:"not null;index;comment:借阅ID"`
	ChangeType string    `gorm:"size:16;not null;comment:变动类型(LEND/RETURN)"`
	Delta      int       `gorm:"not null;comment:可借数量变化"`
	CreatedAt  time.Time `gorm:"comment:创建时间"`
}

// TableName 指定表名
func (LedgerEntryModel) TableName() string {
	return "inventory_ledger"
}
