//go:build wireinject
// +build wireinject

// Wire依赖注入配置文件
//
// Wire工作流程：
// Step 1: 编写wire.go（本文件），定义Providers和Injector
// Step 2: 运行 `wire gen ./cmd/api`
// Step 3: Wire生成wire_gen.go，包含完整的依赖创建代码
// Step 4: main.go调用wire_gen.go中的InitializeApp()

package main

import (
	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	"go.uber.org/zap"

	appbook "github.com/xiebiao/lending/internal/application/book"
	"github.com/xiebiao/lending/internal/application/lending"
	appmember "github.com/xiebiao/lending/internal/application/member"
	"github.com/xiebiao/lending/internal/domain/book"
	"github.com/xiebiao/lending/internal/domain/member"
	"github.com/xiebiao/lending/internal/infrastructure/config"
	"github.com/xiebiao/lending/internal/infrastructure/notification"
	"github.com/xiebiao/lending/internal/infrastructure/persistence/sqlstore"
	"github.com/xiebiao/lending/internal/interface/http/handler"
)

// infrastructureSet 基础设施层依赖
// 包含：数据库连接、事务管理器、缓存、消息发布、通知分发
var infrastructureSet = wire.NewSet(
	provideDB,
	provideTxManager,
	provideAvailabilityCache,
	providePublisher,
	provideDispatcher,
	wire.Bind(new(lending.Notifier), new(*notification.Dispatcher)),
)

// repositorySet 仓储层依赖
var repositorySet = wire.NewSet(
	sqlstore.NewBookRepository,
	sqlstore.NewMemberRepository,
	sqlstore.NewLoanRepository,
	sqlstore.NewLedgerRepository,
)

// domainSet 领域层依赖
var domainSet = wire.NewSet(
	book.NewService,
	member.NewService,
)

// applicationSet 应用层依赖
var applicationSet = wire.NewSet(
	providePolicy,
	lending.NewLoanBookUseCase,
	lending.NewReturnBookUseCase,
	lending.NewExtendDueDateUseCase,
	lending.NewGetAvailabilityUseCase,
	lending.NewTopActiveMembersUseCase,
	appbook.NewRegisterBookUseCase,
	appmember.NewRegisterMemberUseCase,
)

// handlerSet HTTP处理器依赖
var handlerSet = wire.NewSet(
	handler.NewLendingHandler,
	handler.NewCatalogHandler,
)

// InitializeApp 初始化整个应用
// 配置和日志由main先创建（日志要在依赖组装之前可用）
// cleanup按创建逆序释放：通知分发器 → 消息连接 → Redis → 数据库
func InitializeApp(cfg *config.Config, logger *zap.Logger) (*gin.Engine, func(), error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		domainSet,
		applicationSet,
		handlerSet,
		provideGinEngine,
	)
	return nil, nil, nil
}
