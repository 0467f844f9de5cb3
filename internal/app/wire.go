//go:build wireinject
// +build wireinject

// Wire注入器，生成代码见 wire_gen.go
// 修改 providers.go 后执行 `wire gen ./internal/app`

package app

import (
	"context"

	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/xiebiao/shoptrack/internal/infrastructure/config"
)

// Initialize 按配置组装整个应用
// cleanup 按创建的逆序关闭事件发布者、Redis和数据库
func Initialize(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, func(), error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		domainSet,
		applicationSet,
		interfaceSet,
		NewApp,
	)
	return nil, nil, nil
}
