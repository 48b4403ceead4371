package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/barengs/smp/pkg/auth"
	"github.com/barengs/smp/pkg/config"
	"github.com/barengs/smp/pkg/database"
	"github.com/barengs/smp/pkg/logger"
	"github.com/barengs/smp/services/menu/internal/model"
	"github.com/barengs/smp/services/menu/internal/seed"
	"github.com/barengs/smp/services/menu/internal/server"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	configPath := pflag.StringP("config", "c", "", "配置文件路径")
	pflag.Parse()

	// 加载配置
	if err := config.Init(*configPath); err != nil {
		fmt.Printf("加载配置失败: %v\n", err)
		os.Exit(1)
	}
	cfg := config.Get()

	// 初始化日志
	if err := logger.Init(&cfg.Log); err != nil {
		fmt.Printf("初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// 初始化数据库
	if err := database.Init(&cfg.Database); err != nil {
		logger.Fatal("初始化数据库失败", zap.Error(err))
	}
	defer database.Close()

	db := database.Get()
	if err := db.AutoMigrate(model.All()...); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}
	logger.Info("数据库迁移完成")

	if err := seed.Run(context.Background(), db, cfg.Casbin.SuperRole); err != nil {
		logger.Fatal("初始化数据失败", zap.Error(err))
	}

	// 初始化Redis
	if err := database.InitRedis(&cfg.Redis); err != nil {
		logger.Fatal("初始化Redis失败", zap.Error(err))
	}
	defer database.CloseRedis()

	// 初始化Casbin
	if err := auth.InitCasbin(db, &cfg.Casbin); err != nil {
		logger.Fatal("初始化Casbin失败", zap.Error(err))
	}

	if cfg.IsDev() {
		logDevToken(cfg)
	}

	app := server.New(cfg, db, database.GetRedis(), auth.GetEnforcer())

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info("正在关闭服务")
		if err := app.Shutdown(); err != nil {
			logger.Error("关闭服务失败", zap.Error(err))
		}
	}()

	addr := cfg.Server.HTTP.Addr()
	logger.Info("服务启动", zap.String("service", server.ServiceName), zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		logger.Fatal("服务运行失败", zap.Error(err))
	}
}

// logDevToken 开发环境输出超级角色令牌，便于终端客户端调试
func logDevToken(cfg *config.Config) {
	if cfg.Casbin.SuperRole == "" {
		return
	}
	role := model.Role{}
	if err := database.Get().Where("code = ?", cfg.Casbin.SuperRole).First(&role).Error; err != nil {
		logger.Warn("super role not found", zap.Error(err))
		return
	}
	token, err := auth.NewJWTManager(&cfg.JWT).GenerateToken(0, "dev", role.ID, role.Code)
	if err != nil {
		logger.Warn("generate dev token failed", zap.Error(err))
		return
	}
	logger.Info("dev token", zap.Int64("roleId", role.ID), zap.String("token", token))
}
