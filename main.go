package main

import (
	"context"
	"fmt"
	"log"

	"llm-tracker/internal/config"
	"llm-tracker/internal/db"
	"llm-tracker/internal/router"
	"llm-tracker/internal/service"
)

func main() {
	// 加载配置
	cfg, err := config.LoadConfig("config/config.yaml")
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 初始化数据库
	gormDB, err := db.InitDB(cfg)
	if err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}

	// 初始化服务
	svcCtx, err := service.NewServiceContext(context.Background(), cfg, gormDB)
	if err != nil {
		log.Fatalf("初始化服务失败: %v", err)
	}

	// 初始化路由
	r := router.SetupRouter(svcCtx, cfg.Chat.MaxMessageLen)

	// 启动服务
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("服务启动在 %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("启动服务失败: %v", err)
	}
}
