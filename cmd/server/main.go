// Package main 是应用程序的入口点。
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/spf13/pflag"

	"shop-insight-go/internal/backend"
	"shop-insight-go/internal/config"
	"shop-insight-go/internal/handler"
	"shop-insight-go/internal/repository"
	"shop-insight-go/internal/service"
	"shop-insight-go/internal/strategy"
	"shop-insight-go/pkg/database"
	"shop-insight-go/pkg/kafka"
	"shop-insight-go/pkg/log"
	"shop-insight-go/pkg/shopify"
)

func main() {
	configPath := pflag.String("config", "./configs/config.yaml", "path to the YAML config file")
	pflag.Parse()

	// 1. 初始化配置
	config.Init(*configPath)
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	log.Info("日志记录器初始化成功")

	// 3. 按需初始化 Redis 和 MySQL
	var rdb *redis.Client
	if strings.EqualFold(cfg.Cache.Backend, "redis") || strings.EqualFold(cfg.History.Backend, "redis") {
		if err := database.InitRedis(cfg.Database.Redis); err != nil {
			log.Fatalf("Redis 初始化失败: %v", err)
		}
		rdb = database.RDB
	}
	deps := backend.Deps{Shopify: shopify.NewClient(cfg.Shopify)}
	if strings.EqualFold(cfg.Backend.Mode, "warehouse") {
		if err := database.InitMySQL(cfg.Database.MySQL); err != nil {
			log.Fatalf("MySQL 初始化失败: %v", err)
		}
		deps.DB = database.DB
	}
	events := kafka.NewPublisher(cfg.Kafka)

	// 4. 初始化 Repository
	responseCache, err := repository.NewResponseCache(cfg.Cache, rdb)
	if err != nil {
		log.Fatalf("缓存初始化失败: %v", err)
	}
	historyRepo, err := repository.NewHistoryRepository(cfg.History, rdb)
	if err != nil {
		log.Fatalf("历史存储初始化失败: %v", err)
	}

	// 5. 初始化策略、数据后端与 Service (依赖注入)
	insightStrategy, err := strategy.New(cfg.LLM)
	if err != nil {
		log.Fatalf("策略初始化失败: %v", err)
	}
	dataBackend, err := backend.New(cfg.Backend, deps)
	if err != nil {
		log.Fatalf("数据后端初始化失败: %v", err)
	}
	insightService := service.NewInsightService(insightStrategy, dataBackend, responseCache, historyRepo, events)
	log.Infow("Service initialized",
		"strategy", insightStrategy.Name(),
		"backend", dataBackend.Name(),
		"cache", cfg.Cache.Backend,
		"history", cfg.History.Backend,
	)

	// 6. 设置 Gin 模式并注册路由
	gin.SetMode(cfg.Server.Mode)
	r := handler.NewRouter(insightService)

	// 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	// 设置一个5秒的超时上下文
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// 关闭 HTTP 服务器
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("HTTP 服务器关闭失败: %v", err)
	}
	// 刷新尚未发送的查询事件
	if err := events.Close(); err != nil {
		log.Errorf("Kafka 生产者关闭失败: %v", err)
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	log.Info("服务已优雅关闭")
}
