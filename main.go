package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"storyshot-ai/config"
	"storyshot-ai/internal/deps"
	"storyshot-ai/internal/router"
	"storyshot-ai/internal/service"
	"storyshot-ai/log"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		log.GetLogger().Error("服务异常退出", zap.Error(err))
		os.Exit(1)
	}
}

func run() error {
	// 先用默认参数初始化日志，配置加载后再按配置重建
	log.InitLogger("", "")
	defer log.GetLogger().Sync()

	if err := config.LoadConfig(); err != nil {
		log.GetLogger().Error("加载配置失败", zap.Error(err))
		return err
	}
	log.InitLogger(config.Conf.Log.File, config.Conf.Log.Level)

	if err := deps.CheckDependency(config.Conf); err != nil {
		log.GetLogger().Error("依赖环境准备失败", zap.Error(err))
		return err
	}

	svc, err := service.NewService(config.Conf)
	if err != nil {
		log.GetLogger().Error("初始化服务失败", zap.Error(err))
		return err
	}
	defer svc.Close()

	gin.SetMode(gin.ReleaseMode)
	engine := gin.Default()
	router.SetupRouter(engine, svc)

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", config.Conf.Server.Host, config.Conf.Server.Port),
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.GetLogger().Info("服务启动", zap.String("host", config.Conf.Server.Host), zap.Int("port", config.Conf.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.GetLogger().Info("正在关闭服务")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	if n := svc.Batches.CancelAll(); n > 0 {
		log.GetLogger().Info("停止进行中的批处理", zap.Int("count", n))
	}
	// 等待后台的分镜翻译与批处理写回结果
	svc.Wait()
	return err
}
