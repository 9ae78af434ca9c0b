// Package service 实现了应用程序的核心服务层
// init.go 负责按配置初始化各个厂商客户端、项目存储和素材存储
package service

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"storyshot-ai/config"
	"storyshot-ai/internal/apperr"
	"storyshot-ai/internal/storage"
	"storyshot-ai/internal/types"
	"storyshot-ai/log"
	"storyshot-ai/pkg/aliyun"
	"storyshot-ai/pkg/doubao"
	"storyshot-ai/pkg/gemini"
	"storyshot-ai/pkg/juguang"
	"storyshot-ai/pkg/openai"
	"storyshot-ai/pkg/vendor"
	"storyshot-ai/pkg/volcengine"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Service 是应用的核心服务结构体，集成了所有厂商能力和存储
type Service struct {
	TextGenerator  types.TextGenerator  // 分镜拆分、视觉圣经、描述、优化、关键词
	ImageGenerator types.ImageGenerator // 分镜图片
	VideoGenerator types.VideoGenerator // 分镜视频
	Translator     types.Translator     // 分镜与描述翻译
	Analyzer       types.Analyzer       // 风格分析
	Projects       storage.ProjectStore
	Assets         storage.AssetStore
	Batches        *BatchManager

	RehostRemote bool     // 厂商返回的远程URL是否转存
	Proxy        *url.URL // 下载远程素材时使用

	locks   sync.Map // projectId -> *sync.Mutex
	bg      sync.WaitGroup
	closers []io.Closer
}

// Deps 构造Service所需的依赖，测试中直接传入假实现
type Deps struct {
	TextGenerator  types.TextGenerator
	ImageGenerator types.ImageGenerator
	VideoGenerator types.VideoGenerator
	Translator     types.Translator
	Analyzer       types.Analyzer
	Projects       storage.ProjectStore
	Assets         storage.AssetStore
	RehostRemote   bool
	Proxy          *url.URL
}

func New(d Deps) *Service {
	if d.Projects == nil {
		d.Projects = storage.NewMemoryProjectStore()
	}
	return &Service{
		TextGenerator:  d.TextGenerator,
		ImageGenerator: d.ImageGenerator,
		VideoGenerator: d.VideoGenerator,
		Translator:     d.Translator,
		Analyzer:       d.Analyzer,
		Projects:       d.Projects,
		Assets:         d.Assets,
		Batches:        NewBatchManager(),
		RehostRemote:   d.RehostRemote,
		Proxy:          d.Proxy,
	}
}

// NewService 根据配置选择各能力的提供商并初始化客户端
// 厂商密钥不在这里校验，缺失时在第一次调用时返回配置错误
func NewService(conf config.Config) (*Service, error) {
	proxy := conf.App.ParsedProxy
	var closers []io.Closer

	var geminiClient *gemini.Client
	getGemini := func() *gemini.Client {
		if geminiClient == nil {
			geminiClient = gemini.NewClient(gemini.Config{
				BaseUrl:    conf.Gemini.BaseUrl,
				ApiKey:     conf.Gemini.ApiKey,
				TextModel:  conf.Gemini.TextModel,
				ImageModel: conf.Gemini.ImageModel,
				Proxy:      proxy,
			})
			closers = append(closers, geminiClient)
		}
		return geminiClient
	}
	openaiClient := openai.NewClient(openai.Config{
		BaseUrl:     conf.Openai.BaseUrl,
		ApiKey:      conf.Openai.ApiKey,
		Model:       conf.Openai.Model,
		ImageModel:  conf.Openai.ImageModel,
		VisionModel: conf.Openai.VisionModel,
		Proxy:       proxy,
	})
	juguangClient := juguang.NewClient(juguang.Config{
		BaseUrl:    conf.Juguang.BaseUrl,
		ApiKey:     conf.Juguang.ApiKey,
		Model:      conf.Juguang.Model,
		ImageModel: conf.Juguang.ImageModel,
		Proxy:      proxy,
	})
	volcClient := volcengine.NewClient(volcengine.Config{
		AccessKeyId:     conf.Volcengine.AccessKeyId,
		SecretAccessKey: conf.Volcengine.SecretAccessKey,
		Region:          conf.Volcengine.Region,
		TranslateHost:   conf.Volcengine.TranslateHost,
		VisualHost:      conf.Volcengine.VisualHost,
		ImageReqKey:     conf.Volcengine.ImageReqKey,
		Proxy:           proxy,
	})

	var d Deps
	d.Proxy = proxy
	d.RehostRemote = conf.Storage.RehostRemote

	// 文本生成
	switch conf.App.TextProvider {
	case "openai":
		d.TextGenerator = openaiClient
	case "gemini":
		d.TextGenerator = getGemini()
	case "doubao":
		// 方舟提供OpenAI兼容的聊天接口
		d.TextGenerator = openai.NewClient(openai.Config{
			Name:    "doubao",
			BaseUrl: conf.Doubao.BaseUrl,
			ApiKey:  conf.Doubao.ApiKey,
			Model:   conf.Doubao.Model,
			Proxy:   proxy,
		})
	case "juguang":
		d.TextGenerator = juguangClient
	default:
		return nil, fmt.Errorf("unsupported text provider: %s", conf.App.TextProvider)
	}
	log.GetLogger().Info("当前选择的文本生成源", zap.String("provider", conf.App.TextProvider))

	// 图片生成
	switch conf.App.ImageProvider {
	case "gemini":
		d.ImageGenerator = getGemini()
	case "openai":
		d.ImageGenerator = openaiClient
	case "volcengine":
		d.ImageGenerator = volcClient
	case "juguang":
		d.ImageGenerator = juguangClient
	default:
		return nil, fmt.Errorf("unsupported image provider: %s", conf.App.ImageProvider)
	}
	// 所有图片源共用空结果重试
	d.ImageGenerator = vendor.RetryEmptyImage(d.ImageGenerator, vendor.ImageMaxAttempts, vendor.ImageRetryDelay)
	log.GetLogger().Info("当前选择的图片生成源", zap.String("provider", conf.App.ImageProvider))

	// 翻译
	switch conf.App.TranslateProvider {
	case "volcengine":
		d.Translator = volcClient
	case "llm":
		d.Translator = NewLLMTranslator(d.TextGenerator, conf.App.NativeLanguage)
	default:
		return nil, fmt.Errorf("unsupported translate provider: %s", conf.App.TranslateProvider)
	}
	log.GetLogger().Info("当前选择的翻译源", zap.String("provider", conf.App.TranslateProvider))

	// 视频生成
	switch conf.App.VideoProvider {
	case "doubao":
		d.VideoGenerator = doubao.NewVideoClient(doubao.Config{
			BaseUrl:      conf.Doubao.BaseUrl,
			ApiKey:       conf.Doubao.ApiKey,
			VideoModel:   conf.Doubao.VideoModel,
			PollInterval: conf.Video.PollInterval(),
			Timeout:      conf.Video.Timeout(),
			Proxy:        proxy,
		})
	case "placeholder":
		d.VideoGenerator = &placeholderVideoGenerator{delay: time.Duration(conf.Video.PlaceholderDelayMs) * time.Millisecond}
	default:
		return nil, fmt.Errorf("unsupported video provider: %s", conf.App.VideoProvider)
	}
	log.GetLogger().Info("当前选择的视频生成源", zap.String("provider", conf.App.VideoProvider))

	// 风格分析
	switch conf.App.AnalyzeProvider {
	case "gemini":
		d.Analyzer = getGemini()
	case "openai":
		d.Analyzer = openaiClient
	default:
		return nil, fmt.Errorf("unsupported analyze provider: %s", conf.App.AnalyzeProvider)
	}

	// 素材存储
	switch conf.Storage.Provider {
	case "local":
		d.Assets = storage.NewLocalAssetStore(conf.Storage.LocalDir)
	case "oss":
		oss := conf.Storage.Oss
		d.Assets = storage.NewOssAssetStore(aliyun.NewOssClient(oss.AccessKeyId, oss.AccessKeySecret, oss.Bucket, oss.Region, oss.PublicBaseUrl))
	case "minio":
		m := conf.Storage.Minio
		store, err := storage.NewMinioAssetStore(m.Endpoint, m.AccessKey, m.SecretKey, m.Bucket, m.UseSSL)
		if err != nil {
			return nil, fmt.Errorf("init minio err: %w", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = store.EnsureBucket(ctx)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("ensure minio bucket err: %w", err)
		}
		d.Assets = store
	default:
		return nil, fmt.Errorf("unsupported storage provider: %s", conf.Storage.Provider)
	}
	log.GetLogger().Info("当前选择的素材存储", zap.String("provider", conf.Storage.Provider))

	// 项目存储
	switch conf.Database.Driver {
	case "memory":
		d.Projects = storage.NewMemoryProjectStore()
	case "mysql":
		store, err := storage.NewGormProjectStore(conf.Database.Dsn)
		if err != nil {
			return nil, fmt.Errorf("init mysql err: %w", err)
		}
		d.Projects = store
		closers = append(closers, store)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", conf.Database.Driver)
	}

	s := New(d)
	s.closers = closers
	return s, nil
}

// Close 释放SDK客户端
func (s *Service) Close() {
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			log.GetLogger().Warn("close client failed", zap.Error(err))
		}
	}
}

// Wait 等待后台任务（补翻译、批处理）结束，用于测试和退出前
func (s *Service) Wait() {
	s.bg.Wait()
}

// goBackground 启动一个不跟随请求生命周期的后台任务
func (s *Service) goBackground(fn func(ctx context.Context)) {
	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.GetLogger().Error("background task panic", zap.Any("recover", r))
			}
		}()
		fn(context.Background())
	}()
}

// lockProject 同一项目的分镜写入串行执行
func (s *Service) lockProject(projectId string) func() {
	v, _ := s.locks.LoadOrStore(projectId, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// placeholderVideoGenerator 没有接入视频厂商时使用：等待固定时间后直接返回图片地址
type placeholderVideoGenerator struct {
	delay time.Duration
}

func (p *placeholderVideoGenerator) GenerateVideo(ctx context.Context, req types.VideoRequest) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(p.delay):
	}
	if req.ImageUrl == "" {
		return "", apperr.NewEmptyResponseError("placeholder", "占位视频需要图片地址，请使用图生视频模式")
	}
	return req.ImageUrl, nil
}
