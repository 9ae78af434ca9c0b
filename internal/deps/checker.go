package deps

import (
	"context"
	"fmt"
	"os"
	"storyshot-ai/config"
	"storyshot-ai/internal/storage"
	"storyshot-ai/log"
	"time"

	"go.uber.org/zap"
)

// CheckDependency 检查服务运行所需的外部环境
// 包括：本地素材目录、项目数据库的连通性，以及各能力所选厂商的密钥是否配置
// 密钥缺失只打印警告，对应能力会在调用时返回配置错误
func CheckDependency(conf config.Config) error {
	if err := checkAssetDir(conf.Storage); err != nil {
		log.GetLogger().Error("素材目录准备失败", zap.Error(err))
		return err
	}
	if err := checkDatabase(conf.Database); err != nil {
		log.GetLogger().Error("数据库连接失败", zap.Error(err))
		return err
	}
	for _, missing := range MissingCredentials(conf) {
		log.GetLogger().Warn("厂商密钥未配置，相关功能将不可用",
			zap.String("capability", missing.Capability), zap.String("provider", missing.Provider))
	}
	return nil
}

func checkAssetDir(conf config.Storage) error {
	if conf.Provider != "local" {
		return nil
	}
	if err := os.MkdirAll(conf.LocalDir, os.ModePerm); err != nil {
		return fmt.Errorf("创建素材目录失败: %w", err)
	}
	log.GetLogger().Info("素材目录已就绪", zap.String("dir", conf.LocalDir))
	return nil
}

// checkDatabase 只做连通性检查，建表留给服务启动时创建的存储
func checkDatabase(conf config.Database) error {
	if conf.Driver != "mysql" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return storage.PingMySQL(ctx, conf.Dsn)
}

// MissingCredential 某项能力所选厂商缺少的密钥
type MissingCredential struct {
	Capability string
	Provider   string
}

// MissingCredentials 按能力列出所选厂商中未配置密钥的项
func MissingCredentials(conf config.Config) []MissingCredential {
	hasKey := func(provider string) bool {
		switch provider {
		case "openai":
			return conf.Openai.ApiKey != ""
		case "gemini":
			return conf.Gemini.ApiKey != ""
		case "doubao":
			return conf.Doubao.ApiKey != ""
		case "juguang":
			return conf.Juguang.ApiKey != ""
		case "volcengine":
			return conf.Volcengine.AccessKeyId != "" && conf.Volcengine.SecretAccessKey != ""
		case "llm":
			// 复用文本生成的厂商
			return true
		case "placeholder":
			return true
		}
		return false
	}

	var missing []MissingCredential
	for _, c := range []MissingCredential{
		{"text", conf.App.TextProvider},
		{"image", conf.App.ImageProvider},
		{"translate", conf.App.TranslateProvider},
		{"video", conf.App.VideoProvider},
		{"analyze", conf.App.AnalyzeProvider},
	} {
		if !hasKey(c.Provider) {
			missing = append(missing, c)
		}
	}
	return missing
}
