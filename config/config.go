package config

import (
	"errors"           // 用于创建和返回错误
	"fmt"              // 用于格式化错误信息
	"net/url"          // 用于解析和处理URL
	"os"               // 提供操作系统功能，如文件访问和环境变量
	"storyshot-ai/log" // 导入项目自定义日志包
	"strconv"          // 提供字符串转换功能
	"time"             // 轮询间隔与超时

	"github.com/BurntSushi/toml" // 用于解析TOML格式的配置文件
	"github.com/joho/godotenv"   // 用于把 .env 文件载入环境变量
	"go.uber.org/zap"            // 结构化日志字段
)

const envPrefix = "STORYSHOT_"

// App 应用核心配置
type App struct {
	NativeLanguage    string   `toml:"native_language"`    // 母语，非母语脚本的分镜会附带母语翻译
	Proxy             string   `toml:"proxy"`              // 访问海外服务时使用的代理
	ParsedProxy       *url.URL `toml:"-"`                  // 解析后的代理URL对象，不保存到配置文件
	TextProvider      string   `toml:"text_provider"`      // 文本生成：openai/gemini/doubao/juguang
	ImageProvider     string   `toml:"image_provider"`     // 图片生成：gemini/openai/volcengine/juguang
	TranslateProvider string   `toml:"translate_provider"` // 翻译：volcengine/llm
	VideoProvider     string   `toml:"video_provider"`     // 视频生成：doubao/placeholder
	AnalyzeProvider   string   `toml:"analyze_provider"`   // 风格分析：gemini/openai
}

// Server Web服务器配置
type Server struct {
	Host string `toml:"host"` // 服务器监听的主机地址
	Port int    `toml:"port"` // 服务器监听的端口号
}

// Log 日志配置
type Log struct {
	File  string `toml:"file"`  // 日志文件路径
	Level string `toml:"level"` // 终端输出的日志级别（debug/info/warn/error）
}

// Gemini 文本与分析走官方SDK，图片生成走REST接口
type Gemini struct {
	BaseUrl    string `toml:"base_url"`    // API的基础URL
	ApiKey     string `toml:"api_key"`     // Gemini的API密钥
	TextModel  string `toml:"text_model"`  // 文本生成与风格分析使用的模型
	ImageModel string `toml:"image_model"` // 图片生成使用的模型
}

// Openai OpenAI服务配置，也可以指向任意兼容接口
type Openai struct {
	BaseUrl     string `toml:"base_url"`     // OpenAI API的基础URL，支持自定义或第三方兼容接口
	ApiKey      string `toml:"api_key"`      // OpenAI的API密钥
	Model       string `toml:"model"`        // 聊天补全使用的模型名称
	ImageModel  string `toml:"image_model"`  // 文生图使用的模型
	VisionModel string `toml:"vision_model"` // 看图分析使用的模型
}

// Doubao 方舟平台，文本走OpenAI兼容接口，视频走异步任务接口
type Doubao struct {
	BaseUrl    string `toml:"base_url"`    // 方舟API的基础URL
	ApiKey     string `toml:"api_key"`     // 方舟的API密钥
	Model      string `toml:"model"`       // 文本生成使用的模型
	VideoModel string `toml:"video_model"` // 视频生成使用的模型
}

// Juguang 聚光代理，OpenAI风格的聊天与图片接口
type Juguang struct {
	BaseUrl    string `toml:"base_url"`    // 代理服务的基础URL
	ApiKey     string `toml:"api_key"`     // 代理服务的访问令牌
	Model      string `toml:"model"`       // 文本生成使用的模型
	ImageModel string `toml:"image_model"` // 图片生成使用的模型
}

// Volcengine 火山引擎签名接口（机器翻译、视觉生图）
type Volcengine struct {
	AccessKeyId     string `toml:"access_key_id"`     // 火山引擎访问ID
	SecretAccessKey string `toml:"secret_access_key"` // 火山引擎访问密钥
	Region          string `toml:"region"`            // 签名使用的区域
	TranslateHost   string `toml:"translate_host"`    // 机器翻译接口的域名
	VisualHost      string `toml:"visual_host"`       // 视觉接口的域名
	ImageReqKey     string `toml:"image_req_key"`     // 文生图模型的req_key
}

// Video 视频任务轮询参数
type Video struct {
	PollIntervalSeconds int `toml:"poll_interval_seconds"` // 查询视频任务状态的间隔（秒）
	TimeoutSeconds      int `toml:"timeout_seconds"`       // 单个视频任务的最长等待时间（秒）
	PlaceholderDelayMs  int `toml:"placeholder_delay_ms"`  // placeholder模式下模拟生成耗时
}

// PollInterval 轮询间隔
func (v Video) PollInterval() time.Duration {
	return time.Duration(v.PollIntervalSeconds) * time.Second
}

// Timeout 单个视频任务的超时时间
func (v Video) Timeout() time.Duration {
	return time.Duration(v.TimeoutSeconds) * time.Second
}

// AliyunOss 阿里云对象存储服务配置
type AliyunOss struct {
	AccessKeyId     string `toml:"access_key_id"`     // 阿里云访问ID
	AccessKeySecret string `toml:"access_key_secret"` // 阿里云访问密钥
	Bucket          string `toml:"bucket"`            // OSS存储桶名称
	Region          string `toml:"region"`            // 存储桶所在区域，如 cn-shanghai
	PublicBaseUrl   string `toml:"public_base_url"`   // 生成对外访问地址时使用，如 https://bucket.oss-cn-shanghai.aliyuncs.com
}

// Minio S3兼容对象存储配置
type Minio struct {
	Endpoint  string `toml:"endpoint"`   // MinIO服务地址，不带协议
	AccessKey string `toml:"access_key"` // MinIO访问ID
	SecretKey string `toml:"secret_key"` // MinIO访问密钥
	Bucket    string `toml:"bucket"`     // 存储桶名称，不存在时自动创建
	UseSSL    bool   `toml:"use_ssl"`    // 是否使用HTTPS
}

// Storage 生成素材的存储位置
type Storage struct {
	Provider     string    `toml:"provider"`      // local/oss/minio
	LocalDir     string    `toml:"local_dir"`     // local模式的落盘目录
	RehostRemote bool      `toml:"rehost_remote"` // 是否把厂商返回的临时URL转存到自己的存储
	Oss          AliyunOss `toml:"oss"`           // provider为oss时使用
	Minio        Minio     `toml:"minio"`         // provider为minio时使用
}

// Database 项目持久化
type Database struct {
	Driver string `toml:"driver"` // memory/mysql
	Dsn    string `toml:"dsn"`    // mysql连接串，如 user:pass@tcp(127.0.0.1:3306)/storyshot?parseTime=true
}

// Config 全局配置
type Config struct {
	App        App        `toml:"app"`        // 应用核心配置
	Server     Server     `toml:"server"`     // Web服务器配置
	Log        Log        `toml:"log"`        // 日志配置
	Gemini     Gemini     `toml:"gemini"`     // Google Gemini
	Openai     Openai     `toml:"openai"`     // OpenAI及兼容接口
	Doubao     Doubao     `toml:"doubao"`     // 字节方舟（豆包）
	Juguang    Juguang    `toml:"juguang"`    // 聚光代理
	Volcengine Volcengine `toml:"volcengine"` // 火山引擎
	Video      Video      `toml:"video"`      // 视频任务参数
	Storage    Storage    `toml:"storage"`    // 素材存储
	Database   Database   `toml:"database"`   // 项目持久化
}

// Conf 全局配置实例，包含默认值
var Conf = Default()

// Default 返回一份带默认值的配置
func Default() Config {
	return Config{
		App: App{
			NativeLanguage:    "Chinese",
			TextProvider:      "openai",
			ImageProvider:     "gemini",
			TranslateProvider: "llm",
			VideoProvider:     "placeholder",
			AnalyzeProvider:   "gemini",
		},
		Server: Server{
			Host: "127.0.0.1",
			Port: 8888,
		},
		Log: Log{
			File:  "storyshot.log",
			Level: "info",
		},
		Gemini: Gemini{
			BaseUrl:    "https://generativelanguage.googleapis.com",
			TextModel:  "gemini-2.0-flash",
			ImageModel: "gemini-2.0-flash-preview-image-generation",
		},
		Openai: Openai{
			Model:       "gpt-4o-mini",
			ImageModel:  "dall-e-3",
			VisionModel: "gpt-4o",
		},
		Doubao: Doubao{
			BaseUrl:    "https://ark.cn-beijing.volces.com/api/v3",
			Model:      "doubao-1-5-pro-32k-250115",
			VideoModel: "doubao-seedance-1-0-lite-t2v-250428",
		},
		Volcengine: Volcengine{
			Region:        "cn-north-1",
			TranslateHost: "translate.volcengineapi.com",
			VisualHost:    "visual.volcengineapi.com",
			ImageReqKey:   "high_aes_general_v21_L",
		},
		Video: Video{
			PollIntervalSeconds: 5,
			TimeoutSeconds:      600,
			PlaceholderDelayMs:  2000,
		},
		Storage: Storage{
			Provider: "local",
			LocalDir: "./uploads/assets",
		},
		Database: Database{
			Driver: "memory",
		},
	}
}

// envString 环境变量存在时覆盖目标值
func envString(key string, target *string) {
	if v := os.Getenv(envPrefix + key); v != "" {
		*target = v
	}
}

// envInt 环境变量是合法整数时覆盖目标值
func envInt(key string, target *int) {
	if v := os.Getenv(envPrefix + key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*target = n
		}
	}
}

// envBool 环境变量是合法布尔值时覆盖目标值
func envBool(key string, target *bool) {
	if v := os.Getenv(envPrefix + key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*target = b
		}
	}
}

// loadFromEnv 从环境变量加载配置，变量名为 STORYSHOT_ + 大写的节名与键名
func loadFromEnv(c *Config) {
	// 应用配置
	envString("NATIVE_LANGUAGE", &c.App.NativeLanguage)
	envString("PROXY", &c.App.Proxy)
	envString("TEXT_PROVIDER", &c.App.TextProvider)
	envString("IMAGE_PROVIDER", &c.App.ImageProvider)
	envString("TRANSLATE_PROVIDER", &c.App.TranslateProvider)
	envString("VIDEO_PROVIDER", &c.App.VideoProvider)
	envString("ANALYZE_PROVIDER", &c.App.AnalyzeProvider)

	// 服务器配置
	envString("SERVER_HOST", &c.Server.Host)
	envInt("SERVER_PORT", &c.Server.Port)

	// 日志配置
	envString("LOG_FILE", &c.Log.File)
	envString("LOG_LEVEL", &c.Log.Level)

	// 各厂商的接入配置
	envString("GEMINI_BASE_URL", &c.Gemini.BaseUrl)
	envString("GEMINI_API_KEY", &c.Gemini.ApiKey)
	envString("GEMINI_TEXT_MODEL", &c.Gemini.TextModel)
	envString("GEMINI_IMAGE_MODEL", &c.Gemini.ImageModel)

	envString("OPENAI_BASE_URL", &c.Openai.BaseUrl)
	envString("OPENAI_API_KEY", &c.Openai.ApiKey)
	envString("OPENAI_MODEL", &c.Openai.Model)
	envString("OPENAI_IMAGE_MODEL", &c.Openai.ImageModel)
	envString("OPENAI_VISION_MODEL", &c.Openai.VisionModel)

	envString("DOUBAO_BASE_URL", &c.Doubao.BaseUrl)
	envString("DOUBAO_API_KEY", &c.Doubao.ApiKey)
	envString("DOUBAO_MODEL", &c.Doubao.Model)
	envString("DOUBAO_VIDEO_MODEL", &c.Doubao.VideoModel)

	envString("JUGUANG_BASE_URL", &c.Juguang.BaseUrl)
	envString("JUGUANG_API_KEY", &c.Juguang.ApiKey)
	envString("JUGUANG_MODEL", &c.Juguang.Model)
	envString("JUGUANG_IMAGE_MODEL", &c.Juguang.ImageModel)

	envString("VOLCENGINE_ACCESS_KEY_ID", &c.Volcengine.AccessKeyId)
	envString("VOLCENGINE_SECRET_ACCESS_KEY", &c.Volcengine.SecretAccessKey)
	envString("VOLCENGINE_REGION", &c.Volcengine.Region)
	envString("VOLCENGINE_TRANSLATE_HOST", &c.Volcengine.TranslateHost)
	envString("VOLCENGINE_VISUAL_HOST", &c.Volcengine.VisualHost)
	envString("VOLCENGINE_IMAGE_REQ_KEY", &c.Volcengine.ImageReqKey)

	// 视频任务配置
	envInt("VIDEO_POLL_INTERVAL_SECONDS", &c.Video.PollIntervalSeconds)
	envInt("VIDEO_TIMEOUT_SECONDS", &c.Video.TimeoutSeconds)
	envInt("VIDEO_PLACEHOLDER_DELAY_MS", &c.Video.PlaceholderDelayMs)

	// 素材存储配置
	envString("STORAGE_PROVIDER", &c.Storage.Provider)
	envString("STORAGE_LOCAL_DIR", &c.Storage.LocalDir)
	envBool("STORAGE_REHOST_REMOTE", &c.Storage.RehostRemote)
	envString("OSS_ACCESS_KEY_ID", &c.Storage.Oss.AccessKeyId)
	envString("OSS_ACCESS_KEY_SECRET", &c.Storage.Oss.AccessKeySecret)
	envString("OSS_BUCKET", &c.Storage.Oss.Bucket)
	envString("OSS_REGION", &c.Storage.Oss.Region)
	envString("OSS_PUBLIC_BASE_URL", &c.Storage.Oss.PublicBaseUrl)
	envString("MINIO_ENDPOINT", &c.Storage.Minio.Endpoint)
	envString("MINIO_ACCESS_KEY", &c.Storage.Minio.AccessKey)
	envString("MINIO_SECRET_KEY", &c.Storage.Minio.SecretKey)
	envString("MINIO_BUCKET", &c.Storage.Minio.Bucket)
	envBool("MINIO_USE_SSL", &c.Storage.Minio.UseSSL)

	// 项目存储配置
	envString("DATABASE_DRIVER", &c.Database.Driver)
	envString("DATABASE_DSN", &c.Database.Dsn)
}

// validateConfig 只校验选项取值，厂商密钥在第一次调用时由各客户端检查
func validateConfig(c *Config) error {
	// 检查各能力的提供商是否受支持
	switch c.App.TextProvider {
	case "openai", "gemini", "doubao", "juguang":
	default:
		return fmt.Errorf("不支持的文本生成提供商: %s", c.App.TextProvider)
	}
	switch c.App.ImageProvider {
	case "gemini", "openai", "volcengine", "juguang":
	default:
		return fmt.Errorf("不支持的图片生成提供商: %s", c.App.ImageProvider)
	}
	switch c.App.TranslateProvider {
	case "volcengine", "llm":
	default:
		return fmt.Errorf("不支持的翻译提供商: %s", c.App.TranslateProvider)
	}
	switch c.App.VideoProvider {
	case "doubao", "placeholder":
	default:
		return fmt.Errorf("不支持的视频生成提供商: %s", c.App.VideoProvider)
	}
	switch c.App.AnalyzeProvider {
	case "gemini", "openai":
	default:
		return fmt.Errorf("不支持的风格分析提供商: %s", c.App.AnalyzeProvider)
	}

	// 检查素材存储配置
	switch c.Storage.Provider {
	case "local":
		if c.Storage.LocalDir == "" {
			return errors.New("本地存储需要配置 local_dir")
		}
	case "oss":
		if c.Storage.Oss.Bucket == "" {
			return errors.New("使用阿里云OSS存储需要配置 bucket")
		}
	case "minio":
		if c.Storage.Minio.Endpoint == "" || c.Storage.Minio.Bucket == "" {
			return errors.New("使用MinIO存储需要配置 endpoint 和 bucket")
		}
	default:
		return fmt.Errorf("不支持的存储类型: %s", c.Storage.Provider)
	}

	// 检查项目存储配置
	switch c.Database.Driver {
	case "memory":
	case "mysql":
		if c.Database.Dsn == "" {
			return errors.New("使用mysql存储项目需要配置 dsn")
		}
	default:
		return fmt.Errorf("不支持的数据库类型: %s", c.Database.Driver)
	}

	// 视频任务轮询参数必须为正数
	if c.Video.PollIntervalSeconds <= 0 || c.Video.TimeoutSeconds <= 0 {
		return errors.New("视频轮询间隔和超时时间必须大于0")
	}
	return nil
}

// Load 按 配置文件 -> 环境变量 -> 默认值 的优先级加载配置
// 配置文件不存在时读取环境变量，.env 文件会先被载入环境变量
// @param configPath 配置文件路径
// @return Config 加载并校验后的配置
// @return error 解析或校验失败时返回错误
func Load(configPath string) (Config, error) {
	// 从默认值开始，文件或环境变量只覆盖出现的项
	c := Default()

	// .env 文件是可选的，不存在时忽略
	if err := godotenv.Load(); err == nil {
		log.GetLogger().Info("已加载 .env 文件")
	}

	// 检查配置文件是否存在
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		// 配置文件不存在，从环境变量中读取配置
		log.GetLogger().Info("未找到配置文件，从环境变量中加载配置")
		loadFromEnv(&c)
	} else {
		// 配置文件存在，使用TOML解析器读取配置
		log.GetLogger().Info("已找到配置文件，从配置文件中加载配置", zap.String("path", configPath))
		if _, err = toml.DecodeFile(configPath, &c); err != nil {
			return c, fmt.Errorf("解析配置文件失败: %w", err)
		}
	}

	// 解析代理地址，为空时得到空URL，各客户端据此决定是否走代理
	parsed, err := url.Parse(c.App.Proxy)
	if err != nil {
		return c, fmt.Errorf("代理地址格式错误: %w", err)
	}
	c.App.ParsedProxy = parsed

	// 验证配置的有效性
	return c, validateConfig(&c)
}

// LoadConfig 加载 ./config/config.toml 到全局 Conf
// @return error 加载失败时返回错误，全局 Conf 保持默认值
func LoadConfig() error {
	c, err := Load("./config/config.toml")
	if err != nil {
		return err
	}
	Conf = c
	return nil
}
