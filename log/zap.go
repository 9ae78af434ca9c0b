package log

import (
	"os" // 导入操作系统功能，用于文件操作

	"go.uber.org/zap"         // 导入Uber开源的高性能日志库zap
	"go.uber.org/zap/zapcore" // 导入zap的核心组件，用于自定义日志配置
)

// defaultLogFile 未指定日志文件时使用的路径
const defaultLogFile = "storyshot.log"

// Logger 全局日志对象，提供给整个应用程序使用
var Logger *zap.Logger

// logFile 当前日志写入的文件，重新初始化时关闭
var logFile *os.File

// InitLogger 初始化日志系统
// 配置了两个输出目标：
// 1. JSON格式输出到日志文件（调试级别）
// 2. 控制台格式输出到终端（级别由level决定）
// 配置加载完成后会以配置中的参数再调用一次，之前打开的日志文件会被关闭
// @param filePath 日志文件路径，为空时写入storyshot.log
// @param level 终端输出的日志级别，为空或无法解析时使用info
func InitLogger(filePath, level string) {
	if filePath == "" {
		filePath = defaultLogFile
	}
	// 创建或打开日志文件，使用追加模式
	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		panic("无法打开日志文件: " + err.Error()) // 如果无法创建日志文件则终止程序
	}

	// 解析终端输出级别
	consoleLevel := zap.InfoLevel
	if level != "" {
		if parsed, err := zapcore.ParseLevel(level); err == nil {
			consoleLevel = parsed
		}
	}

	// 使用生产环境的编码器配置
	encoderConfig := zap.NewProductionEncoderConfig()
	// 自定义时间格式为ISO8601标准格式（YYYY-MM-DDThh:mm:ss±hh:mm）
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	// 创建多输出的日志核心
	// 使用zapcore.NewTee可以将日志同时输出到多个目标
	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(file), zap.DebugLevel),       // 写入文件（JSON 格式），记录Debug及以上级别
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(os.Stdout), consoleLevel), // 输出到终端
	)

	// 旧的logger先把缓冲写完
	if Logger != nil {
		_ = Logger.Sync()
	}
	// 创建Logger实例，并添加调用者信息（文件名和行号）
	Logger = zap.New(core, zap.AddCaller())

	// 新logger已接管输出，关闭之前的日志文件
	if logFile != nil {
		_ = logFile.Close()
	}
	logFile = file
}

// GetLogger 获取全局日志对象的方法
// 未初始化时（例如单元测试）返回一个不输出任何内容的logger
func GetLogger() *zap.Logger {
	if Logger == nil {
		return zap.NewNop()
	}
	return Logger
}
