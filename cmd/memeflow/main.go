// =============================================================================
// MemeFlow 主入口
// =============================================================================
// 命令行入口点：把一段故事文本转换为九张表情包图像序列
//
// 使用方法:
//
//	memeflow generate --story "..."       # 直接传入故事文本
//	memeflow generate --file story.txt    # 从文件读取故事
//	memeflow generate -s "..." --display  # 生成后以九宫格列出结果
//	memeflow version                      # 显示版本信息
// =============================================================================

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/BaSui01/memeflow/bulk"
	"github.com/BaSui01/memeflow/config"
	"github.com/BaSui01/memeflow/internal/metrics"
	"github.com/BaSui01/memeflow/llm"
	"github.com/BaSui01/memeflow/llm/image"
	"github.com/BaSui01/memeflow/retry"
	"github.com/BaSui01/memeflow/story"
	"github.com/BaSui01/memeflow/workflow"
)

// =============================================================================
// 📦 版本信息（构建时注入）
// =============================================================================

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// =============================================================================
// 🎯 主函数
// =============================================================================

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "generate":
		runGenerate(os.Args[2:])
	case "version":
		printVersion()
	case "help", "-h", "--help":
		printUsage()
	default:
		// 裸标志视为 generate 的简写
		if strings.HasPrefix(os.Args[1], "-") {
			runGenerate(os.Args[1:])
			return
		}
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// =============================================================================
// 🖼️ generate 命令
// =============================================================================

func runGenerate(args []string) {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	var (
		storyText  string
		storyFile  string
		outputDir  string
		display    bool
		configPath string
	)
	fs.StringVar(&storyText, "story", "", "Story text to convert into a meme sequence")
	fs.StringVar(&storyText, "s", "", "Shorthand for --story")
	fs.StringVar(&storyFile, "file", "", "Path to a text file containing the story")
	fs.StringVar(&storyFile, "f", "", "Shorthand for --file")
	fs.StringVar(&outputDir, "output", "", "Root directory for generated sessions")
	fs.BoolVar(&display, "display", false, "Print the generated sequence as a 3x3 grid")
	fs.StringVar(&configPath, "config", "", "Path to config file (YAML)")
	fs.Parse(args)

	if storyText != "" && storyFile != "" {
		fmt.Fprintln(os.Stderr, "Error: --story and --file are mutually exclusive")
		os.Exit(1)
	}
	if storyText == "" && storyFile == "" {
		fmt.Fprintln(os.Stderr, "Error: either --story or --file is required")
		fs.Usage()
		os.Exit(1)
	}
	if storyFile != "" {
		data, err := os.ReadFile(storyFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read story file: %v\n", err)
			os.Exit(1)
		}
		storyText = string(data)
	}

	// 加载配置
	loader := config.NewLoader()
	if configPath != "" {
		loader = loader.WithConfigPath(configPath)
	}
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if outputDir != "" {
		cfg.Pipeline.OutputRoot = outputDir
	}

	// 验证配置
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	logger := initLogger(cfg.Log)
	defer logger.Sync()

	logger.Info("Starting MemeFlow",
		zap.String("version", Version),
		zap.Int("max_concurrency", cfg.Pipeline.MaxConcurrency),
	)

	pipeline := buildPipeline(cfg, logger)

	fmt.Println("Generating meme sequence...")
	fmt.Println("Analyzing narrative structure...")

	result, runErr := pipeline.Run(context.Background(), storyText)
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", result.Error)
		os.Exit(1)
	}

	fmt.Printf("Generated %d meme images in %s\n", len(result.ImagePaths), result.SessionDir)
	if display {
		printGrid(result.ImagePaths)
	} else {
		for i, path := range result.ImagePaths {
			fmt.Printf("  %d. %s\n", i+1, path)
		}
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}
}

// buildPipeline 按配置装配流水线的全部组件
func buildPipeline(cfg *config.Config, logger *zap.Logger) *workflow.Pipeline {
	chatProvider := llm.NewOpenAIProvider(llm.OpenAIConfig{
		APIKey:       cfg.OpenAI.APIKey,
		Organization: cfg.OpenAI.Organization,
		BaseURL:      cfg.OpenAI.BaseURL,
		Model:        cfg.OpenAI.ChatModel,
		Timeout:      cfg.OpenAI.Timeout,
	}, logger)

	imageProvider := image.NewOpenAIProvider(image.OpenAIConfig{
		APIKey:       cfg.OpenAI.APIKey,
		Organization: cfg.OpenAI.Organization,
		BaseURL:      cfg.OpenAI.BaseURL,
		Model:        cfg.Image.Model,
		Timeout:      cfg.Image.Timeout,
		RateLimitRPS: cfg.Image.RateLimitRPS,
	})

	analyzer := story.NewAnalyzer(chatProvider, cfg.OpenAI.ChatModel, logger)

	retryer := retry.NoRetry()
	if cfg.Pipeline.MaxRetries > 0 {
		policy := retry.DefaultPolicy()
		policy.MaxRetries = cfg.Pipeline.MaxRetries
		retryer = retry.NewBackoffRetryer(policy, logger)
	}

	collector := metrics.NewCollector("memeflow", logger)
	executor := bulk.NewExecutor(imageProvider, cfg.Image.Model, retryer, collector, logger)
	dispatcher := bulk.NewDispatcher(executor, cfg.Pipeline.MaxConcurrency, collector, logger)

	return workflow.NewPipeline(analyzer, dispatcher, cfg.Pipeline, workflow.NewMemoryStore(), logger)
}

// printGrid 以 3×3 九宫格列出生成的图像路径
func printGrid(paths []string) {
	const cols = 3
	for i := 0; i < len(paths); i += cols {
		end := i + cols
		if end > len(paths) {
			end = len(paths)
		}
		row := make([]string, 0, cols)
		for j := i; j < end; j++ {
			row = append(row, fmt.Sprintf("[%d] %s", j+1, paths[j]))
		}
		fmt.Println("  " + strings.Join(row, "   "))
	}
}

// =============================================================================
// 📋 版本和帮助
// =============================================================================

func printVersion() {
	fmt.Printf("MemeFlow %s\n", Version)
	fmt.Printf("  Build Time: %s\n", BuildTime)
	fmt.Printf("  Git Commit: %s\n", GitCommit)
}

func printUsage() {
	fmt.Println(`MemeFlow - Story to Meme Sequence Generator

Usage:
  memeflow <command> [options]

Commands:
  generate  Generate a meme sequence from a story
  version   Show version information
  help      Show this help message

Options for 'generate':
  --story, -s <text>   Story text to convert
  --file, -f <path>    Read story text from a file
  --output <dir>       Root directory for generated sessions
  --display            Print the result as a 3x3 grid
  --config <path>      Path to configuration file (YAML)

Environment:
  OPENAI_API_KEY       OpenAI API key (required unless set in config)

Examples:
  memeflow generate --story "A cat discovers it can talk..."
  memeflow generate --file story.txt --output ./memes --display
  memeflow generate -s "..." --config /etc/memeflow/config.yaml
  memeflow version`)
}

// =============================================================================
// 🔧 日志初始化
// =============================================================================

func initLogger(cfg config.LogConfig) *zap.Logger {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var encoderConfig zapcore.EncoderConfig
	if cfg.Format == "console" {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	zapConfig := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      cfg.Format == "console",
		Encoding:         cfg.Format,
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	if zapConfig.Encoding != "json" {
		zapConfig.Encoding = "console"
	}

	opts := []zap.Option{zap.AddStacktrace(zapcore.ErrorLevel)}
	if cfg.EnableCaller {
		opts = append(opts, zap.AddCaller())
	}

	logger, err := zapConfig.Build(opts...)
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return logger
}
