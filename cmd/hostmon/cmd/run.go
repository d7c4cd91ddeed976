// Package cmd implements CLI commands for the host monitor.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"hostmon/internal/client/gateway"
	"hostmon/internal/config"
	"hostmon/internal/procfs"
	"hostmon/internal/procreport"
	"hostmon/internal/service"
)

// Command flags
var (
	checksPath string // Path to check definition file
	procRoot   string // Proc filesystem root (for containers / tests)
)

// runCmd represents the run command.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "启动监控循环",
	Long: `启动主机监控循环，按配置的间隔执行完整的资源检查周期：
1. 解析 CPU 累积计数器，计算距上一轮的利用率
2. 解析内存计数表，计算已用比例
3. 读取 15 分钟负载，按逻辑核数归一化
4. 枚举设备挂载点，逐个检查磁盘用量
5. 根据阈值评估告警级别并上报告警网关

单轮内任何错误都在轮边界捕获，冷却 10 秒后继续下一轮，
监控进程只能由外部信号终止。

示例:
  # 使用默认配置启动
  hostmon run -c config.yaml

  # 使用自定义检查项定义文件
  hostmon run -c config.yaml -k checks.yaml

  # 容器内监控宿主机（挂载宿主 /proc）
  hostmon run -c config.yaml --proc-root /host/proc`,
	Run: runMonitor,
}

func init() {
	rootCmd.AddCommand(runCmd)

	// Define command-specific flags
	runCmd.Flags().StringVarP(&checksPath, "checks", "k", "", "检查项定义文件路径（默认使用内置定义）")
	runCmd.Flags().StringVar(&procRoot, "proc-root", procfs.DefaultRoot, "proc 文件系统根路径")
}

// runMonitor executes the monitor loop until terminated.
func runMonitor(cmd *cobra.Command, args []string) {
	// Print banner first
	printBanner()

	// Step 1: Load configuration
	configPath := GetConfigFile()
	fmt.Printf("📋 加载配置文件: %s\n", configPath)
	cfg, err := config.Load(configPath)
	if err != nil {
		// Use temporary console logger for config loading errors
		tmpLogger := setupLogger("error", "console")
		tmpLogger.Error().Err(err).Str("path", configPath).Msg("failed to load config")
		fmt.Fprintf(os.Stderr, "❌ 加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// Step 2: Initialize logger with configuration
	// Command line --log-level overrides config file setting
	logLevel := cfg.Logging.Level
	if GetLogLevel() != "info" { // If explicitly set via command line
		logLevel = GetLogLevel()
	}
	logger := setupLogger(logLevel, cfg.Logging.Format)
	logger.Debug().
		Str("config_path", configPath).
		Str("log_level", logLevel).
		Str("log_format", cfg.Logging.Format).
		Msg("configuration loaded successfully")

	// Step 3: Load check definitions
	resolvedChecksPath := checksPath
	if resolvedChecksPath == "" {
		resolvedChecksPath = cfg.Monitor.ChecksFile
	}
	checks, err := config.LoadChecks(resolvedChecksPath)
	if err != nil {
		logger.Error().Err(err).Str("path", resolvedChecksPath).Msg("failed to load checks")
		fmt.Fprintf(os.Stderr, "❌ 加载检查项定义失败: %v\n", err)
		os.Exit(1)
	}
	enabledCount := config.CountEnabledChecks(checks)
	if resolvedChecksPath != "" {
		fmt.Printf("📊 加载检查项定义: %s (%d 个启用)\n", resolvedChecksPath, enabledCount)
	} else {
		fmt.Printf("📊 使用内置检查项定义 (%d 个启用)\n", enabledCount)
	}
	logger.Debug().Int("enabled_checks", enabledCount).Int("total_checks", len(checks)).Msg("checks loaded")

	// Step 4: Display gateway info
	gwClient := gateway.NewClient(&cfg.Gateway, &cfg.HTTP.Retry, logger)
	fmt.Printf("🔗 告警网关: %s\n", gwClient.Endpoint())
	fmt.Printf("⏱️  轮询间隔: %s\n\n", cfg.Monitor.Interval)
	logger.Info().
		Str("gateway", gwClient.Endpoint()).
		Dur("interval", cfg.Monitor.Interval).
		Msg("connecting to alert gateway")

	// Step 5: Create services
	reader := procfs.NewReader(procRoot, logger)
	reporter := procreport.NewProvider(logger)
	evaluator := service.NewEvaluator(&cfg.Thresholds, logger)
	dispatcher := service.NewDispatcher(gwClient, reporter, cfg.Monitor.TopProcesses, logger)
	monitor := service.NewMonitor(reader, evaluator, dispatcher, checks, cfg.Monitor.Interval, logger)
	logger.Debug().Msg("services initialized")

	// Step 6: Run until terminated
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := monitor.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("monitor stopped unexpectedly")
		fmt.Fprintf(os.Stderr, "❌ 监控循环异常退出: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\n👋 收到终止信号，监控已停止")
	logger.Info().Msg("monitor stopped")
}

// setupLogger creates a zerolog logger with the specified level and format.
func setupLogger(level string, format string) zerolog.Logger {
	// Set log level
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	// Select output format based on configuration
	var output io.Writer
	if format == "json" {
		// JSON format - structured logging for log aggregation systems
		output = os.Stderr
	} else {
		// Console format - human-readable output for development
		output = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: "15:04:05",
			NoColor:    false,
		}
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// printBanner prints the application banner.
func printBanner() {
	fmt.Printf("🩺 主机健康监控器 %s\n", Version)
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
}
