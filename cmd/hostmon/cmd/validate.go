// Package cmd implements CLI commands for the host monitor.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"hostmon/internal/config"
)

// validateCmd represents the validate command.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "验证配置文件",
	Long:  "加载并验证配置文件和检查项定义，检查格式、必填字段、数值范围和阈值顺序约束。",
	Run:   runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringVarP(&checksPath, "checks", "k", "", "检查项定义文件路径（默认使用内置定义）")
}

// runValidate executes the validate command logic.
func runValidate(cmd *cobra.Command, args []string) {
	configPath := GetConfigFile()

	// Load and validate configuration (Load internally calls Validate)
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ 配置验证失败: %v\n", err)
		os.Exit(1)
	}

	// Validate the check definition file if one is in play
	resolvedChecksPath := checksPath
	if resolvedChecksPath == "" {
		resolvedChecksPath = cfg.Monitor.ChecksFile
	}
	if _, err := config.LoadChecks(resolvedChecksPath); err != nil {
		fmt.Fprintf(os.Stderr, "❌ 检查项定义验证失败: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ 配置文件验证通过: %s\n", configPath)
	if resolvedChecksPath != "" {
		fmt.Printf("✅ 检查项定义验证通过: %s\n", resolvedChecksPath)
	}
}
