// resumectl 在命令行上运行简历抽取，不依赖任何外部存储
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"resume-extractor/internal/config"
	"resume-extractor/internal/logger"
)

// rootOptions 所有子命令共享的选项
type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "resumectl",
		Short:         "Extract structured data from resumes",
		Long:          "resumectl turns PDF/DOCX resumes or raw text into a structured JSON record and validates records against the output schema.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			// 日志写 stderr，stdout 只输出结果
			logger.InitWithWriter(logger.Config{Level: opts.logLevel, Format: "pretty"}, cmd.ErrOrStderr())
		},
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to config file (extractor/nlp/tika sections are used)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level")

	cmd.AddCommand(
		newExtractCmd(opts),
		newTextCmd(opts),
		newValidateCmd(),
		newVocabCmd(opts),
	)
	return cmd
}

// loadConfig 未指定 --config 时使用默认配置，不做路径搜索
func (o *rootOptions) loadConfig() (*config.Config, error) {
	if o.configPath == "" {
		return config.Default(), nil
	}
	return config.LoadConfig(o.configPath)
}

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
