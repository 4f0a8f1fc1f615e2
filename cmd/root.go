package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"syl-optimizer/internal/app"
)

type optFlags struct {
	configArg      string
	outputDirArg   string
	numArg         int
	marketplaceArg string
	maxRetriesArg  int
	providerArg    string
	logFileArg     string
	verboseArg     bool
}

func Execute() error {
	root := NewRootCmd(os.Stdout, os.Stderr)
	root.SetArgs(normalizeArgs(os.Args[1:]))
	return root.Execute()
}

func NewRootCmd(stdout, stderr *os.File) *cobra.Command {
	flags := &optFlags{}
	showVersion := false

	root := &cobra.Command{
		Use:           "syl-optimizer [file_or_dir ...]",
		Short:         "根据关键词库优化 Amazon listing 文案并生成评分报告",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runOpt(stdout, stderr, flags, &showVersion),
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.CompletionOptions.HiddenDefaultCmd = true
	bindOptFlags(root, flags)
	root.PersistentFlags().BoolVarP(&showVersion, "version", "v", false, "显示版本信息")

	optCmd := &cobra.Command{
		Use:           "opt [file_or_dir ...]",
		Short:         "优化 listing 并生成 Markdown 报告",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runOpt(stdout, stderr, flags, &showVersion),
	}
	root.AddCommand(optCmd)

	checkCmd := &cobra.Command{
		Use:           "check <listing.md>",
		Short:         "离线复检一份已生成的 listing",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runCheck(stdout, flags),
	}
	root.AddCommand(checkCmd)

	versionCmd := &cobra.Command{
		Use:           "version",
		Short:         "显示版本信息",
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			printVersion(stdout)
		},
	}
	root.AddCommand(versionCmd)
	return root
}

func bindOptFlags(cmd *cobra.Command, flags *optFlags) {
	cmd.PersistentFlags().StringVar(&flags.configArg, "config", "", "配置文件路径，默认 ~/.syl-optimizer/config.yaml")
	cmd.PersistentFlags().StringVarP(&flags.outputDirArg, "out", "o", "", "输出目录，默认当前目录")
	cmd.PersistentFlags().IntVarP(&flags.numArg, "num", "n", 0, "每个需求文件生成候选数量")
	cmd.PersistentFlags().StringVarP(&flags.marketplaceArg, "marketplace", "m", "", "目标站点（us/uk/ca/de/fr/es/it/jp）")
	cmd.PersistentFlags().IntVar(&flags.maxRetriesArg, "max-retries", 0, "最大重试次数")
	cmd.PersistentFlags().StringVar(&flags.providerArg, "provider", "", "覆盖配置中的 provider")
	cmd.PersistentFlags().StringVar(&flags.logFileArg, "log-file", "", "NDJSON 日志文件路径")
	cmd.PersistentFlags().BoolVar(&flags.verboseArg, "verbose", false, "输出详细 NDJSON（机器友好）")
}

func runOpt(stdout, stderr *os.File, flags *optFlags, showVersion *bool) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if showVersion != nil && *showVersion {
			printVersion(stdout)
			return nil
		}

		if len(args) == 0 {
			_ = cmd.Help()
			return nil
		}

		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("读取当前目录失败：%w", err)
		}

		res, err := app.Run(context.Background(), app.Options{
			Inputs:      args,
			ConfigPath:  flags.configArg,
			OutputDir:   flags.outputDirArg,
			Num:         flags.numArg,
			Marketplace: flags.marketplaceArg,
			MaxRetries:  flags.maxRetriesArg,
			Provider:    flags.providerArg,
			LogFile:     flags.logFileArg,
			CWD:         cwd,
			Stdout:      stdout,
			Stderr:      stderr,
		})
		if err != nil {
			return err
		}

		finalLine := fmt.Sprintf(
			"任务完成：成功 %d，失败 %d，总耗时 %s",
			res.Succeeded,
			res.Failed,
			formatDurationMS(res.ElapsedMS),
		)
		if res.Failed > 0 {
			return fmt.Errorf("%s", finalLine)
		}
		if !flags.verboseArg {
			fmt.Fprintln(stdout, finalLine)
			for _, item := range res.Items {
				fmt.Fprintf(stdout, "  %s 候选%d：%.1f（%s）→ %s\n",
					item.Marketplace, item.Candidate, item.Score, item.Grade, item.OutputFile)
			}
		}
		return nil
	}
}

func runCheck(stdout *os.File, flags *optFlags) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("读取当前目录失败：%w", err)
		}

		res, err := app.Check(app.CheckOptions{
			Input:       args[0],
			ConfigPath:  flags.configArg,
			Marketplace: flags.marketplaceArg,
			LogFile:     flags.logFileArg,
			CWD:         cwd,
			Stdout:      stdout,
		})
		if err != nil {
			return err
		}

		if !flags.verboseArg {
			fmt.Fprintf(stdout, "复检完成（%s）：覆盖率 %.1f%%（%s），合规 %s，得分 %.1f（%s）%s\n",
				res.Marketplace, res.Coverage.OverallPct, res.Coverage.Mode,
				res.Compliance.Status, res.Ranking.Score, res.Ranking.Grade, res.Ranking.Verdict)
			for _, v := range res.Compliance.Violations {
				fmt.Fprintf(stdout, "  [%s] %s %s：%s\n", v.Severity, v.Field, v.RuleID, v.Message)
			}
		}
		return nil
	}
}

func formatDurationMS(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	if ms < 60_000 {
		return fmt.Sprintf("%.2fs", float64(ms)/1000.0)
	}
	minutes := ms / 60_000
	remainMS := ms % 60_000
	if remainMS == 0 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dm%.1fs", minutes, float64(remainMS)/1000.0)
}

func normalizeArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}
	first := args[0]
	switch first {
	case "opt", "check", "help", "completion", "version":
		return args
	}
	if first == "-h" || first == "--help" || first == "-v" || first == "--version" {
		return args
	}
	if !containsPositionalSource(args) {
		return args
	}
	return append([]string{"opt"}, args...)
}

func containsPositionalSource(args []string) bool {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return i+1 < len(args)
		}
		if arg == "--config" || arg == "--out" || arg == "-o" || arg == "--num" || arg == "-n" || arg == "--marketplace" || arg == "-m" || arg == "--max-retries" || arg == "--provider" || arg == "--log-file" {
			i++
			continue
		}
		if strings.HasPrefix(arg, "--config=") || strings.HasPrefix(arg, "--out=") || strings.HasPrefix(arg, "--num=") || strings.HasPrefix(arg, "--marketplace=") || strings.HasPrefix(arg, "--max-retries=") || strings.HasPrefix(arg, "--provider=") || strings.HasPrefix(arg, "--log-file=") {
			continue
		}
		if strings.HasPrefix(arg, "-") {
			continue
		}
		return true
	}
	return false
}
