// Package main implements ticketctl, a command-line front end for the ticket pipelines.
package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	liblog "trpc.group/trpc-go/trpc-a2a-go/log"

	"github.com/tuannvm/ticketsmith/internal/config"
	"github.com/tuannvm/ticketsmith/internal/guardrail"
	"github.com/tuannvm/ticketsmith/internal/llm"
	log "github.com/tuannvm/ticketsmith/internal/logging"
	"github.com/tuannvm/ticketsmith/internal/pipeline"
)

var version = "dev"

// cfg is populated from flags, environment and .env before any command runs
var cfg *config.Config

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ticketctl",
	Short: "Enhance tickets, break them into tasks and generate tests",
	Long: `ticketctl runs the ticket pipelines from the command line.

Results are written next to the input or into the configured output directories.
Every flag can also be set through the matching environment variable
(for example LLM_MODEL or GUARDRAIL_POLICY) or a .env file.`,
	Version:      version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config.GetViper().Set("agent_name", config.CLIAgentName)
		cfg = config.NewConfig()

		logger := log.Init(cfg.LogLevel)
		liblog.Default = logger.WithOptions(zap.AddCallerSkip(1)).Sugar()
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("llm-provider", "", "LLM provider (openai, azure, anthropic, ollama)")
	flags.String("llm-model", "", "LLM model name")
	flags.String("guardrail-policy", "", "What a failed output check does: abort or annotate")
	flags.String("output-dir", "", "Directory for enhanced tickets")
	flags.String("tests-dir", "", "Directory for generated tests")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")

	v := config.GetViper()
	for _, name := range []string{"llm-provider", "llm-model", "guardrail-policy", "output-dir", "tests-dir", "log-level"} {
		// Keys use underscores; only explicitly set flags override env and defaults
		_ = v.BindPFlag(flagKey(name), flags.Lookup(name))
	}

	rootCmd.AddCommand(enhanceCmd)
	rootCmd.AddCommand(tasksCmd)
	rootCmd.AddCommand(testsCmd)
	rootCmd.AddCommand(remoteCmd)
}

func flagKey(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}

// newOrchestrator builds the pipelines from the loaded configuration
func newOrchestrator() (*pipeline.Orchestrator, error) {
	client, err := llm.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return pipeline.New(client, nil, guardrail.ParsePolicy(cfg.GuardrailPolicy)), nil
}
