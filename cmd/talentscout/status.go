package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/kalambet/talentscout/internal/config"
	"github.com/kalambet/talentscout/internal/engine"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server and text-generation backend status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus(cmd.Context())
	},
}

func showStatus(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		// Still show partial status even if config fails.
		printError("config error: %v", err)
		return nil
	}

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(fmt.Sprintf("http://127.0.0.1:%d/health", cfg.Server.Port))
	if err != nil {
		printStatus("Server", "stopped")
	} else {
		resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			printStatus("Server", "running on port %d", cfg.Server.Port)
		} else {
			printStatus("Server", "error (HTTP %d)", resp.StatusCode)
		}
	}

	printStatus("Backend", "%s", cfg.Engine.Backend)
	eng, err := engine.Detect(engine.DetectConfig{
		Backend:       cfg.Engine.Backend,
		OllamaBaseURL: cfg.Ollama.BaseURL,
		OpenAIBaseURL: cfg.OpenAI.BaseURL,
		OpenAIAPIKey:  cfg.OpenAI.APIKey,
	})
	switch {
	case err != nil:
		printStatus("Engine", "misconfigured: %v", err)
	case eng == nil:
		printStatus("Engine", "disabled (templated replies)")
	case !eng.IsRunning(ctx):
		printStatus("Engine", "not reachable (templated replies)")
	default:
		printStatus("Engine", "running")
		model := cfg.ChatModel()
		if eng.HasModel(ctx, model) {
			printStatus("Chat model", "%s (available)", model)
		} else {
			printStatus("Chat model", "%s (missing)", model)
		}
	}

	printStatus("Timeout", "%s", cfg.Engine.Timeout)
	if cfg.Screening.PolicyFile != "" {
		printStatus("Policy", "%s", cfg.Screening.PolicyFile)
	}
	return nil
}
