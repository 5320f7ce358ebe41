package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kalambet/talentscout/internal/questions"
	"github.com/kalambet/talentscout/internal/techstack"
)

var questionsCmd = &cobra.Command{
	Use:   "questions <tech stack>",
	Short: "Generate the technical questions for a tech stack",
	Long: `Generate the five technical questions a screening would ask.

Examples:
  talentscout questions "Python, Django, PostgreSQL, Docker"
  talentscout questions Go Kubernetes Redis`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		stack := strings.Join(args, " ")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := context.Background()
		eng, err := readyEngine(ctx, cfg, os.Stderr)
		if err != nil {
			return err
		}

		gen := questions.NewGenerator(nil, "", cfg.Engine.Timeout)
		if eng != nil {
			gen = questions.NewGenerator(eng, cfg.ChatModel(), cfg.Engine.Timeout)
		}

		printStep("Generating questions for %s", stack)
		res := gen.Generate(ctx, stack)

		for _, g := range techstack.Categorize(stack).Groups() {
			printStatus(g.Label, "%s", strings.Join(g.Items, ", "))
		}
		for i, q := range res.Questions {
			fmt.Printf("%s %s\n", colorize(colorBold, fmt.Sprintf("%d.", i+1)), q)
		}

		if res.Source == questions.SourceFallback {
			printWarning("Using the built-in question set: %v", res.Err)
		} else {
			printSuccess("Generated by %s", cfg.ChatModel())
		}
		return nil
	},
}
