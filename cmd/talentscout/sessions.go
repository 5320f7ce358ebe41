package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kalambet/talentscout/internal/screening"
	"github.com/kalambet/talentscout/internal/sessions"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Inspect screenings held by a running server",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent screenings",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.get(cmd.Context(), fmt.Sprintf("/v1/sessions?limit=%d", limit))
		if err != nil {
			return err
		}
		var result struct {
			Sessions []sessions.Summary `json:"sessions"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		if len(result.Sessions) == 0 {
			fmt.Println("No screenings found.")
			return nil
		}
		for _, s := range result.Sessions {
			name := s.Candidate
			if name == "" {
				name = "(no name yet)"
			}
			progress := ""
			if s.Total > 0 {
				progress = fmt.Sprintf("%d/%d", s.Answered, s.Total)
			}
			fmt.Printf("%s  %-20s %-24s %-5s %s\n",
				colorize(colorCyan, s.ID[:8]),
				s.Step,
				name,
				progress,
				s.UpdatedAt.Local().Format(time.DateTime),
			)
		}
		return nil
	},
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show the state of a screening",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.get(cmd.Context(), "/v1/sessions/"+args[0])
		if err != nil {
			return err
		}
		var snap screening.Snapshot
		if err := decodeJSON(resp, &snap); err != nil {
			return err
		}

		printStatus("Step", "%s", snap.Step)
		if p := progressLine(snap); p != "" {
			printStatus("Progress", "%s", p)
		}
		printSummary(os.Stdout, snap)
		return nil
	},
}

var sessionsExportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Export a screening as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")

		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.get(cmd.Context(), "/v1/sessions/"+args[0]+"/export")
		if err != nil {
			return err
		}
		var doc screening.Document
		if err := decodeJSON(resp, &doc); err != nil {
			return err
		}

		if output == "" {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(doc)
		}
		path, err := writeExport(doc, output, time.Now())
		if err != nil {
			return err
		}
		printSuccess("Screening exported to %s", path)
		return nil
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a screening",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.delete(cmd.Context(), "/v1/sessions/"+args[0])
		if err != nil {
			return err
		}
		if err := decodeJSON(resp, nil); err != nil {
			return err
		}
		printSuccess("Deleted screening %s", args[0])
		return nil
	},
}

func init() {
	sessionsListCmd.Flags().Int("limit", 20, "maximum number of screenings to list")
	sessionsExportCmd.Flags().String("output", "", "file or directory to write (default: stdout)")

	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsShowCmd)
	sessionsCmd.AddCommand(sessionsExportCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)
}
