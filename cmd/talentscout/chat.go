package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/kalambet/talentscout/internal/screening"
	"github.com/kalambet/talentscout/internal/sessions"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Run a screening interactively in the terminal",
	Long: `Run a screening interactively in the terminal. No server is needed.

Type /reset to start over. Say "bye" to end the screening early.

Examples:
  talentscout chat
  talentscout chat --export ./screenings/`,
	RunE: func(cmd *cobra.Command, args []string) error {
		exportPath, _ := cmd.Flags().GetString("export")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg, os.Stderr)
		if err != nil {
			return err
		}
		defer a.Close()

		if !term.IsTerminal(int(os.Stdout.Fd())) {
			noColor = true
		}
		interactive := term.IsTerminal(int(os.Stdin.Fd()))

		return runChat(ctx, a.sessions, os.Stdin, os.Stdout, chatOptions{
			exportPath:  exportPath,
			interactive: interactive,
		})
	},
}

func init() {
	chatCmd.Flags().String("export", "", "write the export document to this file or directory when the screening ends")
}

type chatOptions struct {
	// exportPath is a file, or a directory to receive the conventional file name.
	exportPath string
	// interactive prints an input prompt before every read.
	interactive bool
}

// runChat drives one screening from in to out until it completes, the
// candidate exits or input ends.
func runChat(ctx context.Context, mgr *sessions.Manager, in io.Reader, out io.Writer, opts chatOptions) error {
	started, err := mgr.Start(ctx)
	if err != nil {
		return fmt.Errorf("starting screening: %w", err)
	}
	id := started.ID
	printAssistant(out, started.Greeting)

	snap := started.Snapshot
	sc := bufio.NewScanner(in)
	for {
		if opts.interactive {
			fmt.Fprint(out, colorize(colorBold, "You: "))
		}
		if !sc.Scan() {
			break
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		if line == "/reset" {
			started, err := mgr.Reset(ctx, id)
			if err != nil {
				return fmt.Errorf("resetting screening: %w", err)
			}
			snap = started.Snapshot
			printAssistant(out, started.Greeting)
			continue
		}

		reply, err := mgr.Send(ctx, id, line)
		if err != nil {
			return fmt.Errorf("sending message: %w", err)
		}
		snap = reply.Snapshot
		printAssistant(out, reply.Message)
		if p := progressLine(snap); p != "" {
			fmt.Fprintln(out, colorize(colorCyan, p))
		}
		if snap.IsComplete {
			break
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	fmt.Fprintln(out)
	printSummary(out, snap)

	if opts.exportPath == "" {
		return nil
	}
	doc, err := mgr.Export(ctx, id)
	if err != nil {
		return err
	}
	path, err := writeExport(doc, opts.exportPath, time.Now())
	if err != nil {
		return err
	}
	printSuccess("Screening exported to %s", path)
	return nil
}

func printAssistant(w io.Writer, msg string) {
	fmt.Fprintf(w, "%s %s\n", colorize(colorGreen, "TalentScout:"), msg)
}

// writeExport writes doc as indented JSON. A directory target (existing, or
// spelled with a trailing separator) receives the conventional file name.
func writeExport(doc screening.Document, target string, now time.Time) (string, error) {
	path := target
	if info, err := os.Stat(target); (err == nil && info.IsDir()) || strings.HasSuffix(target, string(os.PathSeparator)) {
		path = filepath.Join(target, screening.FileName(doc, now))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating export dir: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding export: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("writing export: %w", err)
	}
	return path, nil
}
