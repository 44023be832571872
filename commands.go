package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"

	"dictate/config"
	"dictate/history"
	"dictate/login"
	"dictate/shutdown"
)

const usage = `usage:
  dictate [flags]
  dictate model [path|download]
  dictate history [list|delete <id>|clear]
  dictate login [on|off|status]`

// runCommand handles the subcommands and returns the exit code.
func runCommand(name string, args []string) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	switch name {
	case "model":
		err = modelCommand(cfg, args, os.Stdout)
	case "history":
		err = historyCommand(cfg, args, os.Stdout)
	case "login":
		err = loginCommand(args, os.Stdout)
	default:
		err = fmt.Errorf("unknown command %q", name)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func sub(args []string, def string) string {
	if len(args) == 0 {
		return def
	}
	return args[0]
}

func modelCommand(cfg *config.Config, args []string, out io.Writer) error {
	m := newModels(cfg)
	switch sub(args, "path") {
	case "path":
		path, ready := m.Location()
		state := "missing"
		if ready {
			state = "ready"
		}
		fmt.Fprintf(out, "%s (%s)\n", path, state)
		return nil
	case "download":
		if m.Ready() {
			fmt.Fprintf(out, "Model already present at %s\n", m.Path())
			return nil
		}
		ctx, stop := shutdown.Context(context.Background())
		defer stop()
		fmt.Fprintf(out, "Downloading %s\n", m.URL)
		if err := m.Download(ctx, out); err != nil {
			return err
		}
		fmt.Fprintf(out, "\nSaved to %s\n", m.Path())
		return nil
	}
	return errors.New(usage)
}

func historyCommand(cfg *config.Config, args []string, out io.Writer) error {
	store, err := history.Open(historyDir(cfg))
	if err != nil {
		return fmt.Errorf("%w (is dictate running?)", err)
	}
	defer store.Close()
	return runHistory(store, args, out)
}

func runHistory(store *history.Store, args []string, out io.Writer) error {
	switch sub(args, "list") {
	case "list":
		records, err := store.List()
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Fprintln(out, "No transcripts yet")
			return nil
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		for _, r := range records {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", r.ID, r.Timestamp.Local().Format("2006-01-02 15:04:05"), oneLine(r.Text))
		}
		return tw.Flush()
	case "delete":
		if len(args) < 2 {
			return errors.New("usage: dictate history delete <id>")
		}
		id, err := uuid.Parse(args[1])
		if err != nil {
			return fmt.Errorf("invalid id %q: %w", args[1], err)
		}
		if err := store.Delete(id); err != nil {
			return err
		}
		fmt.Fprintf(out, "Deleted %s\n", id)
		return nil
	case "clear":
		if err := store.Clear(); err != nil {
			return err
		}
		fmt.Fprintln(out, "History cleared")
		return nil
	}
	return errors.New(usage)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func loginCommand(args []string, out io.Writer) error {
	switch sub(args, "status") {
	case "on":
		if err := login.Enable(); err != nil {
			return err
		}
		fmt.Fprintln(out, "Launch at login enabled")
		return nil
	case "off":
		if err := login.Disable(); err != nil {
			return err
		}
		fmt.Fprintln(out, "Launch at login disabled")
		return nil
	case "status":
		fmt.Fprintf(out, "Launch at login: %s\n", login.State())
		return nil
	}
	return errors.New(usage)
}
