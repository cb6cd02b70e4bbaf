package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/janekbaraniewski/agentcost/internal/config"
)

func newSessionsCommand(cfg config.Config) *cobra.Command {
	var tool string

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List sessions recorded by installed tools",
		RunE: func(_ *cobra.Command, _ []string) error {
			adapters, err := installedAdapters(cfg, nil, tool)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TOOL\tSESSION\tSTARTED\tSTATUS\tTOKENS\tMODEL")
			for _, a := range adapters {
				sessions, err := a.Sessions()
				if err != nil {
					fmt.Fprintf(os.Stderr, "%s: %v\n", a.Name(), err)
					continue
				}
				for _, s := range sessions {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
						a.Tool(), shortID(s.ID),
						s.StartedAt.Local().Format("2006-01-02 15:04"),
						s.Status, s.Usage.TotalTokens(), s.Usage.Model)
				}
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&tool, "tool", "", "limit to one tool (claude-code, codex, gemini-cli, cursor)")
	return cmd
}

func newActiveCommand(cfg config.Config) *cobra.Command {
	var tool string

	cmd := &cobra.Command{
		Use:   "active",
		Short: "Show sessions currently considered live",
		RunE: func(_ *cobra.Command, _ []string) error {
			adapters, err := installedAdapters(cfg, nil, tool)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TOOL\tSESSION\tLAST ACTIVITY\tTOKENS\tPROJECT")
			var any bool
			for _, a := range adapters {
				active, err := a.ActiveSessions()
				if err != nil {
					fmt.Fprintf(os.Stderr, "%s: %v\n", a.Name(), err)
					continue
				}
				for _, s := range active {
					any = true
					fmt.Fprintf(w, "%s\t%s\t%s ago\t%d\t%s\n",
						s.Tool, shortID(s.ID),
						time.Since(s.LastActivityAt).Round(time.Second),
						s.Tokens, s.ProjectPath)
				}
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if !any {
				fmt.Println("No active sessions.")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&tool, "tool", "", "limit to one tool")
	return cmd
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
