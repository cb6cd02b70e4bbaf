package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/janekbaraniewski/agentcost/internal/config"
)

func newCostCommand(cfg config.Config) *cobra.Command {
	var (
		tool  string
		since string
	)

	cmd := &cobra.Command{
		Use:   "cost",
		Short: "Report token usage and estimated spend per tool",
		RunE: func(_ *cobra.Command, _ []string) error {
			cutoff, err := parseSince(since)
			if err != nil {
				return err
			}

			repo, err := openRepository()
			if err != nil {
				// Priced from static tables when the synced repository is
				// unavailable.
				fmt.Fprintf(os.Stderr, "model repository unavailable: %v\n", err)
			} else {
				defer repo.Close()
			}

			adapters, err := installedAdapters(cfg, repoOrNil(repo), tool)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TOOL\tMESSAGES\tINPUT\tOUTPUT\tCACHE READ\tCOST (USD)")
			var grand float64
			for _, a := range adapters {
				usage, err := a.Usage(cutoff)
				if err != nil {
					fmt.Fprintf(os.Stderr, "%s: %v\n", a.Name(), err)
					continue
				}
				cost, err := a.TotalCost(cutoff)
				if err != nil {
					fmt.Fprintf(os.Stderr, "%s: %v\n", a.Name(), err)
					continue
				}
				grand += cost
				fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%.4f\n",
					a.Tool(), usage.Messages,
					usage.InputTokens, usage.OutputTokens, usage.CacheReadTokens, cost)
			}
			fmt.Fprintf(w, "TOTAL\t\t\t\t\t%.4f\n", grand)
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&tool, "tool", "", "limit to one tool")
	cmd.Flags().StringVar(&since, "since", "", "only count sessions active since (e.g. 24h, 7d, 2026-08-01)")
	return cmd
}

// parseSince accepts a duration (with day suffix support) or a date; an
// empty value means all history.
func parseSince(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return time.Now().Add(-d), nil
	}
	if len(raw) > 1 && raw[len(raw)-1] == 'd' {
		if d, err := time.ParseDuration(raw[:len(raw)-1] + "h"); err == nil {
			return time.Now().Add(-d * 24), nil
		}
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("cannot parse --since value %q", raw)
}
