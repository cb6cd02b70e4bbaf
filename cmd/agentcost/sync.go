package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/janekbaraniewski/agentcost/internal/config"
	"github.com/janekbaraniewski/agentcost/internal/core"
	"github.com/janekbaraniewski/agentcost/internal/modelsync"
)

func newSyncCommand(cfg config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Manage model pricing synchronization",
	}
	cmd.AddCommand(newSyncRunCommand(cfg), newSyncDaemonCommand(cfg))
	return cmd
}

func newScheduler(cfg config.Config, repo core.ModelRepository) *modelsync.Scheduler {
	return modelsync.NewScheduler(modelsync.SchedulerConfig{
		Repo:      repo,
		Providers: buildProviders(cfg),
		Policy:    core.ConflictResolution(cfg.Sync.ConflictPolicy),
		Interval:  cfg.SyncInterval(),
		Retention: cfg.Sync.HistoryRetention,
	})
}

func newSyncRunCommand(cfg config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run one sync pass and exit",
		RunE: func(cc *cobra.Command, _ []string) error {
			repo, err := openRepository()
			if err != nil {
				return err
			}
			defer repo.Close()

			results, err := newScheduler(cfg, repo).SyncOnce(cc.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PROVIDER\tOK\tFETCHED\tUPSERTED\tDURATION")
			for _, r := range results {
				fmt.Fprintf(w, "%s\t%v\t%d\t%d\t%s\n",
					r.Provider, r.Success, r.ModelsFetched, r.ModelsUpserted, r.Duration.Round(time.Millisecond))
			}
			return w.Flush()
		},
	}
}

func newSyncDaemonCommand(cfg config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Sync on an interval until interrupted",
		RunE: func(_ *cobra.Command, _ []string) error {
			repo, err := openRepository()
			if err != nil {
				return err
			}
			defer repo.Close()

			sched := newScheduler(cfg, repo)
			if err := sched.Start(); err != nil {
				return err
			}
			fmt.Printf("Syncing every %s. Ctrl-C to stop.\n", cfg.SyncInterval())

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
			<-sig

			sched.Stop()
			return nil
		},
	}
}
