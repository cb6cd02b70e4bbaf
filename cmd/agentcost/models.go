package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/janekbaraniewski/agentcost/internal/config"
)

func newModelsCommand(_ config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List the synced model price table",
		RunE: func(cc *cobra.Command, _ []string) error {
			repo, err := openRepository()
			if err != nil {
				return err
			}
			defer repo.Close()

			models, err := repo.List(cc.Context())
			if err != nil {
				return err
			}
			if len(models) == 0 {
				fmt.Println("No models synced yet. Run `agentcost sync run` first.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PROVIDER\tMODEL\tINPUT $/MTok\tOUTPUT $/MTok\tCONTEXT\tSYNCED")
			for _, m := range models {
				fmt.Fprintf(w, "%s\t%s\t%.4f\t%.4f\t%d\t%s\n",
					m.Provider, m.Model, m.InputPerMTok, m.OutputPerMTok,
					m.ContextWindow, m.LastSynced.Local().Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}
	return cmd
}
