package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"beacon-core/internal/bootstrap"
)

var nodesCmd = &cobra.Command{
	Use:   "nodes",
	Short: "查询每个节点一次并打印高度与哈希",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		clients, closeAll, err := bootstrap.NewClients(cmd.Context(), cfg.Nodes)
		if err != nil {
			return err
		}
		defer closeAll()

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NODE\tHEIGHT\tBEST BLOCK\tERROR")
		for _, c := range clients {
			snap, err := c.Query(cmd.Context())
			if err != nil {
				fmt.Fprintf(w, "%s\t-\t-\t%v\n", c.Node(), err)
				continue
			}
			fmt.Fprintf(w, "%s\t%d\t%s\t\n", c.Node(), snap.Height, snap.BestBlockHash)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(nodesCmd)
}
