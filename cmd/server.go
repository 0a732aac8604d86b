package cmd

import (
	"github.com/spf13/cobra"

	"synerx-dashboard/config"
	server2 "synerx-dashboard/server"
)

func server(config *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "start dashboard http server",
		Run: func(cmd *cobra.Command, args []string) {
			server2.RunHttp(config)
		},
	}
}
