package main

import (
	"fmt"
	"unshorten/pkg/domains"

	"github.com/spf13/cobra"
)

func domainsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "domains",
		Short: "Prints the builtin list of known URL shortening services",
		Run: func(cmd *cobra.Command, args []string) {
			for _, d := range domains.Builtin() {
				fmt.Fprintln(cmd.OutOrStdout(), d)
			}
		},
	}
}
