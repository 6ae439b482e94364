package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/unanue/mostrador"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of mostrador",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("mostrador version %s\n", strings.TrimSpace(mostrador.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
