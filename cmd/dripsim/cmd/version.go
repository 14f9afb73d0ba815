package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the current version of the dripsim CLI.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("dripsim version %s\n", version)
		fmt.Println("A dividend reinvestment simulator for income ETFs and stocks")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
