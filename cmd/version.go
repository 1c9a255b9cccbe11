package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arcwell-db/arcql/internal/version"
)

var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  "Display the version number of arcql",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("arcql v%s %s\n", version.App(), platform())
	},
}
