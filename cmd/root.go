// Package cmd is the thin CLI shell around the compiler core — content
// here is a declared Non-goal (spec.md §1), but the ambient shell
// itself (cobra root + PersistentPreRun logger setup) is carried
// regardless, mirroring the teacher's cmd/root.go structure.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/arcwell-db/arcql/internal/logger"
	"github.com/arcwell-db/arcql/internal/version"
)

var Debug bool

var RootCmd = &cobra.Command{
	Use:   "arcql",
	Short: "arcql compiler core CLI",
	Long: fmt.Sprintf(`arcql is the CLI shell around the arcql compiler core:
schema modeling, IR, type inference, and the schema-delta -> backend-DDL
translator.

Version: %s %s

Commands:
  typecheck  Run type inference over a demo IR tree and print the result
  plan       Dispatch a demo schema delta and print the resulting backend ops
  check      Validate schema invariants for a demo schema
  serve      Start (or bootstrap) a backend instance via package cluster
  version    Show version information

Use "arcql [command] --help" for more information about a command.`,
		version.App(), platform()),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogger()
	},
}

func init() {
	RootCmd.PersistentFlags().BoolVar(&Debug, "debug", false, "Enable debug logging")
	RootCmd.AddCommand(VersionCmd)
	RootCmd.AddCommand(TypecheckCmd)
	RootCmd.AddCommand(PlanCmd)
	RootCmd.AddCommand(CheckCmd)
	RootCmd.AddCommand(ServeCmd)
}

func setupLogger() {
	level := slog.LevelInfo
	if Debug {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger.SetGlobal(slog.New(handler), Debug)
}

// platform returns the OS/architecture combination.
func platform() string {
	return runtime.GOOS + "/" + runtime.GOARCH
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
