package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/arcwell-db/arcql/cluster"
)

// ServeCmd is the thin wrapper around package cluster's Supervisor
// contract, exposing the §6.3 CLI flags verbatim. It is the one place
// in this repo that actually starts a backend process; everything else
// (schema, ir, infer, storage, views, delta, errmech) only ever
// produces or consumes text/values, never opens a connection itself.
var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start (or bootstrap) a backend instance",
}

var serveCfg cluster.Config
var serveUseContainer bool
var servePortFlag string
var serveLogLevelFlag string

func init() {
	ServeCmd.Flags().BoolVar(&serveCfg.BootstrapOnly, "bootstrap-only", false, "exit after bootstrap instead of serving")
	ServeCmd.Flags().StringVar(&serveCfg.BootstrapCommand, "bootstrap-command", "", "statement to run once at bootstrap")
	ServeCmd.Flags().StringVar(&servePortFlag, "port", "auto", `TCP port, or "auto"`)
	ServeCmd.Flags().StringVar(&serveCfg.TempDir, "temp-dir", "", "scratch directory for the backend runtime")
	ServeCmd.Flags().StringVar(&serveCfg.DataDir, "data-dir", "", "backend data directory")
	ServeCmd.Flags().StringVar(&serveCfg.RunstateDir, "runstate-dir", "", "directory for runtime state (sockets, pidfile)")
	ServeCmd.Flags().StringVar(&serveCfg.BackendDSN, "backend-dsn", "", "connect to an existing backend instead of spawning one")
	ServeCmd.Flags().StringVar(&serveCfg.TenantID, "tenant-id", "", "tenant/database identifier")
	ServeCmd.Flags().IntVar(&serveCfg.MaxBackendConnections, "max-backend-connections", 10, "backend connection pool ceiling")
	ServeCmd.Flags().StringVar(&serveCfg.EmitServerStatus, "emit-server-status", "", `path or "fd:N" to receive READY= status`)
	ServeCmd.Flags().BoolVar(&serveCfg.GenerateSelfSignedCert, "generate-self-signed-cert", false, "generate a self-signed TLS cert on start")
	ServeCmd.Flags().BoolVar(&serveCfg.AllowInsecureHTTPClients, "allow-insecure-http-clients", false, "accept plaintext HTTP clients")
	ServeCmd.Flags().StringVar(&serveLogLevelFlag, "log-level", "i", "log level: d|i|w|e|s")
	ServeCmd.Flags().BoolVar(&serveUseContainer, "use-container", false, "spawn the backend in a Docker container instead of embedded-postgres")

	ServeCmd.RunE = runServe
}

func runServe(cmd *cobra.Command, args []string) error {
	level, err := cluster.ParseLogLevel(serveLogLevelFlag)
	if err != nil {
		return err
	}
	serveCfg.LogLevel = level

	if servePortFlag == "auto" || servePortFlag == "" {
		serveCfg.Port = cluster.PortAuto
	} else {
		if _, err := fmt.Sscanf(servePortFlag, "%d", &serveCfg.Port); err != nil {
			return fmt.Errorf("serve: invalid --port %q: %w", servePortFlag, err)
		}
	}

	if serveCfg.BackendDSN != "" {
		fmt.Printf("READY=%s\n", serveCfg.BackendDSN)
		return nil
	}

	var supervisor cluster.Supervisor
	if serveUseContainer {
		supervisor = &cluster.ContainerSupervisor{}
	} else {
		supervisor = &cluster.EmbeddedSupervisor{}
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
	defer cancel()

	handle, err := supervisor.Start(ctx, &serveCfg)
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	if err := handle.WaitReady(ctx); err != nil {
		return fmt.Errorf("serve: backend never became ready: %w", err)
	}
	fmt.Printf("READY=%s\n", handle.DSN())

	if serveCfg.BootstrapOnly {
		return handle.Shutdown(context.Background())
	}

	<-ctx.Done()
	return handle.Shutdown(context.Background())
}
