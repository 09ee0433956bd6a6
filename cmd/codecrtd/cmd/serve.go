package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the demo gRPC host-binding server",
	Long: `serve starts a gRPC server exposing a health-check and reflection
service over the configured listen address. It exists to demonstrate
how a host binding fronts the codecrt runtime; the application RPC
surface described in proto/codecrt.proto (configure/encode/decode/
flush streaming) is generated separately via protoc/buf and wired into
this server once generated, the same way any protobuf-first Go service
adds handlers after code generation.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("listen", "", "gRPC listen address, e.g. :9443 (overrides server.host and server.port)")
}

func runServe(c *cobra.Command, _ []string) error {
	logger := slog.Default()

	addr := cfg.Server.Address()
	if listen, _ := c.Flags().GetString("listen"); listen != "" {
		addr = listen
	}

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("serve: listen %s: %w", addr, err)
	}

	maxMsgSize := cfg.Server.MaxMessageSizeBytes()
	server := grpc.NewServer(
		grpc.MaxRecvMsgSize(maxMsgSize),
		grpc.MaxSendMsgSize(maxMsgSize),
	)
	healthSrv := health.NewServer()
	grpc_health_v1.RegisterHealthServer(server, healthSrv)
	healthSrv.SetServingStatus("codecrt", grpc_health_v1.HealthCheckResponse_SERVING)
	reflection.Register(server)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("codecrtd gRPC server listening", slog.String("address", addr))
		serveErr <- server.Serve(lis)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case sig := <-sigCh:
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	}

	healthSrv.SetServingStatus("codecrt", grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	stopped := make(chan struct{})
	go func() {
		server.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-shutdownCtx.Done():
		server.Stop()
	}

	return nil
}
