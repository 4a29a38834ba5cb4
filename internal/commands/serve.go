package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/Hruthwik-68/MyVyaya-sub000/internal/auth"
	"github.com/Hruthwik-68/MyVyaya-sub000/internal/config"
	"github.com/Hruthwik-68/MyVyaya-sub000/internal/ledger"
	"github.com/Hruthwik-68/MyVyaya-sub000/internal/metrics"
	"github.com/Hruthwik-68/MyVyaya-sub000/internal/middleware"
	"github.com/Hruthwik-68/MyVyaya-sub000/internal/notify"
	"github.com/Hruthwik-68/MyVyaya-sub000/internal/notify/kafka"
	"github.com/Hruthwik-68/MyVyaya-sub000/internal/service"
	"github.com/Hruthwik-68/MyVyaya-sub000/internal/storage"
	pb "github.com/Hruthwik-68/MyVyaya-sub000/pkg/ledgerapi"
)

func newServeCommand(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Connect API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}
}

func runServe(ctx context.Context, cfg *config.Config) error {
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	slog.Info("Storage initialized", "driver", cfg.Database.Driver)

	m := metrics.New()

	var hub *notify.Hub
	if cfg.Kafka.Enabled() {
		origin := uuid.NewString()
		groupID := cfg.Kafka.GroupID
		if groupID == "" {
			// Every instance must see every event, so each gets its own group.
			groupID = "ledgerd-" + origin
		}

		publisher := kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, origin)
		defer publisher.Close()
		hub = notify.NewHub(publisher)

		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, groupID, origin)
		defer consumer.Close()
		go func() {
			if err := consumer.Run(ctx, hub); err != nil {
				slog.Error("Change feed consumer stopped", "error", err)
			}
		}()
		slog.Info("Change feed enabled", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic, "group", groupID)
	} else {
		hub = notify.NewHub()
	}

	jwt := auth.NewJWTManager(cfg.Auth.Secret, cfg.Auth.TokenTTL, cfg.Auth.Issuer)
	handler := newHandler(store, hub, m, jwt, cfg.Server.MetricsPath)

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           h2c.NewHandler(corsMiddleware(handler), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
		// Request contexts end with ctx so open watch streams return on shutdown.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Connect server starting", "address", cfg.Server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down", "timeout", cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// newHandler mounts every Connect service behind auth and logging
// interceptors, plus the metrics and health endpoints.
func newHandler(store storage.Store, hub *notify.Hub, m *metrics.Metrics, validator middleware.TokenValidator, metricsPath string) http.Handler {
	l := ledger.New(store, hub, m)
	interceptors := connect.WithInterceptors(middleware.RequireAuth(validator), middleware.NewLoggingInterceptor())

	mux := http.NewServeMux()
	mux.Handle(pb.NewExpenseServiceHandler(service.NewExpenseService(store, hub), interceptors))
	mux.Handle(pb.NewTrackerServiceHandler(service.NewTrackerService(store), interceptors))
	mux.Handle(pb.NewFriendServiceHandler(service.NewFriendService(l.View(), hub, m), interceptors))
	mux.Handle(pb.NewPaymentServiceHandler(service.NewPaymentService(l), interceptors))

	if metricsPath != "" {
		mux.Handle(metricsPath, m.Handler())
	}
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	return mux
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
