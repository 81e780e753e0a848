package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/thesystem/agentauth/internal/accesslog"
	"github.com/thesystem/agentauth/internal/allowlist"
	"github.com/thesystem/agentauth/internal/httpapi"
	applog "github.com/thesystem/agentauth/internal/log"
	"github.com/thesystem/agentauth/internal/secretstore"
)

// defaultPort matches spec.md §6: the listener binds 0.0.0.0:9999 by
// default so sandboxed VM networking can reach it via the host bridge —
// the allowlist is the security boundary, not the bind address.
const defaultPort = 9999

// drainGrace bounds how long in-flight requests are allowed to finish
// after a termination signal, per spec.md §5.
const drainGrace = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the proxy in the foreground",
	Long: `Run the credential-gating proxy as a foreground listener.

Configuration is environment-variable only (spec.md §6):
  AGENTAUTH_PORT                 listener port (default 9999)
  AGENTAUTH_BIND                 bind address (default 0.0.0.0)
  AGENTAUTH_HELPER_PATH          path to a biometric-gated credential helper
  AGENTAUTH_AWS_SECRET_PREFIX    enables the AWS Secrets Manager tier when set

No credential is ever accepted via environment input; the Secret Store
is the only credential source.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	applog.Init(applog.Options{Verbose: verbose})

	port := defaultPort
	if v := os.Getenv("AGENTAUTH_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing AGENTAUTH_PORT: %w", err)
		}
		port = p
	}

	bind := os.Getenv("AGENTAUTH_BIND")
	if bind == "" {
		bind = "0.0.0.0"
	}

	store, err := buildStore(cmd.Context())
	if err != nil {
		return fmt.Errorf("building secret store: %w", err)
	}

	access := accesslog.New(os.Stdout)
	handler := httpapi.New(allowlist.Default(), store, access, port)

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", bind, port),
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		applog.Info("agentauth listening", "bind", bind, "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("listener failed: %w", err)
	case sig := <-sigCh:
		applog.Info("shutting down", "signal", sig.String(), "grace", drainGrace.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), drainGrace)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		applog.Warn("forced shutdown after grace period", "error", err)
	}
	return nil
}

// buildStore assembles the tiered Secret Store in the order spec.md §4.1
// and §9 describe: biometric helper, then platform keyring, with the
// optional AWS Secrets Manager tier appended last for headless hosts
// that have neither.
func buildStore(ctx context.Context) (*secretstore.Store, error) {
	backends := []secretstore.Backend{
		&secretstore.HelperBackend{Path: os.Getenv("AGENTAUTH_HELPER_PATH")},
		&secretstore.KeyringBackend{},
	}

	if prefix := os.Getenv("AGENTAUTH_AWS_SECRET_PREFIX"); prefix != "" {
		sm, err := secretstore.NewSecretsManagerBackend(ctx, prefix)
		if err != nil {
			return nil, err
		}
		backends = append(backends, sm)
	}

	return secretstore.New(backends...), nil
}
