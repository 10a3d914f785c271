// ABOUTME: Sync CLI commands
// ABOUTME: Runs list syncs once or on an interval and handles Google OAuth setup
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/harperreed/groupsync/sync"
)

var (
	syncDryRun   bool
	syncInterval time.Duration
	syncForce    bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync lists and manage Google authorization",
}

var syncRunCmd = &cobra.Command{
	Use:   "run [lists...]",
	Short: "Sync Planning Center lists into Google Groups",
	Long: `Sync one or more configured lists. With no arguments every configured
list is synced. Removals are applied before additions.

Examples:
  # Preview changes for every list
  groupsync sync run --dry-run

  # Sync a single list
  groupsync sync run members@example.org

  # Keep syncing every 15 minutes until interrupted
  groupsync sync run --interval 15m`,
	RunE: runSync,
}

var syncConfigureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Authorize groupsync to manage Google Groups",
	RunE:  runConfigure,
}

func init() {
	syncRunCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Show changes without applying them")
	syncRunCmd.Flags().DurationVar(&syncInterval, "interval", 0, "Repeat the sync at this interval until interrupted")
	syncConfigureCmd.Flags().BoolVar(&syncForce, "force", false, "Re-authorize even if a valid token exists")

	syncCmd.AddCommand(syncRunCmd, syncConfigureCmd)
	RootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	if syncInterval < 0 {
		return fmt.Errorf("interval must be positive")
	}

	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	lists, err := a.cfg.ResolveLists(args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	syncer, err := a.syncer(ctx, syncDryRun)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if syncInterval == 0 {
		err := syncOnce(ctx, syncer, lists, out)
		a.writeMetrics(syncer.Metrics)
		return err
	}

	return syncEvery(ctx, syncInterval, func(ctx context.Context) {
		if err := syncOnce(ctx, syncer, lists, out); err != nil {
			a.log.Error("sync run failed", zap.Error(err))
		}
		a.writeMetrics(syncer.Metrics)
	})
}

// ListsSyncer is the part of sync.ListSyncer the run command needs.
type ListsSyncer interface {
	SyncLists(ctx context.Context, lists []string, onProgress func(index, total int, list string)) ([]*sync.ListSyncReport, error)
}

// syncOnce syncs lists and prints a report for each.
func syncOnce(ctx context.Context, syncer ListsSyncer, lists []string, out io.Writer) error {
	reports, err := syncer.SyncLists(ctx, lists, func(index, total int, list string) {
		_, _ = fmt.Fprintln(out, renderProgress(index, total, list))
	})

	for _, report := range reports {
		_, _ = fmt.Fprintln(out, renderReport(report))
	}
	_, _ = fmt.Fprintln(out, renderSummary(len(lists), reports, err))

	return err
}

// syncEvery runs fn immediately and then on every tick until ctx is done.
func syncEvery(ctx context.Context, interval time.Duration, fn func(context.Context)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		fn(ctx)

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func runConfigure(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	oauthConfig := sync.NewOAuthConfig(a.cfg.GoogleAuth())

	if !syncForce {
		if _, err := sync.TokenSource(ctx, oauthConfig); err == nil {
			_, _ = fmt.Fprintf(out, "✓ Already authorized (token at %s). Use --force to re-authorize.\n", sync.TokenPath())
			return nil
		}
	}

	token, err := authorize(ctx, oauthConfig, a.cfg.Google.Domain, out)
	if err != nil {
		return err
	}

	if err := sync.SaveToken(token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	_, _ = fmt.Fprintf(out, "\n✓ Authenticated successfully\n")
	_, _ = fmt.Fprintf(out, "✓ Tokens saved to %s\n\n", sync.TokenPath())
	_, _ = fmt.Fprintln(out, "Ready to sync! Run 'groupsync sync run --dry-run' to preview changes.")

	return nil
}

// authorize runs the browser OAuth flow with a local callback server on the
// redirect URL's port and returns the exchanged token.
func authorize(ctx context.Context, config *oauth2.Config, domain string, out io.Writer) (*oauth2.Token, error) {
	redirect, err := url.Parse(config.RedirectURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redirect URL %q: %w", config.RedirectURL, err)
	}

	listener, err := net.Listen("tcp", ":"+redirect.Port())
	if err != nil {
		return nil, fmt.Errorf("failed to start callback server: %w", err)
	}

	state := uuid.NewString()
	callbackChan := make(chan *oauth2.Token, 1)
	errChan := make(chan error, 1)

	server := &http.Server{
		Handler:           callbackHandler(ctx, config, redirect.Path, state, callbackChan, errChan),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			offer[error](errChan, err)
		}
	}()
	defer func() { _ = server.Shutdown(context.Background()) }()

	authURL := sync.AuthCodeURL(config, state, domain)

	_, _ = fmt.Fprintln(out, "Opening browser for Google OAuth...")
	_, _ = fmt.Fprintf(out, "\nIf browser doesn't open, visit this URL:\n%s\n\n", authURL)

	_ = openBrowser(authURL)

	select {
	case token := <-callbackChan:
		return token, nil
	case err := <-errChan:
		return nil, fmt.Errorf("OAuth flow failed: %w", err)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func callbackHandler(ctx context.Context, config *oauth2.Config, path, state string, tokens chan<- *oauth2.Token, errs chan<- error) http.Handler {
	if path == "" {
		path = "/"
	}

	mux := http.NewServeMux()
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		if query.Get("state") != state {
			http.Error(w, "invalid state", http.StatusBadRequest)
			return
		}
		if reason := query.Get("error"); reason != "" {
			http.Error(w, "authorization denied", http.StatusForbidden)
			offer(errs, fmt.Errorf("authorization denied: %s", reason))
			return
		}

		code := query.Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			offer(errs, fmt.Errorf("no authorization code received"))
			return
		}

		token, err := config.Exchange(ctx, code)
		if err != nil {
			http.Error(w, "token exchange failed", http.StatusBadGateway)
			offer(errs, fmt.Errorf("failed to exchange code: %w", err))
			return
		}

		_, _ = fmt.Fprintf(w, "Authorization successful! You can close this window.")
		offer(tokens, token)
	})
	return mux
}

// offer sends v unless ch is already full, so repeated callbacks never block.
func offer[T any](ch chan<- T, v T) {
	select {
	case ch <- v:
	default:
	}
}

// openBrowser attempts to open URL in default browser
func openBrowser(url string) error {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "darwin":
		cmd = "open"
		args = []string{url}
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start", url}
	default:
		cmd = "xdg-open"
		args = []string{url}
	}

	command := exec.Command(cmd, args...)
	return command.Start()
}
