package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/toothbrush/confluence2md/confluence"
	"github.com/toothbrush/confluence2md/webform"
	"golang.org/x/sync/errgroup"
)

var serveUsage = strings.TrimSpace(`
Serve a small web form for exporting pages from the browser.  The form is prefilled from your
flags, environment and config file; the token itself is never shown.  Each submission checks the
credentials, runs an export and shows a preview of the result.
`)

var Listen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve an interactive export form",
	Long:  serveUsage,
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := homedir.Expand(OutDir)
		if err != nil {
			return fmt.Errorf("serve: couldn't expand homedir: %w", err)
		}

		defaults := webform.Defaults{OutDir: out, Pandoc: UsePandoc}
		if base, err := baseURL(); err == nil {
			defaults.ConfluenceURL = base
		}
		defaults.Username = AuthUsername
		if token, err := authToken(); err == nil {
			defaults.Token = token
		} else {
			debugLog("No token configured, the form will ask for one: %v\n", err)
		}

		server := &webform.Server{
			Defaults:    defaults,
			Logger:      log.New(os.Stderr, "[confluence2md] ", log.LstdFlags),
			FrontMatter: FrontMatter,
			Configure: func(api *confluence.API) {
				if Timeout > 0 {
					api.Client.Timeout = Timeout
				}
			},
		}

		return serve(cmd.Context(), Listen, server.Handler())
	},
}

// serve runs the HTTP server until ctx is done, then shuts it down.
func serve(ctx context.Context, addr string, handler http.Handler) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	grp, gctx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		log.Printf("Serving the export form on http://%s/ ...\n", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	grp.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("serve: shutdown: %w", err)
		}
		log.Println("...stopped.")
		return nil
	})

	return grp.Wait()
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&Listen, "listen", "127.0.0.1:8501", "address to serve the form on")
	serveCmd.Flags().StringVar(&OutDir, "out", "./export", "default output directory shown in the form")
	serveCmd.Flags().BoolVar(&UsePandoc, "pandoc", false, "tick the pandoc box by default")
	serveCmd.Flags().BoolVar(&FrontMatter, "front-matter", false, "prepend YAML front matter with page metadata")
}
