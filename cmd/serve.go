package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/ZacxDev/go-static-blog/javascript"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetString("port")
		watch, _ := cmd.Flags().GetBool("watch")
		skipBundle, _ := cmd.Flags().GetBool("no-bundle")

		p, err := loadProject()
		if err != nil {
			return err
		}

		var current atomic.Pointer[mux.Router]
		rebuild := func() error {
			// Reload so template and manifest edits are picked up too
			p, err := loadProject()
			if err != nil {
				return err
			}
			scripts, err := p.compile(skipBundle)
			if err != nil {
				return err
			}
			site, err := p.site(scripts)
			if err != nil {
				return err
			}
			router, err := site.SetupRouter()
			if err != nil {
				return errors.Wrap(err, "error setting up router")
			}
			current.Store(router)
			return nil
		}
		if err := rebuild(); err != nil {
			return err
		}

		ctx := cmd.Context()
		if watch {
			go func() {
				if err := javascript.Watch(ctx, p.watchDirs(), 200*time.Millisecond, rebuild, p.log.WithName("watch")); err != nil {
					p.log.Error(err, "watch stopped")
				}
			}()
		}

		server := &http.Server{
			Addr: ":" + port,
			Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				current.Load().ServeHTTP(w, r)
			}),
		}
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			server.Shutdown(shutdownCtx)
		}()

		fmt.Printf("Starting server on port %s\n", port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.WithStack(err)
		}
		return nil
	},
}

// watchDirs are the existing source directories of javascript targets and
// component templates.
func (p *project) watchDirs() []string {
	candidates := []string{"components"}
	for _, target := range p.manifest.JavascriptTargets {
		candidates = append(candidates, filepath.Dir(target.Source))
	}
	for _, c := range p.manifest.Bundle.Components {
		if c.Template != "" {
			candidates = append(candidates, filepath.Join(p.root, filepath.Dir(c.Template)))
		}
	}

	// Output directories would retrigger every rebuild
	seen := map[string]bool{filepath.Clean(p.manifest.Bundle.OutDir): true}
	for _, target := range p.manifest.JavascriptTargets {
		seen[filepath.Clean(target.OutDir)] = true
	}
	var dirs []string
	for _, dir := range candidates {
		dir = filepath.Clean(dir)
		if seen[dir] {
			continue
		}
		seen[dir] = true
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "9010", "Port to run the server on")
	serveCmd.Flags().Bool("watch", false, "Rebuild javascript when sources change")
	serveCmd.Flags().Bool("no-bundle", false, "Skip generating and compiling the hydration bundle")
}
