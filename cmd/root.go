package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/ZacxDev/go-static-blog/components"
	"github.com/ZacxDev/go-static-blog/config"
	"github.com/ZacxDev/go-static-blog/handlers"
	"github.com/ZacxDev/go-static-blog/hydrate"
	"github.com/ZacxDev/go-static-blog/javascript"
	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	manifestPath string
	verbosity    int
)

var rootCmd = &cobra.Command{
	Use:   "staticblog",
	Short: "staticblog - build a static blog with hydrated components",
	Long: `staticblog renders plush and markdown pages into a static site. Component
placeholders are prerendered at build time when a server template exists and
are otherwise hydrated in the browser by a generated bundle.`,
	SilenceUsage: true,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Println(err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&manifestPath, "manifest", "manifest.yaml", "Path to the site manifest")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase log verbosity")
}

func newLogger() logr.Logger {
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			fmt.Fprintf(os.Stderr, "%s: %s\n", prefix, args)
			return
		}
		fmt.Fprintln(os.Stderr, args)
	}, funcr.Options{Verbosity: verbosity})
}

type project struct {
	// root is the manifest's directory; component templates and relative
	// module specifiers resolve against it.
	root     string
	manifest *config.SiteManifest
	registry *hydrate.Registry
	log      logr.Logger
}

func loadProject() (*project, error) {
	manifest, err := config.Load(manifestPath)
	if err != nil {
		return nil, errors.Wrap(err, "error loading manifest")
	}

	root := filepath.Dir(manifestPath)
	registry, err := components.Registry(root, manifest.Bundle)
	if err != nil {
		return nil, err
	}

	return &project{root: root, manifest: manifest, registry: registry, log: newLogger()}, nil
}

// compile builds the manifest's javascript targets and, unless skipBundle is
// set, the generated hydration entry.
func (p *project) compile(skipBundle bool) (map[string]string, error) {
	targets := make(map[string]config.JavascriptTarget, len(p.manifest.JavascriptTargets)+1)
	for name, target := range p.manifest.JavascriptTargets {
		targets[name] = target
	}

	if !skipBundle {
		if err := p.writeEntry(); err != nil {
			return nil, err
		}
		targets[p.manifest.Bundle.Name] = p.manifest.BundleTarget()
	}

	if len(targets) == 0 {
		return map[string]string{}, nil
	}
	return javascript.CompileJSTarget(targets)
}

func (p *project) writeEntry() error {
	entry := javascript.Entry{
		Root:     p.root,
		Renderer: p.manifest.Bundle.Renderer,
		Init:     p.manifest.Bundle.Init,
		Setup:    p.manifest.Bundle.Setup,
		Registry: p.registry,
	}
	if p.manifest.Bundle.UseBuiltins() {
		entry.Setup = append(append([]config.Import{}, components.Setup...), entry.Setup...)
		entry.Init = append(append([]config.Import{}, components.DefaultInit...), entry.Init...)
	}
	return errors.Wrap(javascript.WriteEntry(p.manifest.Bundle.Entry, entry), "error writing bundle entry")
}

func (p *project) site(scripts map[string]string) (*handlers.Site, error) {
	return handlers.NewSite(p.manifest, p.registry, scripts, p.log)
}
