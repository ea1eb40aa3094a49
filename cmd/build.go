package cmd

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ZacxDev/go-static-blog/utils"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const publicDir = "public"

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a static version of the site",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("Building static site...")

		skipBundle, _ := cmd.Flags().GetBool("no-bundle")

		p, err := loadProject()
		if err != nil {
			return err
		}

		scripts, err := p.compile(skipBundle)
		if err != nil {
			return errors.Wrap(err, "error compiling javascript")
		}
		for name, path := range scripts {
			fmt.Printf("Compiled %s -> %s\n", name, path)
		}

		site, err := p.site(scripts)
		if err != nil {
			return err
		}
		router, err := site.SetupRouter()
		if err != nil {
			return errors.Wrap(err, "error setting up router")
		}

		// Create public directory
		if err := os.MkdirAll(publicDir, os.ModePerm); err != nil {
			return errors.Wrap(err, "error creating public directory")
		}

		if err := copyStatic("static", publicDir); err != nil {
			return errors.Wrap(err, "error copying static files")
		}

		// Generate static pages
		server := httptest.NewServer(router)
		defer server.Close()

		langPattern := regexp.MustCompile(`\/\{lang:([^}]+)\}\/`)
		failed := 0

		router.Walk(func(route *mux.Route, router *mux.Router, ancestors []*mux.Route) error {
			path, err := route.GetPathTemplate()
			if err != nil {
				return nil // Skip routes without a path template
			}

			// Sitemap is generated separately, static files are copied
			if path == "/sitemap.xml" || strings.HasPrefix(path, "/static/") {
				return nil
			}

			matches := langPattern.FindStringSubmatch(path)
			if len(matches) > 1 {
				langs := strings.Split(matches[1], "|")

				// Base route without the language pattern
				baseRoute := langPattern.ReplaceAllString(path, "/")

				// Generate URLs for each supported language
				for _, lang := range langs {
					langPath := fmt.Sprintf("/%s%s", lang, baseRoute)
					if err := generateStaticPage(server, langPath); err != nil {
						fmt.Printf("Error generating static page for %s: %v\n", langPath, err)
						failed++
					}
				}
			} else if err := generateStaticPage(server, path); err != nil {
				fmt.Printf("Error generating static page for %s: %v\n", path, err)
				failed++
			}

			return nil
		})

		if err := utils.GenerateSitemaps(publicDir, p.manifest.Origin, site.Languages(), site.RegisteredRoutes()); err != nil {
			fmt.Printf("Error generating sitemap: %s\n", err.Error())
		}

		if failed > 0 {
			return errors.Errorf("%d pages failed to build", failed)
		}

		fmt.Printf("Static site generated successfully in the ./%s directory\n", publicDir)
		return nil
	},
}

func generateStaticPage(server *httptest.Server, route string) error {
	resp, err := http.Get(server.URL + route)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	filePath := filepath.Join(publicDir, strings.TrimPrefix(route, "/"), "index.html")
	if err := os.MkdirAll(filepath.Dir(filePath), os.ModePerm); err != nil {
		return err
	}

	if err := os.WriteFile(filePath, body, 0644); err != nil {
		return err
	}

	fmt.Printf("Generated %s\n", filePath)
	return nil
}

func copyStatic(src, dst string) error {
	if _, err := os.Stat(src); os.IsNotExist(err) {
		return nil
	}
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		destPath := filepath.Join(dst, path)
		if err := os.MkdirAll(filepath.Dir(destPath), os.ModePerm); err != nil {
			return err
		}
		return copyFile(path, destPath)
	})
}

func copyFile(src, dst string) error {
	input, err := os.ReadFile(src)
	if err != nil {
		return err
	}

	return os.WriteFile(dst, input, 0644)
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().Bool("no-bundle", false, "Skip generating and compiling the hydration bundle")
}
