package utils

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/pkg/errors"
)

type Sitemap struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	Urls    []Url    `xml:"url"`
}

type Url struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

var langPattern = regexp.MustCompile(`\{lang:[^}]+\}`)

// now is replaced in tests.
var now = time.Now

func GenerateSitemaps(dir, origin string, langs, routes []string) error {
	xmlOutput, err := GenerateSitemapContent(origin, langs, routes)
	if err != nil {
		return err
	}

	content := xml.Header + xmlOutput
	if err := os.WriteFile(filepath.Join(dir, "sitemap.xml"), []byte(content), 0644); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// GenerateSitemapContent lists every route under origin. Routes carrying a
// {lang:...} pattern are expanded once per language.
func GenerateSitemapContent(origin string, langs, routes []string) (string, error) {
	baseURL := strings.TrimSuffix(origin, "/")
	sitemap := Sitemap{
		Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
	}
	lastMod := now().Format("2006-01-02")

	for _, route := range routes {
		if langPattern.MatchString(route) {
			for _, lang := range langs {
				langRoute := langPattern.ReplaceAllString(route, lang)
				sitemap.Urls = append(sitemap.Urls, Url{
					Loc:     fmt.Sprintf("%s%s", baseURL, langRoute),
					LastMod: lastMod,
				})
			}
		} else {
			sitemap.Urls = append(sitemap.Urls, Url{
				Loc:     fmt.Sprintf("%s%s", baseURL, route),
				LastMod: lastMod,
			})
		}
	}

	xmlOutput, err := xml.MarshalIndent(sitemap, "", "  ")
	if err != nil {
		return "", errors.WithStack(err)
	}

	return string(xmlOutput), nil
}
