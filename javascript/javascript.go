package javascript

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ZacxDev/go-static-blog/config"
	"github.com/evanw/esbuild/pkg/api"
	"github.com/pkg/errors"
)

var isProd = os.Getenv("NODE_ENV") == "production"

// CompileJSTarget bundles every target and returns the public path of each
// emitted script, keyed by target name.
func CompileJSTarget(targets map[string]config.JavascriptTarget) (map[string]string, error) {
	emitted := make(map[string]string, len(targets))

	names := make([]string, 0, len(targets))
	for name := range targets {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, targetName := range names {
		target := targets[targetName]
		publicPath, err := compileTarget(target)
		if err != nil {
			return nil, errors.Wrapf(err, "javascript target %s", targetName)
		}
		emitted[targetName] = publicPath
	}

	return emitted, nil
}

func buildOptions(target config.JavascriptTarget) api.BuildOptions {
	return api.BuildOptions{
		EntryPoints:       []string{target.Source},
		Bundle:            true,
		Format:            api.FormatESModule,
		MinifyWhitespace:  isProd,
		MinifyIdentifiers: isProd,
		MinifySyntax:      isProd,
		Engines: []api.Engine{
			{Name: api.EngineChrome, Version: "100"},
			{Name: api.EngineFirefox, Version: "100"},
			{Name: api.EngineSafari, Version: "15"},
			{Name: api.EngineEdge, Version: "100"},
		},
		Sourcemap: api.SourceMapExternal,
		Write:     false,
		Outdir:    target.OutDir,
	}
}

func compileTarget(target config.JavascriptTarget) (string, error) {
	result := api.Build(buildOptions(target))

	if len(result.Errors) > 0 {
		msgs := api.FormatMessages(result.Errors, api.FormatMessagesOptions{Kind: api.ErrorMessage})
		return "", errors.Errorf("esbuild failed:\n%s", strings.Join(msgs, ""))
	}

	// Separate files with and without .map extension
	var regularFiles []api.OutputFile
	var mapFiles []api.OutputFile

	for _, out := range result.OutputFiles {
		ext := filepath.Ext(out.Path)
		if strings.EqualFold(ext, ".map") {
			mapFiles = append(mapFiles, out)
		} else {
			regularFiles = append(regularFiles, out)
		}
	}

	// Scripts first so their hashes are known when the maps are named
	sortedFiles := append(regularFiles, mapFiles...)

	srcToHash := make(map[string]string)
	var publicPath string

	for _, out := range sortedFiles {
		dir := filepath.Dir(out.Path)
		base := filepath.Base(out.Path)
		ext := base[strings.Index(base, "."):]
		isMap := ext == ".js.map"
		fileNameWithoutExt := base[:len(base)-len(ext)]

		var hashForFileName string
		if isMap {
			hashForFileName = srcToHash[fileNameWithoutExt]
			if hashForFileName == "" {
				return "", errors.Errorf("source map %s can not find hash for it's source file", fileNameWithoutExt)
			}
		} else {
			safeHash := strings.ReplaceAll(out.Hash, "/", "")
			srcToHash[fileNameWithoutExt] = safeHash
			hashForFileName = safeHash
		}

		name := fmt.Sprintf("%s_%s%s", fileNameWithoutExt, hashForFileName, ext)
		newPath := filepath.Join(dir, name)

		var contents []byte
		if isMap {
			contents = out.Contents
		} else {
			srcMap := fmt.Sprintf("//# sourceMappingURL=%s.map", name)
			contents = append(append([]byte{}, out.Contents...), srcMap...)
		}

		if err := writeFile(newPath, contents); err != nil {
			return "", err
		}

		if !isMap {
			publicPath = "/" + strings.Trim(filepath.ToSlash(target.OutDir), "/") + "/" + name
		}
	}

	if publicPath == "" {
		return "", errors.Errorf("esbuild emitted no script for %s", target.Source)
	}
	return publicPath, nil
}

func writeFile(path string, contents []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return errors.WithStack(err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return errors.Wrapf(err, "failed to open file %s", path)
	}

	if _, err := file.Write(contents); err != nil {
		file.Close()
		return errors.Wrapf(err, "failed to write to file %s", path)
	}

	if err := file.Close(); err != nil {
		return errors.Wrapf(err, "failed to close file %s", path)
	}
	return nil
}
