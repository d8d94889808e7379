// Package web serves the status page of the monitor.
package web

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"path"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
)

// DevModeEnv makes the monitor read the page from the source tree, so that
// edits show up without rebuilding.
const DevModeEnv = "CONVEYORSIM_MONITOR_DEV"

//go:embed dist/*
var staticAssets embed.FS

// Page is the data rendered into the status page.
type Page struct {
	Title string
}

// GetAssets returns the static assets.
func GetAssets() http.FileSystem {
	if isDevelopmentMode() {
		_, assetPath, _, ok := runtime.Caller(0)
		if !ok {
			panic("error getting path")
		}

		assetPath = path.Join(path.Dir(assetPath), "dist")
		logrus.Infof("Serving monitor assets from %s", assetPath)

		return http.Dir(assetPath)
	}

	subFS, err := fs.Sub(staticAssets, "dist")
	if err != nil {
		panic(err)
	}

	return http.FS(subFS)
}

// Handler serves the status page titled with the given title at "/" and the
// remaining assets as files.
func Handler(title string) http.Handler {
	assets := GetAssets()
	files := http.FileServer(assets)
	page := Page{Title: title}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" && r.URL.Path != "/index.html" {
			files.ServeHTTP(w, r)
			return
		}

		tmpl, err := parsePage(assets)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")

		if err := tmpl.Execute(w, page); err != nil {
			logrus.WithError(err).Error("Rendering status page")
		}
	})
}

func parsePage(assets http.FileSystem) (*template.Template, error) {
	f, err := assets.Open("index.html")
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var sb bytes.Buffer
	if _, err := sb.ReadFrom(f); err != nil {
		return nil, err
	}

	return template.New("index").Parse(sb.String())
}

func isDevelopmentMode() bool {
	value, exist := os.LookupEnv(DevModeEnv)
	if !exist {
		return false
	}

	return strings.EqualFold(value, "true") || value == "1"
}
