package public

import (
	"embed"
	"encoding/json"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"sort"
)

//go:embed web
var webFS embed.FS

const (
	cacheShell  = "no-cache"
	cacheStatic = "public, max-age=86400"
)

type Manifest struct {
	Name            string         `json:"name"`
	ShortName       string         `json:"short_name"`
	Description     string         `json:"description"`
	StartURL        string         `json:"start_url"`
	Scope           string         `json:"scope"`
	Display         string         `json:"display"`
	BackgroundColor string         `json:"background_color"`
	ThemeColor      string         `json:"theme_color"`
	Icons           []ManifestIcon `json:"icons"`
}

type ManifestIcon struct {
	Src     string `json:"src"`
	Sizes   string `json:"sizes"`
	Type    string `json:"type"`
	Purpose string `json:"purpose,omitempty"`
}

var manifest = Manifest{
	Name:            "Sats Converter",
	ShortName:       "Sats",
	Description:     "Convert between bitcoin, satoshis and fiat currencies.",
	StartURL:        "/",
	Scope:           "/",
	Display:         "standalone",
	BackgroundColor: "#ffffff",
	ThemeColor:      "#f7931a",
	Icons: []ManifestIcon{
		{Src: "/static/icon.svg", Sizes: "any", Type: "image/svg+xml", Purpose: "any maskable"},
	},
}

func (s *Server) GetManifest(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/manifest+json")
	w.Header().Set("Cache-Control", cacheShell)
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(manifest); err != nil {
		slog.Error("Failed to encode manifest", "error", err.Error())
	}
}

func (s *Server) GetIndex(w http.ResponseWriter, _ *http.Request) {
	body, err := webFS.ReadFile("web/index.html")
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "shell missing")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", cacheShell)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) staticHandler() http.Handler {
	sub, _ := fs.Sub(webFS, "web")
	files := http.FileServer(http.FS(sub))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", cacheStatic)
		files.ServeHTTP(w, r)
	})
}

// GetPrecache lists every shell path the client stores on install.
func (s *Server) GetPrecache(w http.ResponseWriter, _ *http.Request) {
	paths, err := shellPaths()
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "failed to list shell")
		return
	}

	w.Header().Set("Cache-Control", cacheShell)
	RespondWithJSON(w, http.StatusOK, paths)
}

func shellPaths() ([]string, error) {
	paths := []string{"/", "/manifest.webmanifest"}

	err := fs.WalkDir(webFS, "web/static", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		paths = append(paths, path.Join("/static", path.Base(p)))
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(paths[2:])
	return paths, nil
}
