package api

import (
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/isdelr/cabinet-be/internal/api/handlers"
)

// spaHandler serves files from dir and falls back to index.html so that
// client-side routes resolve.
func spaHandler(dir string) http.HandlerFunc {
	root := http.Dir(dir)
	files := http.FileServer(root)
	index := filepath.Join(dir, "index.html")

	return func(w http.ResponseWriter, r *http.Request) {
		if f, err := root.Open(path.Clean("/" + r.URL.Path)); err == nil {
			stat, err := f.Stat()
			f.Close()
			if err == nil && !stat.IsDir() {
				files.ServeHTTP(w, r)
				return
			}
		}

		if _, err := os.Stat(index); err != nil {
			handlers.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, index)
	}
}
