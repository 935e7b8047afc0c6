// Package web ships the single-page client embedded into the binary.
package web

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static/*
var staticFS embed.FS

// Handler serves the embedded client. The file server answers "/" with
// static/index.html, so mounting this as the router's catch-all is enough.
func Handler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		// Only possible if the embed directive and the directory name drift.
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}
