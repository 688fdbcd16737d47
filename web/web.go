// Package web embeds the client single-page app served by the API.
package web

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static
var assets embed.FS

// Handler serves the client app under /app/.
func Handler() http.Handler {
	sub, err := fs.Sub(assets, "static")
	if err != nil {
		// The embed layout is fixed at build time.
		panic(err)
	}
	return http.StripPrefix("/app/", http.FileServer(http.FS(sub)))
}
