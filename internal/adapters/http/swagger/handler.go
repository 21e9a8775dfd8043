// Package swagger serves the OpenAPI description of the HTTP API.
package swagger

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Register attaches the API docs routes:
//
//	GET /api-docs      -> ReDoc HTML
//	GET /openapi.yaml  -> embedded OpenAPI document
//
// Only the OpenAPI document is embedded. The docs page pulls the ReDoc bundle
// from RedocBundleURL when a browser opens it, so /api-docs needs internet
// access while /openapi.yaml works offline.
func Register(r chi.Router) {
	page := strings.Replace(indexHTML, "{{bundle}}", RedocBundleURL, 1)
	r.Get("/api-docs", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(page))
	})
	r.Get("/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
		_, _ = w.Write(OpenAPI)
	})
}

// RedocBundleURL is the pinned ReDoc release loaded by the docs page.
const RedocBundleURL = "https://cdn.redoc.ly/redoc/v2.1.5/bundles/redoc.standalone.js"

const indexHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8">
    <title>SPADL API Docs</title>
    <style>body{margin:0;padding:0}</style>
  </head>
  <body>
    <redoc spec-url="/openapi.yaml"></redoc>
    <script src="{{bundle}}"></script>
  </body>
</html>`
