package api

import (
	"log/slog"
	"net/http"
)

// docsHTML embeds the OpenAPI reference under a bar linking the other pages.
const docsHTML = `<!doctype html>
<html lang="en" data-theme="dark">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>Gas Chart API</title>
  <link href="https://unpkg.com/@stoplight/elements@9.0.0/styles.min.css" rel="stylesheet" />
  <script src="https://unpkg.com/@stoplight/elements@9.0.0/web-components.min.js" crossorigin="anonymous"></script>
  <style>
    body { margin: 0; height: 100vh; display: flex; flex-direction: column; background: #0d1117; }
    header {
      flex: none; height: 40px; padding: 0 16px; display: flex; align-items: center; gap: 18px;
      background: #161b22; border-bottom: 1px solid #30363d;
      font: 500 12px -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif;
    }
    header strong { color: #e6edf3; font-size: 13px; margin-right: auto; }
    header a { color: #58a6ff; text-decoration: none; }
    elements-api { flex: 1; min-height: 0; }
  </style>
</head>
<body>
  <header>
    <strong>Gas Chart</strong>
    <a href="/docs/sync">Live sync</a>
    <a href="/openapi.json">openapi.json</a>
    <a href="/metrics">metrics</a>
  </header>
  <elements-api
    apiDescriptionUrl="/openapi.json"
    router="hash"
    layout="sidebar"
    tryItCredentialsPolicy="same-origin"
    darkMode
  />
</body>
</html>`

func servePage(name, page string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if _, err := w.Write([]byte(page)); err != nil {
			slog.Debug("docs page write failed", "page", name, "error", err)
		}
	}
}
