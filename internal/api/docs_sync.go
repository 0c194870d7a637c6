package api

const syncDocsHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>Live Sync · Gas Chart</title>
  <style>
    *, *::before, *::after { box-sizing: border-box; }
    body {
      margin: 0;
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Helvetica Neue", sans-serif;
      font-size: 14px;
      line-height: 1.65;
      background: #0d1117;
      color: #c9d1d9;
    }
    a { color: #58a6ff; text-decoration: none; }
    nav {
      background: #161b22;
      border-bottom: 1px solid #30363d;
      padding: 0 24px;
      height: 48px;
      display: flex;
      align-items: center;
      gap: 24px;
    }
    nav .brand { font-weight: 600; font-size: 15px; color: #e6edf3; }
    main { max-width: 860px; margin: 0 auto; padding: 24px 16px 64px; }
    h2 { color: #e6edf3; border-bottom: 1px solid #21262d; padding-bottom: 6px; margin-top: 32px; }
    pre {
      background: #161b22;
      border: 1px solid #30363d;
      border-radius: 6px;
      padding: 12px 16px;
      overflow-x: auto;
    }
    code { font-family: "SFMono-Regular", Consolas, "Liberation Mono", Menlo, monospace; font-size: 13px; }
    table { border-collapse: collapse; width: 100%; }
    td, th { border: 1px solid #30363d; padding: 6px 10px; text-align: left; }
    th { background: #161b22; color: #e6edf3; }
  </style>
</head>
<body>
<nav>
  <span class="brand">Gas Chart</span>
  <a href="/docs">REST API</a>
  <span>Live Sync</span>
</nav>
<main>
  <h2 id="overview">Overview</h2>
  <p>Every chart session publishes notifications when its selection changes,
  when a marker is clicked, when data is loaded and when its status text
  changes. A list UI keeps its highlight in sync with the chart by consuming
  these notifications and by pushing its own clicks back.</p>

  <h2 id="sse">Server-Sent Events</h2>
  <pre><code>GET /api/v1/events?session=&lt;id&gt;&amp;feeds=selection,event_clicked</code></pre>
  <p>Both query parameters are optional. Each event is one JSON notification:</p>
  <pre><code>event: selection
data: {"kind":"selection","session":"…","selection":{"selected_id":"e1","focused_time":900},"origin":"list"}</code></pre>

  <table>
    <tr><th>Feed</th><th>Sent when</th></tr>
    <tr><td><code>selection</code></td><td>selected id or focused time changed</td></tr>
    <tr><td><code>event_clicked</code></td><td>a marker was clicked; carries the event</td></tr>
    <tr><td><code>data</code></td><td>prices and events were loaded</td></tr>
    <tr><td><code>status</code></td><td>session status text changed</td></tr>
  </table>

  <h2 id="ws">WebSocket</h2>
  <pre><code>GET /api/v1/sessions/&lt;id&gt;/ws</code></pre>
  <p>The socket receives the same notifications as SSE, filtered to its session,
  and accepts text messages:</p>
  <pre><code>{"type":"select","event_id":"e1"}
{"type":"focus","t":1700000000000}
{"type":"focus"}
{"type":"click","x":120,"y":80}
{"type":"clear"}</code></pre>
  <p>Each message is answered with <code>{"kind":"ack","type":"select",…}</code> carrying the resulting selection (and the event for <code>select</code> and marker hits). Errors are answered with <code>{"kind":"error","error":"…"}</code> and do not close the socket.</p>
</main>
</body>
</html>`
