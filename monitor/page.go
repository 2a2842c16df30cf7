package monitor

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const monitorHTML = `<!DOCTYPE html>
<html lang="id">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1.0" />
  <title>Server Monitor</title>
  <style>
    body { background:#0f172a; color:#e2e8f0; font-family:-apple-system,'Segoe UI',Roboto,sans-serif; padding:20px; }
    .card { background:rgba(255,255,255,0.05); border:1px solid rgba(255,255,255,0.1); border-radius:12px; padding:16px; margin-bottom:16px; }
    pre { background:rgba(0,0,0,0.3); padding:16px; border-radius:8px; max-height:480px; overflow-y:auto; white-space:pre-wrap; font-size:13px; }
  </style>
</head>
<body>
  <h1>Public Complaint API</h1>
  <div class="card"><strong>Health:</strong> <span id="health">...</span></div>
  <div class="card"><strong>Ready:</strong> <pre id="ready">...</pre></div>
  <div class="card"><strong>Logs</strong> <input id="token" type="password" placeholder="log token" /> <pre id="logs"></pre></div>
  <script>
    function refresh() {
      fetch('/health').then(r => r.json()).then(d => { document.getElementById('health').textContent = d.status; })
        .catch(() => { document.getElementById('health').textContent = 'down'; });
      fetch('/ready').then(r => r.json()).then(d => { document.getElementById('ready').textContent = JSON.stringify(d.data, null, 2); });
      const token = document.getElementById('token').value;
      if (token) {
        fetch('/logs?token=' + encodeURIComponent(token)).then(r => r.text()).then(t => {
          const el = document.getElementById('logs');
          el.textContent = t;
          el.scrollTop = el.scrollHeight;
        });
      }
    }
    refresh();
    setInterval(refresh, 5000);
  </script>
</body>
</html>`

func RegisterMonitorPage(router *gin.Engine) {
	router.GET("/monitor", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(monitorHTML))
	})
}
