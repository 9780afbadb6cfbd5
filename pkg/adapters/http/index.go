package http

import (
	"html/template"
	"net/http"

	"github.com/aretw0/ticketflow/internal/presentation/graph"
	"github.com/aretw0/ticketflow/pkg/domain"
)

type legendEntry struct {
	Symbol domain.Symbol
	Text   string
}

type indexData struct {
	Alphabet []legendEntry
	States   []domain.State
	Start    domain.State
	Accept   []domain.State
	Graph    string
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>ticketflow</title>
  <style>
    body { font-family: system-ui, sans-serif; margin: 2rem; max-width: 960px; }
    .token { margin: 0.2rem; padding: 0.4rem 0.8rem; cursor: pointer; }
    .accepted { background: #16a34a; color: #fff; padding: 0.2rem 0.6rem; }
    .rejected { background: #dc2626; color: #fff; padding: 0.2rem 0.6rem; }
    code { background: #f1f5f9; padding: 0.1rem 0.3rem; }
  </style>
</head>
<body>
  <h1>Ticket booking automaton</h1>
  <p>Start: <code>{{.Start}}</code>. Accepting: {{range .Accept}}<code>{{.}}</code> {{end}}</p>
  <p>States: {{range .States}}<code>{{.}}</code> {{end}}</p>

  <h2>Symbols</h2>
  <div>
  {{range .Alphabet}}<button class="token" data-sym="{{.Symbol}}" title="{{.Text}}">{{.Symbol}}</button>{{end}}
  </div>
  <ul>
  {{range .Alphabet}}<li><code>{{.Symbol}}</code>: {{.Text}}</li>{{end}}
  </ul>

  <h2>Sequence</h2>
  <input id="seq" size="60" placeholder="auth select avail_ok choose details pay_ok" />
  <button id="btn-run">Run</button>
  <button id="btn-reset">Reset</button>
  <button id="btn-random">Random trail</button>

  <p>Current: <code id="cur-state">{{.Start}}</code> <span id="accept-badge"></span></p>
  <p>Trace: <code id="trace"></code></p>
  <p id="expected"></p>

  <pre class="mermaid" id="graph">{{.Graph}}</pre>

  <script type="module">
    import mermaid from "https://cdn.jsdelivr.net/npm/mermaid@11/dist/mermaid.esm.min.mjs";
    mermaid.initialize({ startOnLoad: false });

    const $ = (id) => document.getElementById(id);
    const post = (path, body) => fetch(path, {
      method: "POST",
      headers: { "Content-Type": "application/json" },
      body: body ? JSON.stringify(body) : undefined,
    });

    async function redraw() {
      const res = await fetch("/api/graph");
      const el = $("graph");
      el.removeAttribute("data-processed");
      el.textContent = await res.text();
      await mermaid.run({ nodes: [el] });
    }

    async function show(res) {
      const j = await res.json();
      if (!res.ok) { alert(j.error || "error"); return; }
      $("cur-state").textContent = j.current;
      $("trace").textContent = j.trace.join(" -> ");
      const badge = $("accept-badge");
      badge.textContent = j.accepted ? "ACCEPTED" : "NOT ACCEPTED";
      badge.className = j.accepted ? "accepted" : "rejected";
      await redraw();
    }

    document.querySelectorAll(".token").forEach((btn) =>
      btn.addEventListener("click", async () => show(await post("/api/step", { symbol: btn.dataset.sym }))));
    $("btn-run").addEventListener("click", async () => show(await post("/api/run", { sequence: $("seq").value })));
    $("btn-reset").addEventListener("click", async () => {
      $("seq").value = "";
      $("expected").textContent = "";
      show(await post("/api/reset"));
    });
    $("btn-random").addEventListener("click", async () => {
      const t = await (await fetch("/api/random")).json();
      $("seq").value = t.seq;
      $("expected").textContent = "Expected: " + t.expected;
    });

    $("btn-reset").click();
  </script>
</body>
</html>
`))

// Index serves the interactive page.
func (s *Server) Index(w http.ResponseWriter, r *http.Request) {
	d := s.Engine.Describe()
	data := indexData{
		States: d.States,
		Start:  d.Start,
		Accept: d.Accept,
		Graph:  graph.GenerateMermaid(s.Engine.Table(), nil),
	}
	for _, sym := range d.Alphabet {
		text, ok := d.Legend[sym]
		if !ok {
			text = string(sym)
		}
		data.Alphabet = append(data.Alphabet, legendEntry{Symbol: sym, Text: text})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, data); err != nil {
		s.logger.Error("Index render failed", "error", err)
	}
}
