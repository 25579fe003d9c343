package middleware

import (
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/mcoot/cadastro/internal/middleware"
)

// Recovery creates panic recovery middleware for the web interface
// Returns an HTML error page on panic
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, webPanicHandler)
}

func webPanicHandler(w http.ResponseWriter, r *http.Request, _ any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write([]byte(`<!DOCTYPE html>
<html lang="pt-BR">
<head><meta charset="utf-8"><title>Erro</title></head>
<body>
<h1>Erro interno</h1>
<p>Algo deu errado. Tente novamente mais tarde.</p>
<p class="request-id">Código: ` + templ.EscapeString(middleware.GetRequestID(r.Context())) + `</p>
<p><a href="/register">Voltar</a></p>
</body>
</html>`))
}
