package handler

import (
	"net/http"

	"github.com/a-h/templ"

	"github.com/mcoot/cadastro/internal/web/middleware"
	"github.com/mcoot/cadastro/internal/web/templates/layout"
)

// pageData builds the layout data shared by every page
func pageData(r *http.Request, title string) layout.PageData {
	data := layout.PageData{
		Title: title,
		Flash: middleware.GetFlash(r.Context()),
	}
	if session := middleware.GetSession(r.Context()); session != nil {
		account := session.Account
		data.Account = &account
	}
	return data
}

func render(w http.ResponseWriter, r *http.Request, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
