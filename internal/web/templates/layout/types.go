// Package layout renders the page shell shared by every screen.
package layout

import "github.com/mcoot/cadastro/internal/model"

// FlashMessage is a one-shot message carried across a redirect
type FlashMessage struct {
	Type    string
	Message string
}

// PageData holds data common to every page
type PageData struct {
	Title   string
	Flash   *FlashMessage
	Account *model.Account
}
