package registration

import "github.com/mcoot/cadastro/internal/identity"

// Alert titles
const (
	TitleError   = "Erro"
	TitleSuccess = "Sucesso"
)

// User-facing messages (pt-BR)
const (
	MsgPasswordMismatch    = "As senhas não coincidem"
	MsgDisplayNameRequired = "Por favor, insira um nome de usuário"
	MsgEmailInUse          = "Este e-mail já está em uso"
	MsgInvalidEmail        = "E-mail inválido"
	MsgWeakPassword        = "Senha muito fraca (mínimo 6 caracteres)"
	MsgSuccess             = "Cadastro realizado com sucesso!"
	MsgFailed              = "Erro ao cadastrar"
)

// identityMessages is the fixed lookup from identity error code to message.
// Codes not listed fall through to the service's own message text.
var identityMessages = map[string]string{
	identity.CodeEmailAlreadyInUse: MsgEmailInUse,
	identity.CodeInvalidEmail:      MsgInvalidEmail,
	identity.CodeWeakPassword:      MsgWeakPassword,
}

// Alert is a titled message shown to the user
type Alert struct {
	Title   string
	Message string
}

// IsError reports whether the alert reports a failure
func (a Alert) IsError() bool {
	return a.Title == TitleError
}

func errorAlert(message string) Alert {
	return Alert{Title: TitleError, Message: message}
}

func successAlert() Alert {
	return Alert{Title: TitleSuccess, Message: MsgSuccess}
}

// identityAlert maps an identity-domain error to its alert
func identityAlert(ie *identity.Error) Alert {
	if msg, ok := identityMessages[ie.Code]; ok {
		return errorAlert(msg)
	}
	return errorAlert(ie.Message)
}
