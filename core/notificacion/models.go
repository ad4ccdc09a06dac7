package notificacion

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/tupad/organizador/core"
)

// Tipos
const (
	TipoInfo    = "info"
	TipoSuccess = "success"
	TipoWarning = "warning"
	TipoError   = "error"
)

var Tipos = []string{TipoInfo, TipoSuccess, TipoWarning, TipoError}

type Notificacion struct {
	ID           int         `json:"id" db:"id"`
	UsuarioID    int         `json:"usuario_id" db:"usuario_id"`
	Tipo         string      `json:"type" db:"tipo" validate:"required,oneof=info success warning error"`
	Titulo       string      `json:"title" db:"titulo" validate:"required,max=150"`
	Mensaje      string      `json:"message" db:"mensaje" validate:"required,max=2000"`
	Leida        bool        `json:"read" db:"leida"`
	EnviadoEmail bool        `json:"-" db:"enviado_email"`
	Referencia   null.String `json:"-" db:"referencia"`
	CreatedAt    time.Time   `json:"timestamp" db:"created_at"` // UTC
}

// NewNotificacion is the content of a notification sent to one or more usuarios.
type NewNotificacion struct {
	Tipo    string `json:"type" validate:"required,oneof=info success warning error"`
	Titulo  string `json:"title" validate:"required,max=150"`
	Mensaje string `json:"message" validate:"required,max=2000"`
	// Referencia identifies the event behind the notification;
	// a usuario gets at most one notification per Referencia.
	Referencia string `json:"-"`
}

func (nn *NewNotificacion) Clean() {
	nn.Tipo = core.CleanString(nn.Tipo, true /* lower */)
	if nn.Tipo == "" {
		nn.Tipo = TipoInfo
	}
	nn.Titulo = core.CleanString(nn.Titulo)
	nn.Mensaje = core.CleanString(nn.Mensaje)
	nn.Referencia = core.CleanString(nn.Referencia)
}

// CheckResult is the answer to a poll: what arrived after the client's last check.
// LastID is the cursor for the next check.
type CheckResult struct {
	Notifications []Notificacion `json:"notifications"`
	UnreadCount   int            `json:"unread_count"`
	ServerTime    time.Time      `json:"server_time"`
	LastID        int            `json:"last_id"`
}

type Stats struct {
	Total   int            `json:"total"`
	Unread  int            `json:"unread"`
	PorTipo map[string]int `json:"by_type"`
}

type Filter struct {
	Tipo  string
	Leida *bool
}

func (f *Filter) Clean() {
	f.Tipo = core.CleanString(f.Tipo, true /* lower */)
}
