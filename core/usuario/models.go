package usuario

import (
	"time"

	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/tupad/organizador/core"
)

// Roles
const (
	RolAdmin      = "admin"
	RolProfesor   = "profesor"
	RolEstudiante = "estudiante"
)

var (
	AllRoles = []string{RolAdmin, RolProfesor, RolEstudiante}

	rolePriorities = map[string]int{
		RolAdmin:      30,
		RolProfesor:   20,
		RolEstudiante: 10,
	}

	Roles = []Role{
		{Name: "Estudiante", Value: RolEstudiante},
		{Name: "Profesor", Value: RolProfesor},
		{Name: "Administrador", Value: RolAdmin},
	}
)

func RolePriority(rol string) int {
	return rolePriorities[rol]
}

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type Usuario struct {
	ID           int       `json:"id" db:"id"`
	Nombre       string    `json:"nombre" db:"nombre"`
	Apellido     string    `json:"apellido" db:"apellido"`
	Email        string    `json:"email" db:"email"`
	PasswordHash []byte    `json:"-" db:"password_hash"`
	Rol          string    `json:"rol" db:"rol"`
	Activo       bool      `json:"activo" db:"activo"`
	UltimoAcceso null.Time `json:"ultimo_acceso" db:"ultimo_acceso"` // UTC
	CreatedAt    time.Time `json:"created_at" db:"created_at"`       // UTC
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`       // UTC
}

func (u *Usuario) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *Usuario) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u Usuario) IsAdmin() bool      { return u.Rol == RolAdmin }
func (u Usuario) IsProfesor() bool   { return u.Rol == RolProfesor }
func (u Usuario) IsEstudiante() bool { return u.Rol == RolEstudiante }

func (u Usuario) NombreCompleto() string {
	if u.Apellido == "" {
		return u.Nombre
	}
	return u.Nombre + " " + u.Apellido
}

// NewUsuario contains information needed to create a new Usuario.
type NewUsuario struct {
	Nombre          string `json:"nombre" validate:"required,max=80"`
	Apellido        string `json:"apellido" validate:"max=80"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	Rol             string `json:"rol" validate:"omitempty,oneof=admin profesor estudiante"`
}

func (nu *NewUsuario) Clean() {
	nu.Nombre = core.CleanString(nu.Nombre)
	nu.Apellido = core.CleanString(nu.Apellido)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Rol = core.CleanString(nu.Rol, true /* lower */)
	if nu.Rol == "" {
		nu.Rol = RolEstudiante
	}
}

// UpdateUsuario defines what information may be provided to modify an existing Usuario.
type UpdateUsuario struct {
	Nombre          string `json:"nombre" validate:"max=80"`
	Apellido        string `json:"apellido" validate:"max=80"`
	Email           string `json:"email" validate:"omitempty,email"`
	Activo          *bool  `json:"activo"`
	Rol             string `json:"rol" validate:"omitempty,oneof=admin profesor estudiante"`
	Password        string `json:"password" validate:"omitempty"`
	PasswordConfirm string `json:"password_confirm" validate:"required_with=Password,eqfield=Password"`
}

// Clean fills the blank fields with the values of the original Usuario.
func (uu *UpdateUsuario) Clean(orig Usuario) {
	if name := core.CleanString(uu.Nombre); name != "" {
		uu.Nombre = name
	} else {
		uu.Nombre = orig.Nombre
	}
	if apellido := core.CleanString(uu.Apellido); apellido != "" {
		uu.Apellido = apellido
	} else {
		uu.Apellido = orig.Apellido
	}
	if email := core.CleanString(uu.Email, true /* lower */); email != "" {
		uu.Email = email
	} else {
		uu.Email = orig.Email
	}
	uu.Rol = core.CleanString(uu.Rol, true /* lower */)
}

type QueryFilter struct {
	Search string
	Rol    string
	Activo *bool
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Rol = core.CleanString(qf.Rol, true /* lower */)
}
