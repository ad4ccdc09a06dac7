package usuario

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/tupad/organizador/core"
)

var (
	// errors
	ErrNotFound           = core.NewNotFoundError("usuario")
	ErrEmailExists        = errors.New("ya existe un usuario con este email")
	ErrInvalidCredentials = errors.New("email o contraseña incorrectos")
	ErrInactive           = errors.New("la cuenta del usuario está desactivada")

	NowFunc = time.Now // mockable
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedID int) error
		Create(ctx context.Context, usr Usuario) (Usuario, error)
		// Query applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of nombre, apellido or email.
		Query(ctx context.Context, filter QueryFilter, page core.PageParams, ordering []core.DBOrdering) ([]Usuario, int, error)
		GetByID(ctx context.Context, id int) (Usuario, error)
		GetByEmail(ctx context.Context, email string) (Usuario, error)
		// Activos returns every active usuario, e.g. the recipients of a broadcast.
		Activos(ctx context.Context) ([]Usuario, error)
		Update(ctx context.Context, usr Usuario) (Usuario, error)
		SetUltimoAcceso(ctx context.Context, id int, at time.Time) error
		DeleteByID(ctx context.Context, ids ...int) error
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func (svc *Service) checkUniqueness(ctx context.Context, email string, excludedID int) error {
	if err := svc.repo.CheckEmailUniqueness(ctx, email, excludedID); err != nil {
		if err == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nu NewUsuario) (Usuario, error) {
	nu.Clean()
	if err := svc.validate.Struct(nu); err != nil {
		return Usuario{}, err
	}
	if err := svc.checkUniqueness(ctx, nu.Email, 0); err != nil {
		return Usuario{}, err
	}

	now := NowFunc().UTC()
	usr := Usuario{
		Nombre:    nu.Nombre,
		Apellido:  nu.Apellido,
		Email:     nu.Email,
		Rol:       nu.Rol,
		Activo:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return Usuario{}, err
	}
	return svc.repo.Create(ctx, usr)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, page core.PageParams, ordering []core.DBOrdering) (core.Page[Usuario], error) {
	filter.Clean()
	usrs, total, err := svc.repo.Query(ctx, filter, page, ordering)
	if err != nil {
		return core.Page[Usuario]{}, err
	}
	return core.NewPage(usrs, total, page), nil
}

func (svc *Service) GetByID(ctx context.Context, id int) (Usuario, error) {
	return svc.repo.GetByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (Usuario, error) {
	return svc.repo.GetByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) Activos(ctx context.Context) ([]Usuario, error) {
	return svc.repo.Activos(ctx)
}

// Authenticate checks the credentials of an active Usuario and records the access.
func (svc *Service) Authenticate(ctx context.Context, email, pwd string) (Usuario, error) {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		if core.IsNotFound(err) {
			return Usuario{}, ErrInvalidCredentials
		}
		return Usuario{}, err
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return Usuario{}, ErrInvalidCredentials
	}
	if !usr.Activo {
		return Usuario{}, ErrInactive
	}

	now := NowFunc().UTC()
	if err = svc.repo.SetUltimoAcceso(ctx, usr.ID, now); err != nil {
		return Usuario{}, err
	}
	usr.UltimoAcceso.SetValid(now)
	return usr, nil
}

func (svc *Service) Update(ctx context.Context, id int, uu UpdateUsuario) (Usuario, error) {
	usr, err := svc.repo.GetByID(ctx, id)
	if err != nil {
		return Usuario{}, err
	}
	uu.Clean(usr)
	if err = svc.validate.Struct(uu); err != nil {
		return Usuario{}, err
	}
	if uu.Email != usr.Email {
		if err = svc.checkUniqueness(ctx, uu.Email, id); err != nil {
			return Usuario{}, err
		}
	}

	usr.Nombre = uu.Nombre
	usr.Apellido = uu.Apellido
	usr.Email = uu.Email
	if uu.Rol != "" {
		usr.Rol = uu.Rol
	}
	if uu.Activo != nil {
		usr.Activo = *uu.Activo
	}
	if uu.Password != "" {
		if err = usr.SetPassword(uu.Password); err != nil {
			return Usuario{}, err
		}
	}
	usr.UpdatedAt = NowFunc().UTC()
	return svc.repo.Update(ctx, usr)
}

func (svc *Service) Delete(ctx context.Context, ids ...int) error {
	return svc.repo.DeleteByID(ctx, ids...)
}
