package main

import (
	"context"

	"github.com/tupad/organizador/core"
	"github.com/tupad/organizador/core/usuario"
)

// addUser updates or creates an active usuario.Usuario.
func (cli *commandLine) addUser(email, nombre, apellido, rol, pwd string) error {
	ctx := context.Background()
	nu := usuario.NewUsuario{
		Nombre:          nombre,
		Apellido:        apellido,
		Email:           email,
		Password:        pwd,
		PasswordConfirm: pwd,
		Rol:             rol,
	}
	nu.Clean()
	if err := cli.validate.Struct(nu); err != nil {
		return err
	}

	usr, err := cli.usrRepo.GetByEmail(ctx, nu.Email)
	if err != nil && !core.IsNotFound(err) {
		return err
	}
	usr.Nombre = nu.Nombre
	usr.Apellido = nu.Apellido
	usr.Email = nu.Email
	usr.Rol = nu.Rol
	usr.Activo = true
	if err = usr.SetPassword(pwd); err != nil {
		return err
	}

	now := usuario.NowFunc().UTC()
	usr.UpdatedAt = now
	if usr.ID == 0 {
		usr.CreatedAt = now
		_, err = cli.usrRepo.Create(ctx, usr)
	} else {
		_, err = cli.usrRepo.Update(ctx, usr)
	}
	return err
}
