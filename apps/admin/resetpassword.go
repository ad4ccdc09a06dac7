package main

import (
	"context"

	"github.com/tupad/organizador/core"
	"github.com/tupad/organizador/core/usuario"
)

func (cli *commandLine) resetPassword(email, pwd string) error {
	ctx := context.Background()
	usr, err := cli.usrRepo.GetByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		return err
	}
	uu := usuario.UpdateUsuario{Password: pwd, PasswordConfirm: pwd}
	uu.Clean(usr)
	if err = cli.validate.Struct(uu); err != nil {
		return err
	}
	if err = usr.SetPassword(pwd); err != nil {
		return err
	}
	usr.UpdatedAt = usuario.NowFunc().UTC()
	_, err = cli.usrRepo.Update(ctx, usr)
	return err
}
