package main

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/edupulse/edupulse/core"
	"github.com/edupulse/edupulse/core/user"
)

func (cli *commandLine) resetPassword(email, pwd string) error {
	ctx := context.Background()
	usr, err := cli.usrRepo.GetUser(ctx, user.GetFilter{Email: core.CleanString(email, true /* lower */)})
	if err != nil {
		return err
	}
	if tag := user.PasswordPolicyViolation(pwd, usr.Name, usr.Email); tag != "" {
		return errors.New(user.PasswordPolicyText(tag))
	}
	if err = usr.SetPassword(pwd); err != nil {
		return err
	}
	usr.UpdatedAt = time.Now().UTC()
	_, err = cli.usrRepo.UpdateUser(ctx, usr)
	return err
}
