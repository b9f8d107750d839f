package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/edupulse/edupulse/core"
	"github.com/edupulse/edupulse/core/user"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(name, email, pwd string, role user.Role) error {
	ctx := context.Background()
	name = core.CleanString(name)
	email = core.CleanString(email, true /* lower */)

	if err := cli.validate.Var(email, "required,email"); err != nil {
		return fmt.Errorf("invalid email %q", email)
	}
	if !role.IsValid() {
		return fmt.Errorf("invalid role %q", role)
	}
	if tag := user.PasswordPolicyViolation(pwd, name, email); tag != "" {
		return errors.New(user.PasswordPolicyText(tag))
	}

	now := time.Now().UTC()
	usr, err := cli.usrRepo.GetUser(ctx, user.GetFilter{Email: email})
	exists := err == nil
	if err != nil {
		if !core.IsNotFound(err) {
			return err
		}
		usr = user.User{ID: uuid.NewString(), Email: email, CreatedAt: now}
	}
	usr.Name = name
	usr.Role = role
	usr.UpdatedAt = now
	if err = usr.SetPassword(pwd); err != nil {
		return err
	}

	if exists {
		_, err = cli.usrRepo.UpdateUser(ctx, usr)
	} else {
		_, err = cli.usrRepo.CreateUser(ctx, usr)
	}
	return err
}
