package main

import (
	"bytes"
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"golang.org/x/term"

	"github.com/edupulse/edupulse/core/user"
	dummydb "github.com/edupulse/edupulse/storage/database/dummy"
	"github.com/edupulse/edupulse/tests"
)

const pwd = "Sup3r-S3cret!"

var usrRepo user.Repository

func setup(t *testing.T) *commandLine {
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	usrRepo = dummydb.NewUserRepository(db)

	// start CLI
	return &commandLine{
		db:       &sql.DB{},
		usrRepo:  usrRepo,
		validate: validator.New(),
	}
}

func mockPassword(t *testing.T, pwd string) {
	readPasswordFunc = func(int) ([]byte, error) { return []byte(pwd), nil }
	t.Cleanup(func() { readPasswordFunc = term.ReadPassword })
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func (tt cliTest) check(t *testing.T, err error) {
	t.Helper()
	switch {
	case err == nil:
		if tt.wantErr != nil || tt.wantErrStr != "" {
			t.Errorf("cli.run() error = nil, wantErr %v %s", tt.wantErr, tt.wantErrStr)
		}
	case tt.wantErr != nil:
		if err != tt.wantErr {
			t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
		}
	case tt.wantErrStr != "":
		if err.Error() != tt.wantErrStr {
			t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
		}
	default:
		t.Errorf("cli.run() unexpected error = %v", err)
	}
}

func Test_commandLine_run(t *testing.T) {
	cli := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, cli.run(args))
		})
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	var ran migration
	gooseRunFunc = func(db *sql.DB, m migration) error {
		ran = m
		return nil
	}
	t.Cleanup(func() { gooseRunFunc = runMigration })

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: migrate up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: migrate down-to VERSION"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}, extra: migration{command: "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}, extra: migration{command: "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}, extra: migration{command: "up-to", version: 2}},
		{name: "down", args: []string{"migrate", "down"}, extra: migration{command: "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}, extra: migration{command: "down-to", version: 1}},
		{name: "redo", args: []string{"migrate", "redo"}, extra: migration{command: "redo"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			ran = migration{}
			tt.check(t, cli.run(args))
			if want, ok := tt.extra.(migration); ok && ran != want {
				t.Errorf("gooseRunFunc() got %+v, want %+v", ran, want)
			}
		})
	}

	t.Run("no sql database", func(t *testing.T) {
		noSQL := &commandLine{usrRepo: usrRepo, validate: validator.New()}
		if err := noSQL.run([]string{"admin", "migrate", "up"}); err != errNoSQLDatabase {
			t.Errorf("cli.run() error = %v, wantErr %v", err, errNoSQLDatabase)
		}
	})
}

func Test_commandLine_addUser(t *testing.T) {
	cli := setup(t)

	existing := testutil.CreateUser(t, usrRepo, "Old Name", "awe@test.cd", "Old-S3cret!", user.RoleStudent)

	type extra struct {
		pwd      string
		email    string
		wantName string
		wantRole user.Role
	}
	tests := []cliTest{
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "email but no name", args: []string{"adduser", "-email", "new@test.cd"}, wantErr: errHelp},
		{name: "no password", args: []string{"adduser", "-email", "new@test.cd", "-name", "New"}, wantErr: errHelp},
		{
			name:       "invalid email",
			args:       []string{"adduser", "-email", "lol", "-name", "New"},
			extra:      extra{pwd: pwd},
			wantErrStr: `invalid email "lol"`,
		},
		{
			name:       "invalid role",
			args:       []string{"adduser", "-email", "new@test.cd", "-name", "New", "-role", "dean"},
			extra:      extra{pwd: pwd},
			wantErrStr: `invalid role "dean"`,
		},
		{
			name:       "weak password",
			args:       []string{"adduser", "-email", "new@test.cd", "-name", "New"},
			extra:      extra{pwd: "12345678"},
			wantErrStr: user.PasswordPolicyText(user.PasswordPolicyViolation("12345678", "New", "new@test.cd")),
		},
		{
			name:  "create admin",
			args:  []string{"adduser", "-email", " New@Test.cd ", "-name", "New"},
			extra: extra{pwd: pwd, email: "new@test.cd", wantName: "New", wantRole: user.RoleAdmin},
		},
		{
			name:  "create instructor",
			args:  []string{"adduser", "-email", "teach@test.cd", "-name", "Teach", "-role", "instructor"},
			extra: extra{pwd: pwd, email: "teach@test.cd", wantName: "Teach", wantRole: user.RoleInstructor},
		},
		{
			name:  "update existing",
			args:  []string{"adduser", "-email", existing.Email, "-name", "Promoted"},
			extra: extra{pwd: pwd, email: existing.Email, wantName: "Promoted", wantRole: user.RoleAdmin},
		},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			ex, _ := tt.extra.(extra)
			mockPassword(t, ex.pwd)

			tt.check(t, cli.run(args))
			if ex.email == "" {
				return
			}
			usr, err := usrRepo.GetUser(context.Background(), user.GetFilter{Email: ex.email})
			if err != nil {
				t.Fatalf("GetUser() failed, %v", err)
			}
			if usr.Name != ex.wantName || usr.Role != ex.wantRole {
				t.Errorf("addUser() got (%s, %s), want (%s, %s)", usr.Name, usr.Role, ex.wantName, ex.wantRole)
			}
			if err = usr.CheckPassword(ex.pwd); err != nil {
				t.Errorf("CheckPassword() failed, %v", err)
			}
		})
	}

	if n, _ := usrRepo.CountUsers(context.Background(), user.QueryFilter{}); n != 3 {
		t.Errorf("CountUsers() got %d, want 3", n)
	}
	if _, err := usrRepo.GetUser(context.Background(), user.GetFilter{ID: existing.ID, Email: existing.Email}); err != nil {
		t.Errorf("update existing lost the user's ID: %v", err)
	}
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)

	usr := testutil.CreateUser(t, usrRepo, "User", "awe@test.cd", "Old-S3cret!", user.RoleStudent)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"resetpassword", "-email", "lol@test.cd"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-email", "lol@test.cd"}, extra: extra{pwd: pwd}, wantErr: user.ErrNotFound},
		{
			name:       "weak password",
			args:       []string{"resetpassword", "-email", usr.Email},
			extra:      extra{pwd: "lol"},
			wantErrStr: user.PasswordPolicyText(user.PasswordPolicyViolation("lol", usr.Name, usr.Email)),
		},
		{name: "reset", args: []string{"resetpassword", "-email", " AWE@test.cd"}, extra: extra{pwd: pwd}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			ex, _ := tt.extra.(extra)
			mockPassword(t, ex.pwd)

			err := cli.run(args)
			tt.check(t, err)
			if err != nil {
				return
			}
			refreshedUsr, err := usrRepo.GetUser(context.Background(), user.GetFilter{ID: usr.ID})
			if err != nil {
				t.Fatalf("GetUser() failed, %v", err)
			}
			if bytes.Equal(refreshedUsr.PasswordHash, usr.PasswordHash) {
				t.Error("failed to update new password")
			}
			if refreshedUsr.CheckPassword(pwd) != nil {
				t.Error("new password does not match")
			}
		})
	}
}
