package user

import "testing"

func TestPasswordPolicyViolation(t *testing.T) {
	tests := []struct {
		name    string
		pwd     string
		usrName string
		email   string
		want    string
	}{
		{name: "too short", pwd: "Ab1!", want: pwdMinLenTag},
		{name: "whitespace", pwd: "Abcd 123!", want: pwdNoSpaceTag},
		{name: "all numeric", pwd: "1234567890", want: pwdNotAllNumTag},
		{name: "no special", pwd: "Abcd12345", want: pwdComplexityTag},
		{name: "no upper", pwd: "abcd123!@", want: pwdComplexityTag},
		{name: "no digit", pwd: "Abcdefg!@", want: pwdComplexityTag},
		{name: "similar to name", pwd: "Linusx1!", usrName: "linusx", want: pwdAttrSimTag},
		{name: "similar to email", pwd: "Torvalds1!", email: "torvalds1@test.io", want: pwdAttrSimTag},
		{name: "valid", pwd: "Sup3r-S3cret!", usrName: "Linus", email: "linus@test.io"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PasswordPolicyViolation(tt.pwd, tt.usrName, tt.email); got != tt.want {
				t.Errorf("PasswordPolicyViolation() = %q; want %q", got, tt.want)
			}
		})
	}
}

func TestPasswordPolicyText(t *testing.T) {
	for _, tag := range []string{pwdMinLenTag, pwdNoSpaceTag, pwdNotAllNumTag, pwdComplexityTag, pwdAttrSimTag} {
		if PasswordPolicyText(tag) == "" {
			t.Errorf("PasswordPolicyText(%q) is empty", tag)
		}
	}
	if got := PasswordPolicyText("required"); got != "" {
		t.Errorf("PasswordPolicyText(required) = %q; want empty", got)
	}
}

func TestRole_IsValid(t *testing.T) {
	for _, r := range AllRoles {
		if !r.IsValid() {
			t.Errorf("%q.IsValid() = false", r)
		}
	}
	if Role("root").IsValid() {
		t.Errorf("root.IsValid() = true")
	}
}
