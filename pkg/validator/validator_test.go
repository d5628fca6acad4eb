package validator

import (
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
)

type testPayload struct {
	FullName string `json:"full_name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	GroupID  int    `json:"group_id" validate:"gte=1"`
}

func TestValidateStructSuccess(t *testing.T) {
	payload := testPayload{
		FullName: "Alice",
		Email:    "alice@example.com",
		GroupID:  2,
	}

	if err := ValidateStruct(payload); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidateStructFailures(t *testing.T) {
	payload := testPayload{
		FullName: "",
		Email:    "invalid",
		GroupID:  0,
	}

	err := ValidateStruct(payload)
	if err == nil {
		t.Fatal("expected validation error")
	}

	vErrs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}

	if len(vErrs) != 3 {
		t.Fatalf("expected 3 validation errors, got %d", len(vErrs))
	}

	foundEmail := false
	for _, v := range vErrs {
		if v.Field == "email" {
			foundEmail = true
		}
	}

	if !foundEmail {
		t.Fatal("expected email field to be present in validation errors")
	}
}

func TestRegisterValidation(t *testing.T) {
	err := RegisterValidation("memberhub", func(fl validator.FieldLevel) bool {
		return fl.Field().String() == "memberhub"
	})
	if err != nil {
		t.Fatalf("register validation: %v", err)
	}

	type custom struct {
		Value string `validate:"memberhub"`
	}

	if err := ValidateStruct(custom{Value: "memberhub"}); err != nil {
		t.Fatalf("expected validation to pass, got %v", err)
	}
	if err := ValidateStruct(custom{Value: "other"}); err == nil {
		t.Fatal("expected validation to fail for non-matching value")
	}
}

func TestIsStrongPassword(t *testing.T) {
	cases := map[string]bool{
		"Aa1!aaaa":      true,
		"Str0ng&Secret": true,
		"Aa1!aaa":       false, // too short
		"aa1!aaaa":      false, // no uppercase
		"AA1!AAAA":      false, // no lowercase
		"Aaa!aaaa":      false, // no digit
		"Aa1aaaaa":      false, // no symbol
		"Aa1!aaa#":      false, // symbol outside the allowed set
		"Aa1! aaaa":     false,
		"":              false,
	}

	cases["Aa1!"+strings.Repeat("a", MaxPasswordLength-4)] = true
	cases["Aa1!"+strings.Repeat("a", MaxPasswordLength-3)] = false

	for password, want := range cases {
		if got := IsStrongPassword(password); got != want {
			t.Errorf("IsStrongPassword(%q) = %v, want %v", password, got, want)
		}
	}
}

func TestPasswordTag(t *testing.T) {
	type register struct {
		Password string `json:"password" validate:"required,password"`
	}

	if err := ValidateStruct(register{Password: "Aa1!aaaa"}); err != nil {
		t.Fatalf("expected strong password to pass, got %v", err)
	}

	err := ValidateStruct(register{Password: "weakpass"})
	if err == nil {
		t.Fatal("expected weak password to fail")
	}
	vErrs := err.(ValidationErrors)
	if vErrs[0].Tag != PasswordTag || vErrs[0].Field != "password" {
		t.Fatalf("unexpected failure: %+v", vErrs[0])
	}
}
