package validator

import "testing"

type sample struct {
	Email  string `json:"email" validate:"required,email"`
	Gender string `json:"gender" validate:"required,oneof=MALE FEMALE OTHER"`
	Years  int    `json:"years_of_experience" validate:"gte=0"`
}

func TestFormatValidationErrors_UsesJSONNames(t *testing.T) {
	v := NewValidator()

	err := v.Validate(sample{Email: "nope", Gender: "X", Years: -1})
	if err == nil {
		t.Fatalf("Validate() error = nil, want errors")
	}

	got := v.FormatValidationErrors(err)
	want := map[string]string{
		"email":               "email must be a valid email address",
		"gender":              "gender must be one of [MALE FEMALE OTHER]",
		"years_of_experience": "years_of_experience must be greater than or equal to 0",
	}
	for field, msg := range want {
		if got[field] != msg {
			t.Fatalf("errors[%q] = %q, want %q", field, got[field], msg)
		}
	}
}

func TestValidate_Passes(t *testing.T) {
	if err := NewValidator().Validate(sample{Email: "a@b.co", Gender: "OTHER"}); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}
