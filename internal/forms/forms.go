// Package forms holds the HTML form payloads and their validation.
package forms

import (
	"fmt"
	"reflect"
	"strings"

	"labchem/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	// Report fields by their form names so messages match the inputs.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// LoginForm is posted to /login.
type LoginForm struct {
	Email    string `form:"email" validate:"required,notblank"`
	Password string `form:"password" validate:"required"`
}

// NewUserForm is posted to /new_user.
type NewUserForm struct {
	FirstName       string `form:"firstname" validate:"required,notblank,max=50"`
	LastName        string `form:"lastname" validate:"required,notblank,max=50"`
	Email           string `form:"email" validate:"required,email,max=100"`
	Password        string `form:"password" validate:"required"`
	PasswordConfirm string `form:"password_confirm" validate:"required,eqfield=Password"`
}

// ReagentForm is posted to /new_reagent and /edit/:id. The date is never part
// of it. Length limits match the column sizes of models.Reagent.
type ReagentForm struct {
	Name          string `form:"name" validate:"required,notblank,max=100"`
	Concentration string `form:"concentration" validate:"required,notblank,max=50"`
	Manufacturer  string `form:"manufacturer" validate:"required,notblank,max=100"`
	CAS           string `form:"cas" validate:"required,notblank,max=30"`
	Quantity      string `form:"quantity" validate:"required,numeric,max=30"`
	Unit          string `form:"unit" validate:"required,oneof=µl ml L mg g kg"`
	Location      string `form:"location" validate:"required,notblank,max=50"`
	Stock         string `form:"stock" validate:"required,notblank,max=50"`
	Comment       string `form:"comment" validate:"omitempty,max=500"`
}

// FieldErrors maps a form field name to a message.
type FieldErrors map[string]string

// Validate checks a form struct and returns nil when it is valid.
func Validate(form any) FieldErrors {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return FieldErrors{"_": err.Error()}
	}
	errs := make(FieldErrors, len(validationErrors))
	for _, e := range validationErrors {
		errs[e.Field()] = message(e)
	}
	return errs
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "notblank":
		return "This field is required."
	case "email":
		return "Invalid email address."
	case "eqfield":
		return "Passwords must match"
	case "oneof":
		return fmt.Sprintf("Not a valid choice, expected one of: %s.", strings.Join(models.Units, ", "))
	case "numeric":
		return "Must be a number."
	case "max":
		return fmt.Sprintf("Must be at most %s characters.", e.Param())
	default:
		return fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
}

// Apply copies the form into a reagent, leaving ID and Date untouched.
func (f *ReagentForm) Apply(r *models.Reagent) {
	r.Name = f.Name
	r.Concentration = f.Concentration
	r.Manufacturer = f.Manufacturer
	r.CAS = f.CAS
	r.Quantity = f.Quantity
	r.Unit = f.Unit
	r.Location = f.Location
	r.Stock = f.Stock
	r.Comment = f.Comment
}

// ReagentFormFrom prefills a form from a stored reagent.
func ReagentFormFrom(r *models.Reagent) ReagentForm {
	return ReagentForm{
		Name:          r.Name,
		Concentration: r.Concentration,
		Manufacturer:  r.Manufacturer,
		CAS:           r.CAS,
		Quantity:      r.Quantity,
		Unit:          r.Unit,
		Location:      r.Location,
		Stock:         r.Stock,
		Comment:       r.Comment,
	}
}
