// internal/forms/validate.go
package forms

import (
	"regexp"

	"comj-admin/internal/common/errors"
	"comj-admin/internal/common/validation"
)

var (
	biPattern    = regexp.MustCompile(`^[0-9]{9}[A-Z]{2}[0-9]{3}$`)
	upperPattern = regexp.MustCompile(`[A-Z]`)
	lowerPattern = regexp.MustCompile(`[a-z]`)
	digitPattern = regexp.MustCompile(`[0-9]`)
)

// CreateUserForm carries the already-normalized values of the new-user form.
type CreateUserForm struct {
	FirstName       string
	LastName        string
	Email           string
	BI              string
	Password        string
	ConfirmPassword string
}

// ValidateName checks the 2..20 length window.
func ValidateName(name string) bool {
	n := len([]rune(name))
	return n >= 2 && n <= 20
}

// ValidateEmail checks the address shape. Normalization is the caller's job.
func ValidateEmail(email string) bool {
	return validation.ValidateEmail(email)
}

// ValidateBI checks the full 9-digits, 2-letters, 3-digits grammar.
func ValidateBI(bi string) bool {
	return biPattern.MatchString(bi)
}

// ValidatePassword returns every rule the password breaks, in display order.
func ValidatePassword(password string) []string {
	var problems []string

	if len(password) < 6 {
		problems = append(problems, "A senha deve ter pelo menos 6 caracteres")
	}
	if len(password) > 20 {
		problems = append(problems, "A senha não pode exceder 20 caracteres")
	}
	if !upperPattern.MatchString(password) {
		problems = append(problems, "A senha deve conter pelo menos uma letra maiúscula")
	}
	if !lowerPattern.MatchString(password) {
		problems = append(problems, "A senha deve conter pelo menos uma letra minúscula")
	}
	if !digitPattern.MatchString(password) {
		problems = append(problems, "A senha deve conter pelo menos um número")
	}

	return problems
}

// Validate runs the submit-time checks in order and stops at the first
// failure, returning its single message.
func (f *CreateUserForm) Validate() error {
	if !ValidateName(f.FirstName) {
		return errors.NewValidationFailedError("firstName", "Nome deve ter entre 2 e 20 caracteres.")
	}
	if !ValidateName(f.LastName) {
		return errors.NewValidationFailedError("lastName", "Sobrenome deve ter entre 2 e 20 caracteres.")
	}
	if !ValidateEmail(f.Email) {
		return errors.NewValidationFailedError("email", "Por favor, insira um email válido")
	}
	if !ValidateBI(f.BI) {
		return errors.NewValidationFailedError("bi", "BI deve seguir o formato: 9 números + 2 letras + 3 números (ex: 123456789LA098)")
	}
	if problems := ValidatePassword(f.Password); len(problems) > 0 {
		return errors.NewValidationFailedError("password", problems[0])
	}
	if f.Password != f.ConfirmPassword {
		return errors.NewValidationFailedError("confirmPassword", "As senhas não coincidem!")
	}
	return nil
}

// Normalize applies the per-field input formatters, returning the form as the
// UI would have submitted it.
func (f *CreateUserForm) Normalize() {
	f.FirstName = FormatName(f.FirstName)
	f.LastName = FormatName(f.LastName)
	f.Email = NormalizeEmail(f.Email)
	f.BI = FormatBI(f.BI)
}
