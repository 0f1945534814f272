package validator

import (
	"net/mail"
	"strings"
	"unicode"
)

type ValidationErrors map[string]string

func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

func (v ValidationErrors) Add(field, message string) {
	v[field] = message
}

func ValidateSignup(email, name, password string) ValidationErrors {
	errs := make(ValidationErrors)

	email = strings.TrimSpace(email)
	if email == "" {
		errs.Add("email", "Email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs.Add("email", "Invalid email address")
	}

	name = strings.TrimSpace(name)
	if name == "" {
		errs.Add("name", "Name is required")
	} else if len(name) > 100 {
		errs.Add("name", "Name is too long")
	}

	validatePassword(password, errs)

	return errs
}

func ValidateLogin(email, password string) ValidationErrors {
	errs := make(ValidationErrors)

	email = strings.TrimSpace(email)
	if email == "" {
		errs.Add("email", "Email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs.Add("email", "Invalid email address")
	}

	if password == "" {
		errs.Add("password", "Password is required")
	}

	return errs
}

func ValidatePost(title, content string) ValidationErrors {
	errs := make(ValidationErrors)

	if strings.TrimSpace(title) == "" {
		errs.Add("title", "Title is required")
	} else if len(title) > 200 {
		errs.Add("title", "Title is too long")
	}

	if strings.TrimSpace(content) == "" {
		errs.Add("content", "Content is required")
	}

	return errs
}

func ValidateStatus(status string) ValidationErrors {
	errs := make(ValidationErrors)

	if strings.TrimSpace(status) == "" {
		errs.Add("status", "Status is required")
	} else if len(status) > 200 {
		errs.Add("status", "Status is too long")
	}

	return errs
}

func validatePassword(password string, errs ValidationErrors) {
	if len(password) < 8 {
		errs.Add("password", "Password must be at least 8 characters")
		return
	}

	var hasLetter, hasDigit bool
	for _, ch := range password {
		switch {
		case unicode.IsLetter(ch):
			hasLetter = true
		case unicode.IsDigit(ch):
			hasDigit = true
		}
	}

	if !hasLetter || !hasDigit {
		errs.Add("password", "Password must contain at least one letter and one number")
	}
}
