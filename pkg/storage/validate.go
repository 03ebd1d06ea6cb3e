package storage

import (
	"unicode"

	"github.com/cvault/cvault/pkg/entity"
)

// Validation rules run before any record is encoded. They check the
// caller-supplied values, not the truncated stored form, so an over-budget
// title is rejected here rather than silently clipped.

func validateUser(u *entity.UserProfile) error {
	if u.Name == "" {
		return ValidationError("Name is required")
	}
	if !containsAt(u.Email) {
		return ValidationError("Invalid email address")
	}
	if u.PhoneNumber == "" {
		return ValidationError("Phone number cannot be empty")
	}
	if digitCount(u.PhoneNumber) < 10 {
		return ValidationError("Invalid phone number")
	}
	if u.City == "" || u.Country == "" {
		return ValidationError("Location fields are required")
	}
	return nil
}

func validateCV(cv *entity.CV) error {
	if cv.Title == "" {
		return ValidationError("Title is required")
	}
	if len(cv.Title) > entity.TitleSize {
		return ValidationError("Title is too long")
	}
	if cv.Content == "" {
		return ValidationError("Content is required")
	}
	if len(cv.Content) > entity.ContentSize {
		return ValidationError("Content exceeds the size limit")
	}
	if len(cv.Feedback) > entity.ContentSize {
		return ValidationError("Feedback exceeds the size limit")
	}
	return nil
}

// validateSwift accepts the two SWIFT/BIC lengths and nothing else.
func validateSwift(code string) error {
	if len(code) != 8 && len(code) != 11 {
		return ValidationError("SWIFT code must be 8 or 11 characters")
	}
	for _, r := range code {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return ValidationError("SWIFT code must be alphanumeric")
		}
	}
	return nil
}

func containsAt(s string) bool {
	for _, r := range s {
		if r == '@' {
			return true
		}
	}
	return false
}

func digitCount(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}
