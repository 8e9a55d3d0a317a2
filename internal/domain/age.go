package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// AgeVerification is the outcome of checking a customer against a shop's age limit
type AgeVerification struct {
	IsVerified bool   `json:"isVerified"`
	Message    string `json:"message"`
}

// VerifyAge compares a resolved customer age with the shop's limit
func VerifyAge(age int, limit int) AgeVerification {
	if age >= limit {
		return AgeVerification{IsVerified: true, Message: "Age verified successfully."}
	}
	return AgeVerification{IsVerified: false, Message: fmt.Sprintf("You must be %d years old.", limit)}
}

// ResolveAge turns a raw userAge value into whole years.
// Integers pass through (base 10, so "018" is 18); anything else is read as a
// birth date and measured against now.
func ResolveAge(raw string, now time.Time) (int, error) {
	raw = strings.TrimSpace(raw)
	if age, err := strconv.Atoi(raw); err == nil {
		if age < 0 {
			return 0, fmt.Errorf("age cannot be negative: %d", age)
		}
		return age, nil
	}

	birth, err := cast.ToTimeE(raw)
	if err != nil {
		return 0, fmt.Errorf("unrecognised age or birth date %q: %w", raw, err)
	}
	return AgeAt(birth, now)
}

// AgeAt returns the number of completed years between birth and now
func AgeAt(birth, now time.Time) (int, error) {
	by, bm, bd := birth.Date()
	ny, nm, nd := now.In(birth.Location()).Date()
	if ny < by || (ny == by && (nm < bm || (nm == bm && nd < bd))) {
		return 0, fmt.Errorf("birth date %s is in the future", birth.Format("2006-01-02"))
	}

	age := ny - by
	if nm < bm || (nm == bm && nd < bd) {
		age--
	}
	return age, nil
}

// ParseAgeLimit validates the age query parameter of the set-age endpoint
func ParseAgeLimit(raw string) (int, error) {
	limit, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("age must be an integer: %w", err)
	}
	if limit < 0 {
		return 0, fmt.Errorf("age cannot be negative: %d", limit)
	}
	return limit, nil
}
