// Package pnu normalizes parcel identifier (PNU) values for ParcelLink.
package pnu

import "strings"

// Length is the number of digits in a canonical parcel identifier.
const Length = 19

// ownerClassLength is the width of the owner classification sub-code.
const ownerClassLength = 2

// Normalize canonicalizes a raw cell value into a comparable identifier.
// Every non-digit character is stripped and the remaining digits are
// left-zero-padded to Length. Inputs without any digit yield "".
// Digit strings longer than Length are returned as-is, never truncated.
func Normalize(raw string) string {
	return padLeft(digitsOnly(raw), Length)
}

// OwnerClass normalizes the two-digit owner classification code.
// It keeps only the last two digits after left-padding, which is a
// different policy from Normalize and must not be used for identifiers.
func OwnerClass(raw string) string {
	d := padLeft(digitsOnly(raw), ownerClassLength)
	if d == "" {
		return ""
	}
	return d[len(d)-ownerClassLength:]
}

// IsCanonical reports whether id is exactly Length ASCII digits.
func IsCanonical(id string) bool {
	if len(id) != Length {
		return false
	}
	return digitsOnly(id) == id
}

func digitsOnly(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= '0' && c <= '9' {
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// padLeft zero-pads a non-empty digit string to width. Empty input stays empty.
func padLeft(digits string, width int) string {
	if digits == "" || len(digits) >= width {
		return digits
	}
	return strings.Repeat("0", width-len(digits)) + digits
}
