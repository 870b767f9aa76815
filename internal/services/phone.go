package services

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	reLetters = regexp.MustCompile(`\p{L}`)
	// Only allow digits, spaces, +, -, ., (, )
	reAllowed = regexp.MustCompile(`^[0-9+\-\s\.\(\)]+$`)
)

// MinPhoneDigits is the shortest number the check-in form accepts.
const MinPhoneDigits = 10

// NormPhone strips separators so "010 0000-0000" and "01000000000" compare
// equal. Country codes are kept as typed: stored numbers are compared
// verbatim after normalization, never rewritten to another dialling form.
// Returns "" for input that is not a phone number.
func NormPhone(p string) string {
	s := strings.TrimSpace(p)
	if s == "" {
		return ""
	}
	s = toASCIIDigits(s)
	if reLetters.MatchString(s) {
		return ""
	}
	if !reAllowed.MatchString(s) {
		return ""
	}

	// strip separators
	repl := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "", "\t", "", "\n", "", "\r", "")
	s = repl.Replace(s)

	// 00.. -> +..
	if strings.HasPrefix(s, "00") {
		s = "+" + s[2:]
	}
	// only a single leading plus survives
	if strings.HasPrefix(s, "+") {
		s = "+" + strings.ReplaceAll(s[1:], "+", "")
	} else {
		s = strings.ReplaceAll(s, "+", "")
	}
	return s
}

// ValidPhone reports whether p normalizes to a number with enough digits.
func ValidPhone(p string) bool {
	return len(DigitsOnly(NormPhone(p))) >= MinPhoneDigits
}

// DigitsOnly strips everything but digits (for fuzzy search).
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// toASCIIDigits maps Arabic-Indic and Eastern Arabic-Indic digits to 0-9;
// phones typed on an Arabic keyboard arrive in those scripts.
func toASCIIDigits(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= '٠' && r <= '٩':
			return '0' + (r - '٠')
		case r >= '۰' && r <= '۹':
			return '0' + (r - '۰')
		}
		return r
	}, s)
}
