package logger

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Length limits for values written to logs. Longer values are cut and
// suffixed with "...".
const (
	MaxPathLength          = 500
	MaxUserIDLength        = 128
	MaxErrorMessageLength  = 1000
	MaxGeneralStringLength = 2000
	MaxEmailLength         = 320
)

// SanitizePath makes a request path safe to log
func SanitizePath(path string) string {
	return SanitizeString(path, MaxPathLength)
}

// SanitizeUserID makes a user id safe to log
func SanitizeUserID(userID string) string {
	return SanitizeString(userID, MaxUserIDLength)
}

// SanitizeError makes an error message safe to log
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return SanitizeString(err.Error(), MaxErrorMessageLength)
}

// SanitizeEmail masks the local part of an email address so logs can
// correlate a user without recording the full address.
// "jane.doe@example.com" becomes "j***@example.com".
func SanitizeEmail(email string) string {
	email = SanitizeString(email, MaxEmailLength)
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" {
		return "***"
	}
	first, _ := utf8.DecodeRuneInString(local)
	return string(first) + "***@" + domain
}

// SanitizeString drops invalid UTF-8 and non-printable runes (other than
// whitespace) and truncates to maxLength bytes without splitting a rune.
// A non-positive maxLength means MaxGeneralStringLength.
func SanitizeString(s string, maxLength int) string {
	if s == "" {
		return ""
	}
	if maxLength <= 0 {
		maxLength = MaxGeneralStringLength
	}

	s = strings.Map(func(r rune) rune {
		if r == utf8.RuneError || !(unicode.IsPrint(r) || r == ' ' || r == '\t' || r == '\n' || r == '\r') {
			return -1
		}
		return r
	}, strings.ToValidUTF8(s, ""))

	if len(s) <= maxLength {
		return s
	}
	cut := maxLength
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
