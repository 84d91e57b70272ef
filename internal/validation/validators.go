package validation

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

const (
	// MaxProfilePictureBytes is the largest embedded image accepted as a profile picture
	MaxProfilePictureBytes = 5 << 20
	// MaxNameLength bounds a full name set by a user edit
	MaxNameLength = 256
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Report fields by their JSON names so messages match the request body
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
}

// ValidateProfilePicture checks a picture chosen in a user edit: an absolute
// http(s) URL or a base64 data URI holding an image of at most
// MaxProfilePictureBytes. Identity syncs store provider pictures unchecked.
func ValidateProfilePicture(value string) error {
	if strings.HasPrefix(value, "data:") {
		return validateImageDataURI(value)
	}

	u, err := url.Parse(value)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("invalid profilePicture: must be an http(s) URL or an image data URI")
	}
	return nil
}

func validateImageDataURI(value string) error {
	header, data, ok := strings.Cut(strings.TrimPrefix(value, "data:"), ",")
	if !ok {
		return fmt.Errorf("invalid profilePicture: malformed data URI")
	}

	mediaType, encoding, _ := strings.Cut(header, ";")
	if !strings.HasPrefix(mediaType, "image/") {
		return fmt.Errorf("invalid profilePicture: please select an image file")
	}
	if encoding != "base64" {
		return fmt.Errorf("invalid profilePicture: image data must be base64 encoded")
	}

	// Size check before decoding so oversized payloads are rejected cheaply
	if decodedLen(data) > MaxProfilePictureBytes {
		return fmt.Errorf("invalid profilePicture: image size should be less than 5MB")
	}
	if _, err := base64.StdEncoding.DecodeString(data); err != nil {
		return fmt.Errorf("invalid profilePicture: image data is not valid base64")
	}
	return nil
}

func decodedLen(data string) int {
	padding := len(data) - len(strings.TrimRight(data, "="))
	return len(data)/4*3 - padding
}

// Describe renders validator errors as a short client-facing message
func Describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "max":
			parts = append(parts, fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
		case "email":
			parts = append(parts, fmt.Sprintf("%s must be a valid email address", fe.Field()))
		default:
			parts = append(parts, fmt.Sprintf("invalid %s", fe.Field()))
		}
	}
	return strings.Join(parts, "; ")
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}
