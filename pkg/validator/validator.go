package validator

import (
	"html"
	"net/url"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

var (
	initOnce  sync.Once
	validate  *validator.Validate
	sanitizer *bluemonday.Policy
	stripper  *bluemonday.Policy

	identifierPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,127}$`)
	emailPattern      = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	spacePattern      = regexp.MustCompile(`\s+`)
)

// Init builds the shared validator and sanitising policies and registers the
// custom tags with gin's binding engine. It is safe to call more than once.
func Init() {
	initOnce.Do(func() {
		validate = validator.New()

		sanitizer = bluemonday.UGCPolicy()
		stripper = bluemonday.StrictPolicy()

		registerCustomValidations(validate)

		if engine, ok := binding.Validator.Engine().(*validator.Validate); ok {
			registerCustomValidations(engine)
		}
	})
}

func registerCustomValidations(v *validator.Validate) {
	_ = v.RegisterValidation("identifier", validateIdentifier)
	_ = v.RegisterValidation("no_html", validateNoHTML)
	_ = v.RegisterValidation("link", validateLink)
}

func Validate(s interface{}) error {
	Init()
	return validate.Struct(s)
}

// SanitizeHTML keeps user-generated markup that is safe to embed.
func SanitizeHTML(html string) string {
	Init()
	return sanitizer.Sanitize(html)
}

// SanitizeString strips every tag and returns plain text. Entities the
// policy escapes are decoded again so the value is not double escaped when
// rendered.
func SanitizeString(s string) string {
	Init()
	return html.UnescapeString(stripper.Sanitize(s))
}

// IsIdentifier reports whether s can be used as a page or section id.
func IsIdentifier(s string) bool {
	return identifierPattern.MatchString(s)
}

func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidateLink accepts absolute http(s) and mailto/tel URLs, site-relative
// paths and in-page anchors.
func ValidateLink(link string) bool {
	link = strings.TrimSpace(link)
	if link == "" {
		return false
	}
	if strings.HasPrefix(link, "#") || (strings.HasPrefix(link, "/") && !strings.HasPrefix(link, "//")) {
		return true
	}
	parsed, err := url.Parse(link)
	if err != nil {
		return false
	}
	switch parsed.Scheme {
	case "http", "https":
		return parsed.Host != ""
	case "mailto", "tel":
		return parsed.Opaque != ""
	}
	return false
}

// IsSafeURL rejects URLs whose scheme could execute script when rendered.
// Relative references and inline raster images are allowed.
func IsSafeURL(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return true
	}
	lower := strings.ToLower(value)
	if strings.HasPrefix(lower, "data:") {
		return strings.HasPrefix(lower, "data:image/") && !strings.HasPrefix(lower, "data:image/svg")
	}
	parsed, err := url.Parse(value)
	if err != nil {
		return false
	}
	switch strings.ToLower(parsed.Scheme) {
	case "", "http", "https", "mailto", "tel":
		return true
	}
	return false
}

func validateIdentifier(fl validator.FieldLevel) bool {
	return IsIdentifier(fl.Field().String())
}

func validateNoHTML(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return !strings.Contains(value, "<") && !strings.Contains(value, ">")
}

func validateLink(fl validator.FieldLevel) bool {
	return ValidateLink(fl.Field().String())
}

func NormalizeSpaces(s string) string {
	return spacePattern.ReplaceAllString(strings.TrimSpace(s), " ")
}
