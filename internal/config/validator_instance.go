package config

import (
	"net/url"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	semverPattern     = regexp.MustCompile(`^\d+\.\d+(?:\.\d+)?(?:-[0-9A-Za-z-.]+)?(?:\+[0-9A-Za-z-.]+)?$`)
	devicePathPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(?:\.[A-Za-z_][A-Za-z0-9_]*)*$`)
	sshGitPattern     = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+:[a-zA-Z0-9._/~-]+$`)
)

// validatorInstance configures and returns the shared validator instance used across the config package.
func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		_ = v.RegisterValidation("semver", func(fl validator.FieldLevel) bool {
			return semverPattern.MatchString(fl.Field().String())
		})

		_ = v.RegisterValidation("device_path", func(fl validator.FieldLevel) bool {
			return devicePathPattern.MatchString(fl.Field().String())
		})

		_ = v.RegisterValidation("git_url", func(fl validator.FieldLevel) bool {
			urlStr := strings.TrimSpace(fl.Field().String())
			if urlStr == "" {
				return false
			}

			if parsedURL, err := url.Parse(urlStr); err == nil {
				switch strings.ToLower(parsedURL.Scheme) {
				case "http", "https", "ssh", "git":
					return parsedURL.Host != ""
				case "file":
					return parsedURL.Path != ""
				}
			}

			if sshGitPattern.MatchString(urlStr) {
				return true
			}

			return strings.HasPrefix(urlStr, "/") || strings.HasPrefix(urlStr, "./") || strings.HasPrefix(urlStr, "../")
		})

		validateInst = v
	})

	return validateInst
}

// GetValidator returns a configured validator instance for use outside the config package.
func GetValidator() *validator.Validate {
	return validatorInstance()
}
