package mapper

import (
	"net/url"
	"strings"
)

// isAllowedReturnURL reports whether value is an https URL that does not
// point at a loopback host. The provider refuses to redirect anywhere else.
func isAllowedReturnURL(value string) bool {
	if value == "" {
		return false
	}
	parsed, err := url.Parse(value)
	if err != nil {
		return false
	}
	if !strings.EqualFold(parsed.Scheme, "https") {
		return false
	}
	host := parsed.Hostname()
	if strings.EqualFold(host, "localhost") || host == "127.0.0.1" {
		return false
	}
	return host != ""
}

func firstAllowedReturnURL(candidates ...string) string {
	for _, candidate := range candidates {
		candidate = strings.TrimSpace(candidate)
		if isAllowedReturnURL(candidate) {
			return candidate
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

func firstNonZero(values ...int) int {
	for _, value := range values {
		if value != 0 {
			return value
		}
	}
	return 0
}

func firstBool(values ...*bool) *bool {
	for _, value := range values {
		if value != nil {
			return value
		}
	}
	return nil
}
