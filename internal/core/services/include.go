package services

import (
	"fmt"
	"strings"

	"eclat-salon/internal/core/domain"
)

// Relations each resource may load through ?include=
var (
	serviceIncludes     = map[string]string{"staff": "Staff"}
	staffIncludes       = map[string]string{"services": "Services", "schedule": "Schedule"}
	appointmentIncludes = map[string]string{"user": "User", "service": "Service", "staff": "Staff"}
	reviewIncludes      = map[string]string{"user": "User", "staff": "Staff", "service": "Service", "appointment": "Appointment"}
)

// parseInclude turns a comma separated include list into association names.
// Nothing is loaded unless asked for.
func parseInclude(raw string, allowed map[string]string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	seen := make(map[string]bool)
	var out []string
	for _, part := range strings.Split(raw, ",") {
		key := strings.ToLower(strings.TrimSpace(part))
		if key == "" || seen[key] {
			continue
		}
		assoc, ok := allowed[key]
		if !ok {
			return nil, fmt.Errorf("%w: cannot include %q", domain.ErrInvalidInput, key)
		}
		seen[key] = true
		out = append(out, assoc)
	}
	return out, nil
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
