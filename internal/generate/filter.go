package generate

import (
	"strings"

	"github.com/uberswe/domaingen/pkg/domain"
)

const doubleSeparator = string(domain.Separator) + string(domain.Separator)

// IsValid reports whether a candidate may be used as a domain label.
// A candidate must not start or end with the separator nor contain two in a
// row. When constraints are given, containing any one of them is enough.
func IsValid(candidate string, constraints []string) bool {
	if candidate == "" {
		return false
	}
	if candidate[0] == domain.Separator || candidate[len(candidate)-1] == domain.Separator {
		return false
	}
	if strings.Contains(candidate, doubleSeparator) {
		return false
	}

	if len(constraints) == 0 {
		return true
	}
	for _, word := range constraints {
		if strings.Contains(candidate, word) {
			return true
		}
	}
	return false
}
