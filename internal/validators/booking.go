package validators

import (
	"regexp"
	"strings"
)

// Local subscriber numbers are 8 or 9 digits, no prefix.
var phonePattern = regexp.MustCompile(`^[0-9]{8,9}$`)

func IsBookingPhone(phone string) bool {
	return phonePattern.MatchString(strings.TrimSpace(phone))
}

func IsClientName(name string) bool {
	return len(strings.TrimSpace(name)) >= 3
}
