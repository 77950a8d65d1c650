package validators

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsBookingPhone(t *testing.T) {
	valid := []string{"79123456", "791234567", " 79123456 "}
	for _, p := range valid {
		assert.True(t, IsBookingPhone(p), "phone %q", p)
	}

	invalid := []string{"", "1234567", "7912345678", "+25779123456", "79 123 456", "abcdefgh"}
	for _, p := range invalid {
		assert.False(t, IsBookingPhone(p), "phone %q", p)
	}
}

func TestIsClientName(t *testing.T) {
	assert.True(t, IsClientName("Ana"))
	assert.True(t, IsClientName("  Alice  "))

	assert.False(t, IsClientName(""))
	assert.False(t, IsClientName("Al"))
	assert.False(t, IsClientName("  a  "))
}
