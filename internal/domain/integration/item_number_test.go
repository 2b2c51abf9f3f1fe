package integration

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidItemNumber(t *testing.T) {
	tests := []struct {
		number string
		want   bool
	}{
		{"abc", false},
		{"AB-12_3.x", true},
		{"AB/12", false},
		{"abcd", true},
		{"SW10001", true},
		{"SW 10001", false},
		{"ÄBCD", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsValidItemNumber(tt.number), tt.number)
	}
}
