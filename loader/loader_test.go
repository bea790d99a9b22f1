package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name   string
		header []byte
		want   string
	}{
		{"elf", []byte{0x7f, 'E', 'L', 'F'}, "elf"},
		{"pe", []byte{'M', 'Z', 0x00, 0x00}, "pe"},
		{"macho64", []byte{0xfe, 0xed, 0xfa, 0xcf}, "macho"},
		{"macho32", []byte{0xfe, 0xed, 0xfa, 0xce}, "macho"},
		{"unknown", []byte{0x00, 0x01, 0x02, 0x03}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, detectFormat(tt.header))
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/to/binary")
	assert.Error(t, err)
}

func TestPEArchMapping(t *testing.T) {
	_, ok := peArch(0xdead)
	assert.False(t, ok)

	arch, ok := peArch(0x8664)
	assert.True(t, ok)
	assert.Equal(t, ArchX8664, arch)
}
