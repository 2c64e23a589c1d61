package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePercent(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want float64
	}{
		{"whole number", "85", 85},
		{"trailing percent sign", "85%", 85},
		{"percent with spaces", " 85 % ", 85},
		{"fraction", "0.85", 0.85},
		{"garbage", "n/a", 0},
		{"empty", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parsePercent(tt.in))
		})
	}
}

func TestParseScore(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want float64
	}{
		{"plain", "92.5", 92.5},
		{"percent", "92%", 92},
		{"slash notation", "8/10", 8},
		{"percent and slash", "80%/100", 80},
		{"garbage", "aprobado", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseScore(tt.in))
		})
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want float64
	}{
		{"hours and minutes", "1h 45m", 1.75},
		{"hours only", "2h", 2},
		{"minutes only", "30m", 0.5},
		{"compact", "2h30m", 2.5},
		{"bare number stays hours", "90", 90},
		{"decimal", "1.5", 1.5},
		{"garbage", "mucho tiempo", 0},
		{"empty", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, parseDuration(tt.in), 1e-9)
		})
	}
}

func TestIsAffirmative(t *testing.T) {
	for _, v := range []string{"Si", "si", "YES", "True", "Completado", " si "} {
		assert.True(t, isAffirmative(v), v)
	}
	for _, v := range []string{"No", "", "false", "aprobado", "0"} {
		assert.False(t, isAffirmative(v), v)
	}
}

func TestFormatDate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"iso passthrough", "2024-03-15", "2024-03-15"},
		{"iso with time truncates", "2024-03-15 10:30:00", "2024-03-15"},
		{"excel short date", "03-15-24", "2024-03-15"},
		{"slash date", "3/15/24", "2024-03-15"},
		{"unrecognized stays verbatim", "mediados de marzo", "mediados de marzo"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatDate(tt.in))
		})
	}
}

func TestParseIntOr(t *testing.T) {
	assert.Equal(t, 3, parseIntOr("3", 1))
	assert.Equal(t, 1, parseIntOr("", 1))
	assert.Equal(t, 1, parseIntOr("tres", 1))
	assert.Equal(t, 0, parseIntOr("x", 0))
}
