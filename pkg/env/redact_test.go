package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSecretKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"ANTHROPIC_API_KEY", true},
		{"github_token", true},
		{"DB_PASSWORD", true},
		{"CLIENT_SECRET", true},
		{"AWS_CREDENTIALS", true},
		{"MODEL", false},
		{"HOME", false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSecretKey(tt.key))
		})
	}
}

func TestRedactValue(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"empty", "", ""},
		{"short", "abc", "***"},
		{"eight", "12345678", "********"},
		{"long", "sk-ant-abcdefgh1234", "sk-a***********1234"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RedactValue(tt.value))
		})
	}
}

func TestRedacted(t *testing.T) {
	in := map[string]string{
		"ANTHROPIC_API_KEY": "sk-ant-abcdefgh1234",
		"MODEL":             "opus",
	}
	out := Redacted(in)

	assert.Equal(t, "sk-a***********1234", out["ANTHROPIC_API_KEY"])
	assert.Equal(t, "opus", out["MODEL"])
	assert.Equal(t, "sk-ant-abcdefgh1234", in["ANTHROPIC_API_KEY"])
}
