package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUUIDAccepts(t *testing.T) {
	const want = "11111111-1111-4111-8111-111111111111"
	tests := []struct {
		name  string
		input string
	}{
		{"canonical", "11111111-1111-4111-8111-111111111111"},
		{"braces", "{11111111-1111-4111-8111-111111111111}"},
		{"urn", "urn:uuid:11111111-1111-4111-8111-111111111111"},
		{"compact", "11111111111141118111111111111111"},
		{"whitespace", "  11111111-1111-4111-8111-111111111111\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := ParseUUID(tt.input)
			require.NoError(t, err)
			assert.Equal(t, want, u.String())
		})
	}
}

func TestParseUUIDUpperCaseHex(t *testing.T) {
	u, err := ParseUUID("6BA7B810-9DAD-41D1-80B4-00C04FD430C8")
	require.NoError(t, err)
	assert.Equal(t, "6ba7b810-9dad-41d1-80b4-00c04fd430c8", u.String())
}

func TestParseUUIDRejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"empty", "", ErrWrongLength},
		{"short", "1111-1111", ErrWrongLength},
		{"not a uuid", "not-a-uuid", ErrWrongLength},
		{"misplaced hyphen", "111111111-111-4111-8111-111111111111", ErrWrongFormat},
		{"non hex", "g1111111-1111-4111-8111-111111111111", ErrWrongFormat},
		{"nil", "00000000-0000-0000-0000-000000000000", ErrIsNil},
		{"ncs variant", "11111111-1111-4111-0111-111111111111", ErrUnsupportedVariant},
		{"version 0", "11111111-1111-0111-8111-111111111111", ErrWrongVersion},
		{"version 7", "11111111-1111-7111-8111-111111111111", ErrWrongVersion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseUUID(tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestIsUUID(t *testing.T) {
	assert.True(t, IsUUID("6ba7b810-9dad-41d1-80b4-00c04fd430c8"))
	assert.False(t, IsUUID("6ba7b810"))
}
