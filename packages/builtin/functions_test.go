package builtin

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomString_Classes(t *testing.T) {
	tests := []struct {
		name    string
		opts    RandomOptions
		pattern string
	}{
		{"lower", RandomOptions{LowerCase: true, MinLength: 50, MaxLength: 50}, `^[a-z]{50}$`},
		{"upper", RandomOptions{UpperCase: true, MinLength: 50, MaxLength: 50}, `^[A-Z]{50}$`},
		{"digits", RandomOptions{Digits: true, MinLength: 50, MaxLength: 50}, `^[0-9]{50}$`},
		{"lower and digits", RandomOptions{LowerCase: true, Digits: true, MinLength: 50, MaxLength: 50}, `^[a-z0-9]{50}$`},
		{"none means alphanumeric", RandomOptions{MinLength: 50, MaxLength: 50}, `^[a-zA-Z0-9]{50}$`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Regexp(t, regexp.MustCompile(tt.pattern), RandomString(tt.opts))
		})
	}
}

func TestRandomString_Other(t *testing.T) {
	s := RandomString(RandomOptions{Other: true, MinLength: 100, MaxLength: 100})
	for _, r := range s {
		assert.True(t, strings.ContainsRune(otherChars, r), "unexpected %q", r)
	}
}

func TestRandomString_Length(t *testing.T) {
	for i := 0; i < 200; i++ {
		s := RandomString(RandomOptions{LowerCase: true, MinLength: 3, MaxLength: 6})
		assert.GreaterOrEqual(t, len(s), 3)
		assert.LessOrEqual(t, len(s), 6)
	}

	assert.Len(t, RandomString(RandomOptions{}), defaultLength)
	assert.Len(t, RandomString(RandomOptions{MinLength: 5, MaxLength: 2}), 5)
}

func TestRandomID(t *testing.T) {
	id := RandomID()
	assert.Regexp(t, `^[0-9a-f]{32}$`, id)
	assert.NotEqual(t, id, RandomID())
}

func TestBase64(t *testing.T) {
	encoded := Base64Encode("hello world")
	assert.Equal(t, "aGVsbG8gd29ybGQ=", encoded)

	decoded, err := Base64Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, "hello world", decoded)

	_, err = Base64Decode("%%%")
	assert.Error(t, err)
}

func TestReadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name": "pagexpect"}`), 0o644))

	var v struct {
		Name string `json:"name"`
	}
	require.NoError(t, ReadJSON(path, &v))
	assert.Equal(t, "pagexpect", v.Name)

	assert.Error(t, ReadJSON(filepath.Join(t.TempDir(), "missing.json"), &v))
}

func TestTimestamp(t *testing.T) {
	assert.Greater(t, Timestamp(), int64(1_600_000_000))
}
