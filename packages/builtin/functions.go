package builtin

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	lowerChars = "abcdefghijklmnopqrstuvwxyz"
	upperChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digitChars = "0123456789"
	otherChars = ",./<>?;:\"[]\\{}|`~!@#$%^&*()_+=-"

	defaultLength = 16
)

// RandomOptions select the character classes and length range of
// RandomString. Classes combine independently.
type RandomOptions struct {
	LowerCase bool
	UpperCase bool
	Digits    bool
	Other     bool
	MinLength int
	MaxLength int
}

func (o RandomOptions) charset() string {
	var b strings.Builder
	if o.LowerCase {
		b.WriteString(lowerChars)
	}
	if o.UpperCase {
		b.WriteString(upperChars)
	}
	if o.Digits {
		b.WriteString(digitChars)
	}
	if o.Other {
		b.WriteString(otherChars)
	}
	if b.Len() == 0 {
		return lowerChars + upperChars + digitChars
	}
	return b.String()
}

// RandomString returns a string whose length is uniform in
// [MinLength, MaxLength]. With no class enabled it is alphanumeric; with no
// length set it is 16 characters long.
func RandomString(opts RandomOptions) string {
	lo, hi := opts.MinLength, opts.MaxLength
	if lo < 0 {
		lo = 0
	}
	if hi < lo {
		hi = lo
	}
	if lo == 0 && hi == 0 {
		lo, hi = defaultLength, defaultLength
	}
	length := lo + rand.Intn(hi-lo+1)
	return randomString(length, opts.charset())
}

// RandomID returns 32 lowercase hex characters.
func RandomID() string {
	id := uuid.New()
	return fmt.Sprintf("%x", id[:])
}

// Timestamp returns the current Unix time in seconds.
func Timestamp() int64 {
	return time.Now().Unix()
}

func Base64Encode(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func Base64Decode(s string) (string, error) {
	decoded, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

// ReadJSON decodes the JSON file at path into v.
func ReadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func randomString(length int, charset string) string {
	result := make([]byte, length)
	for i := 0; i < length; i++ {
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}
