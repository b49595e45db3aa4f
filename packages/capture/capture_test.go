package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_Text(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want string
	}{
		{"untouched", Options{}, "  hello  "},
		{"trim left", Options{TrimLeft: true}, "hello  "},
		{"trim right", Options{TrimRight: true}, "  hello"},
		{"trim both", Options{TrimLeft: true, TrimRight: true}, "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract("  hello  ", tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtract_RegExp(t *testing.T) {
	text := "Order #1234 placed\nTotal: 42 EUR"

	got, err := Extract(text, Options{DataType: DataTypeRegExp, RegExp: `#(\d+)`, MatchIndex: 1})
	require.NoError(t, err)
	assert.Equal(t, "1234", got)

	got, err = Extract(text, Options{DataType: DataTypeRegExp, RegExp: `#(\d+)`})
	require.NoError(t, err)
	assert.Equal(t, "#1234", got)

	got, err = Extract(text, Options{DataType: DataTypeRegExp, RegExp: `order #(\d+)`, IgnoreCase: true, MatchIndex: 1})
	require.NoError(t, err)
	assert.Equal(t, "1234", got)
}

func TestExtract_RegExpFlagsIndependent(t *testing.T) {
	text := "first line\nTOTAL: 42"

	got, err := Extract(text, Options{DataType: DataTypeRegExp, RegExp: `^total: (\d+)$`, IgnoreCase: true, MultiLine: true, MatchIndex: 1})
	require.NoError(t, err)
	assert.Equal(t, "42", got)

	_, err = Extract(text, Options{DataType: DataTypeRegExp, RegExp: `^total: (\d+)$`, IgnoreCase: true})
	assert.ErrorIs(t, err, ErrNoMatch)

	got, err = Extract(text, Options{DataType: DataTypeRegExp, RegExp: `^TOTAL: (\d+)$`, MultiLine: true, MatchIndex: 1})
	require.NoError(t, err)
	assert.Equal(t, "42", got)
}

func TestExtract_RegExpErrors(t *testing.T) {
	_, err := Extract("abc", Options{DataType: DataTypeRegExp, RegExp: `\d+`})
	assert.ErrorIs(t, err, ErrNoMatch)

	_, err = Extract("abc", Options{DataType: DataTypeRegExp, RegExp: `(a)`, MatchIndex: 3})
	assert.Error(t, err)

	_, err = Extract("abc", Options{DataType: DataTypeRegExp, RegExp: `(`})
	assert.Error(t, err)
}

func TestExtract_JSON(t *testing.T) {
	text := `{"user": {"name": "John", "tags": ["a", "b"]}}`

	got, err := Extract(text, Options{DataType: DataTypeJSON, Path: "user.name"})
	require.NoError(t, err)
	assert.Equal(t, "John", got)

	got, err = Extract(text, Options{DataType: DataTypeJSON, Path: "user.tags.1"})
	require.NoError(t, err)
	assert.Equal(t, "b", got)

	_, err = Extract(text, Options{DataType: DataTypeJSON, Path: "user.age"})
	assert.ErrorIs(t, err, ErrNoMatch)

	_, err = Extract("not json", Options{DataType: DataTypeJSON, Path: "x"})
	assert.Error(t, err)
}

func TestExtract_UnknownType(t *testing.T) {
	_, err := Extract("x", Options{DataType: "xml"})
	assert.Error(t, err)
}
