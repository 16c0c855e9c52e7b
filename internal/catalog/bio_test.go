package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/bestiary/pkg/bestiary"
)

func TestNormalizeBio(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"single line untouched", "A quiet creature.", "A quiet creature."},
		{"wrapped lines joined", "Line one.\nLine two.", "Line one. Line two."},
		{"trailing newline becomes space", "Line one.\nLine two.\n", "Line one. Line two. "},
		{"blank line keeps second newline", "a\n\nb", "a \nb"},
		{"leading newline kept", "\nabc", "\nabc"},
		{"only newlines kept", "\n\n", "\n\n"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeBio(tt.in))
		})
	}
}

func TestLoadBios(t *testing.T) {
	input := "name,bio\n" +
		"Test Mon,\"Line one.\nLine two.\n\"\n" +
		"Book A,First\n" +
		"Book A,Second\n"

	bios, err := LoadBios(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, "Line one. Line two. ", bios.Lookup("Test Mon"))
	assert.Equal(t, "Second", bios.Lookup("Book A"), "later rows overwrite earlier ones")
	assert.Equal(t, "", bios.Lookup("test mon"), "keys are exact display names")
	assert.Equal(t, "", bios.Lookup("Nobody"))
}

func TestLoadBios_MissingColumn(t *testing.T) {
	_, err := LoadBios(strings.NewReader("name,text\nTest Mon,hi\n"))
	require.Error(t, err)

	var mf *MissingFieldError
	require.ErrorAs(t, err, &mf)
	assert.Equal(t, "bio", mf.Field)
	assert.ErrorIs(t, err, bestiary.ErrInvalidInput)
}

func TestLoadBios_ShortRow(t *testing.T) {
	_, err := LoadBios(strings.NewReader("name,bio\nTest Mon\n"))

	var mf *MissingFieldError
	require.ErrorAs(t, err, &mf)
	assert.Equal(t, 2, mf.Line)
	assert.Equal(t, "bio", mf.Field)
}
