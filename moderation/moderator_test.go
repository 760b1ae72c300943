package moderation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Censor(t *testing.T) {
	moderator, err := NewModerator([]string{"whatsapp", "telegram", "cash only"}, '*')
	require.NoError(t, err)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain match",
			input:    "message me on whatsapp instead",
			expected: "message me on ******** instead",
		},
		{
			name:     "leet speak",
			input:    "find me on wh4t54pp",
			expected: "find me on ********",
		},
		{
			name:     "punctuation between letters",
			input:    "use t.e.l.e.g.r.a.m tonight",
			expected: "use *************** tonight",
		},
		{
			name:     "mixed case",
			input:    "WhatsApp me",
			expected: "******** me",
		},
		{
			name:     "multi word pattern",
			input:    "the deal is cash only ok",
			expected: "the deal is ********* ok",
		},
		{
			name:     "clean text untouched",
			input:    "is the flat still available?",
			expected: "is the flat still available?",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, moderator.Censor(tt.input))
		})
	}
}

func Test_Censor_PassThrough_Without_Wordlist(t *testing.T) {
	moderator, err := NewModerator(nil, '*')
	require.NoError(t, err)

	require.Equal(t, "contact me on whatsapp", moderator.Censor("contact me on whatsapp"))
}

func Test_NewModeratorFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(path, []byte("whatsapp\n\n  telegram  \n"), 0o600))

	moderator, err := NewModeratorFromFile(path, '#')
	require.NoError(t, err)

	require.Equal(t, "on ######## or ########", moderator.Censor("on whatsapp or telegram"))
}

func Test_NewModeratorFromFile_Empty_Path(t *testing.T) {
	moderator, err := NewModeratorFromFile("", '*')
	require.NoError(t, err)

	require.Equal(t, "whatsapp", moderator.Censor("whatsapp"))
}

func Test_NewModeratorFromFile_Missing_File(t *testing.T) {
	_, err := NewModeratorFromFile(filepath.Join(t.TempDir(), "absent.txt"), '*')
	require.Error(t, err)
}
