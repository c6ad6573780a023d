package filename

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleister1102/postforge/internal/errorwrapper"
)

func TestGenerator_Generate_HexMarkdownFilename(t *testing.T) {
	generator := NewGenerator(zerolog.Nop())
	dir := t.TempDir()

	opts := DefaultOptions()
	opts.Extension = "md"
	opts.Length = 8
	opts.Charset = CharsetHex
	opts.Directory = dir

	name, err := generator.Generate(opts)
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{8}\.md$`), name)
	assert.True(t, IsValidFilename(name))

	_, statErr := os.Stat(filepath.Join(dir, name))
	assert.True(t, os.IsNotExist(statErr))
}

func TestGenerator_Generate_AssemblyOrder(t *testing.T) {
	generator := NewGenerator(zerolog.Nop())
	generator.now = func() time.Time { return time.Unix(1700000000, 0) }
	generator.randInt = func(int) int { return 0 } // always the first alphabet rune

	opts := DefaultOptions()
	opts.Prefix = "draft"
	opts.Suffix = "v2"
	opts.Timestamp = true
	opts.Length = 4
	opts.Charset = CharsetLetters
	opts.Extension = ".md" // leading dot is trimmed

	name, err := generator.Generate(opts)
	require.NoError(t, err)
	assert.Equal(t, "draft_1700000000_aaaa_v2.md", name)
}

func TestGenerator_Generate_SkipsCollisions(t *testing.T) {
	generator := NewGenerator(zerolog.Nop())
	dir := t.TempDir()

	// Occupy a handful of single-digit candidates
	for _, taken := range []string{"0.txt", "1.txt", "2.txt", "3.txt", "4.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, taken), nil, 0644))
	}

	opts := DefaultOptions()
	opts.Extension = "txt"
	opts.Length = 1
	opts.Charset = CharsetDigits
	opts.Directory = dir
	opts.MaxAttempts = 200

	for i := 0; i < 20; i++ {
		name, err := generator.Generate(opts)
		require.NoError(t, err)
		_, statErr := os.Stat(filepath.Join(dir, name))
		assert.True(t, os.IsNotExist(statErr), "generated name %q collides with an existing file", name)
	}
}

func TestGenerator_Generate_ExhaustionFails(t *testing.T) {
	generator := NewGenerator(zerolog.Nop())
	dir := t.TempDir()

	// Every possible single-digit candidate already exists
	for i := 0; i < 10; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, fmt.Sprintf("%d.txt", i)), nil, 0644))
	}

	opts := DefaultOptions()
	opts.Extension = "txt"
	opts.Length = 1
	opts.Charset = CharsetDigits
	opts.Directory = dir
	opts.MaxAttempts = 1

	_, err := generator.Generate(opts)
	require.Error(t, err)

	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, 1, genErr.Attempts)
}

func TestGenerator_Generate_ValidationErrors(t *testing.T) {
	generator := NewGenerator(zerolog.Nop())

	tests := []struct {
		name   string
		modify func(*Options)
	}{
		{"zero length", func(o *Options) { o.Length = 0 }},
		{"zero max attempts", func(o *Options) { o.MaxAttempts = 0 }},
		{"extension with slash", func(o *Options) { o.Extension = "md/extra" }},
		{"extension only dots", func(o *Options) { o.Extension = "..." }},
		{"unknown charset", func(o *Options) { o.Charset = "base64" }},
		{"missing directory", func(o *Options) { o.Directory = filepath.Join(os.TempDir(), "definitely-not-here-12345") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.modify(&opts)

			_, err := generator.Generate(opts)
			require.Error(t, err)

			var valErr *errorwrapper.ValidationError
			assert.True(t, errors.As(err, &valErr), "expected a validation error, got %v", err)
		})
	}
}

func TestGenerator_Generate_DirectoryIsFile(t *testing.T) {
	generator := NewGenerator(zerolog.Nop())
	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	opts := DefaultOptions()
	opts.Directory = file

	_, err := generator.Generate(opts)
	var valErr *errorwrapper.ValidationError
	require.ErrorAs(t, err, &valErr)
}

func TestGenerator_Generate_Charsets(t *testing.T) {
	generator := NewGenerator(zerolog.Nop())

	tests := []struct {
		charset Charset
		pattern string
	}{
		{CharsetAlphanumeric, `^[a-zA-Z0-9]{16}$`},
		{CharsetLetters, `^[a-zA-Z]{16}$`},
		{CharsetDigits, `^[0-9]{16}$`},
		{CharsetHex, `^[0-9a-f]{16}$`},
		{CharsetSafe, `^[a-zA-Z0-9_-]{16}$`},
	}

	for _, tt := range tests {
		t.Run(string(tt.charset), func(t *testing.T) {
			opts := DefaultOptions()
			opts.Length = 16
			opts.Charset = tt.charset

			name, err := generator.Generate(opts)
			require.NoError(t, err)
			assert.Regexp(t, regexp.MustCompile(tt.pattern), name)
		})
	}
}

func TestGenerator_GenerateMultiple(t *testing.T) {
	generator := NewGenerator(zerolog.Nop())

	opts := DefaultOptions()
	opts.Extension = "md"
	opts.Suffix = "post"

	names, err := generator.GenerateMultiple(3, opts)
	require.NoError(t, err)
	require.Len(t, names, 3)

	for i, name := range names {
		assert.True(t, strings.HasSuffix(name, fmt.Sprintf("_post_%d.md", i+1)), "unexpected name %q", name)
	}

	_, err = generator.GenerateMultiple(0, opts)
	assert.Error(t, err)
}

func TestGenerator_GenerateTemp(t *testing.T) {
	generator := NewGenerator(zerolog.Nop())

	name, err := generator.GenerateTemp(DefaultOptions())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(name, "tmp_"))
}

func TestIsValidFilename(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		valid    bool
	}{
		{"simple name", "post.md", true},
		{"empty", "", false},
		{"whitespace only", "   ", false},
		{"illegal character", "a<b.md", false},
		{"path separator", "a/b.md", false},
		{"reserved device name", "CON.md", false},
		{"reserved device name lowercase", "nul.txt", false},
		{"reserved device name with number", "COM7.log", false},
		{"reserved-looking but legal", "CONSOLE.md", true},
		{"trailing dot", "post.", false},
		{"trailing space", "post.md ", false},
		{"overlong", strings.Repeat("a", 256), false},
		{"max length", strings.Repeat("a", 255), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsValidFilename(tt.filename))
		})
	}
}
