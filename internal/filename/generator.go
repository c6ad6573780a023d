package filename

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aleister1102/postforge/internal/errorwrapper"
)

// Charset selects the alphabet for the random part of a filename
type Charset string

const (
	CharsetAlphanumeric Charset = "alphanumeric"
	CharsetLetters      Charset = "letters"
	CharsetDigits       Charset = "digits"
	CharsetHex          Charset = "hex"
	CharsetSafe         Charset = "safe"
)

const (
	lettersAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digitsAlphabet  = "0123456789"
)

var charsetAlphabets = map[Charset]string{
	CharsetAlphanumeric: lettersAlphabet + digitsAlphabet,
	CharsetLetters:      lettersAlphabet,
	CharsetDigits:       digitsAlphabet,
	CharsetSafe:         lettersAlphabet + digitsAlphabet + "_-",
}

// ParseCharset parses a charset name, defaulting to alphanumeric when empty
func ParseCharset(name string) (Charset, error) {
	switch Charset(strings.ToLower(name)) {
	case "":
		return CharsetAlphanumeric, nil
	case CharsetAlphanumeric:
		return CharsetAlphanumeric, nil
	case CharsetLetters:
		return CharsetLetters, nil
	case CharsetDigits:
		return CharsetDigits, nil
	case CharsetHex:
		return CharsetHex, nil
	case CharsetSafe:
		return CharsetSafe, nil
	default:
		return "", errorwrapper.NewValidationError("charset", name, "must be one of alphanumeric, letters, digits, hex, safe")
	}
}

// Options controls filename generation
type Options struct {
	// Extension without the leading dot; empty means no extension
	Extension string
	// Length of the random part
	Length int
	// Prefix and Suffix are joined around the random part with underscores
	Prefix string
	Suffix string
	// Directory, when set, is probed so the result never collides with an
	// existing file there. It must exist and be a directory.
	Directory string
	// MaxAttempts bounds the probing loop
	MaxAttempts int
	Charset     Charset
	// Timestamp inserts the current unix time between prefix and random part
	Timestamp bool
}

// DefaultOptions returns the default generation options
func DefaultOptions() Options {
	return Options{
		Length:      12,
		MaxAttempts: 10,
		Charset:     CharsetAlphanumeric,
	}
}

// GenerationError reports that no legal, unique filename could be produced
// within the attempt budget
type GenerationError struct {
	Attempts int
	Cause    error
}

func (e *GenerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to generate filename: %v", e.Cause)
	}
	return fmt.Sprintf("could not generate a unique filename within %d attempts", e.Attempts)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// Generator produces random, filesystem-legal filenames
type Generator struct {
	logger  zerolog.Logger
	now     func() time.Time
	randInt func(n int) int
}

// NewGenerator creates a new Generator instance
func NewGenerator(logger zerolog.Logger) *Generator {
	return &Generator{
		logger:  logger.With().Str("component", "FilenameGenerator").Logger(),
		now:     time.Now,
		randInt: rand.Intn,
	}
}

// Generate produces a random filename that is legal on common filesystems
// and, when a directory is given, does not collide with an existing file
// there. Exhausting the attempt budget fails with a GenerationError.
func (g *Generator) Generate(opts Options) (string, error) {
	extension, err := g.validateOptions(&opts)
	if err != nil {
		return "", err
	}

	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		candidate := g.assemble(opts, extension)

		if !IsValidFilename(candidate) {
			g.logger.Debug().Str("candidate", candidate).Int("attempt", attempt).Msg("Rejected illegal filename candidate")
			continue
		}

		if opts.Directory != "" {
			if _, err := os.Stat(filepath.Join(opts.Directory, candidate)); err == nil {
				g.logger.Debug().Str("candidate", candidate).Int("attempt", attempt).Msg("Rejected colliding filename candidate")
				continue
			}
		}

		return candidate, nil
	}

	return "", &GenerationError{Attempts: opts.MaxAttempts}
}

// validateOptions checks the options and returns the cleaned extension
func (g *Generator) validateOptions(opts *Options) (string, error) {
	if opts.Length <= 0 {
		return "", errorwrapper.NewValidationError("length", opts.Length, "must be a positive integer")
	}
	if opts.MaxAttempts <= 0 {
		return "", errorwrapper.NewValidationError("max_attempts", opts.MaxAttempts, "must be a positive integer")
	}
	if opts.Charset == "" {
		opts.Charset = CharsetAlphanumeric
	}
	if _, err := ParseCharset(string(opts.Charset)); err != nil {
		return "", err
	}

	extension := opts.Extension
	if extension != "" {
		extension = strings.TrimLeft(strings.TrimSpace(extension), ".")
		if extension == "" {
			return "", errorwrapper.NewValidationError("extension", opts.Extension, "must not be empty after trimming dots")
		}
		if strings.ContainsAny(extension, illegalFilenameChars) {
			return "", errorwrapper.NewValidationError("extension", extension, "contains illegal characters")
		}
	}

	if opts.Directory != "" {
		info, err := os.Stat(opts.Directory)
		if os.IsNotExist(err) {
			return "", errorwrapper.NewValidationError("directory", opts.Directory, "does not exist")
		}
		if err != nil {
			return "", errorwrapper.WrapError(err, "failed to stat target directory")
		}
		if !info.IsDir() {
			return "", errorwrapper.NewValidationError("directory", opts.Directory, "is not a directory")
		}
	}

	return extension, nil
}

// assemble builds one candidate filename from the options
func (g *Generator) assemble(opts Options, extension string) string {
	var parts []string

	if opts.Prefix != "" {
		parts = append(parts, opts.Prefix)
	}
	if opts.Timestamp {
		parts = append(parts, strconv.FormatInt(g.now().Unix(), 10))
	}
	parts = append(parts, g.randomPart(opts.Charset, opts.Length))
	if opts.Suffix != "" {
		parts = append(parts, opts.Suffix)
	}

	name := strings.Join(parts, "_")
	if extension != "" {
		name = name + "." + extension
	}
	return name
}

// randomPart produces the random segment. The hex charset draws from a
// UUID rather than uniform sampling so it carries full generator entropy.
func (g *Generator) randomPart(charset Charset, length int) string {
	if charset == CharsetHex {
		var hex strings.Builder
		for hex.Len() < length {
			hex.WriteString(strings.ReplaceAll(uuid.NewString(), "-", ""))
		}
		return hex.String()[:length]
	}

	alphabet := charsetAlphabets[charset]
	part := make([]byte, length)
	for i := range part {
		part[i] = alphabet[g.randInt(len(alphabet))]
	}
	return string(part)
}

// GenerateMultiple produces count filenames, appending a 1-based sequence
// number to each suffix so the results are distinct regardless of the
// random part. Any single failure aborts the whole batch.
func (g *Generator) GenerateMultiple(count int, opts Options) ([]string, error) {
	if count <= 0 {
		return nil, errorwrapper.NewValidationError("count", count, "must be a positive integer")
	}

	names := make([]string, 0, count)
	for i := 1; i <= count; i++ {
		seqOpts := opts
		if opts.Suffix != "" {
			seqOpts.Suffix = fmt.Sprintf("%s_%d", opts.Suffix, i)
		} else {
			seqOpts.Suffix = strconv.Itoa(i)
		}

		name, err := g.Generate(seqOpts)
		if err != nil {
			return nil, errorwrapper.WrapError(err, fmt.Sprintf("failed to generate filename %d of %d", i, count))
		}
		names = append(names, name)
	}

	return names, nil
}

// GenerateTemp produces a filename for the system temp directory with a
// tmp prefix and timestamp enabled
func (g *Generator) GenerateTemp(opts Options) (string, error) {
	if opts.Directory == "" {
		opts.Directory = os.TempDir()
	}
	if opts.Prefix == "" {
		opts.Prefix = "tmp"
	}
	opts.Timestamp = true

	return g.Generate(opts)
}
