package filewriter

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

// ErrorCode classifies why a save operation failed
type ErrorCode string

const (
	CodeInvalidPath           ErrorCode = "INVALID_PATH"
	CodeIsDirectory           ErrorCode = "IS_DIRECTORY"
	CodeAlreadyExists         ErrorCode = "ALREADY_EXISTS"
	CodeDirectoryCreateFailed ErrorCode = "DIRECTORY_CREATE_FAILED"
	CodeUnsupportedContent    ErrorCode = "UNSUPPORTED_CONTENT_TYPE"
	CodePermissionDenied      ErrorCode = "PERMISSION_DENIED"
	CodeEncodingError         ErrorCode = "ENCODING_ERROR"
	CodeIOError               ErrorCode = "IO_ERROR"
	CodeUnknown               ErrorCode = "UNKNOWN_ERROR"
)

// Result reports the outcome of a save operation. Exactly one of the two
// shapes occurs: Success true with empty Code/Message, or Success false
// with both set. Save never returns a Go error and never panics.
type Result struct {
	Success bool
	Code    ErrorCode
	Message string
}

func successResult() Result {
	return Result{Success: true}
}

func failureResult(code ErrorCode, format string, args ...any) Result {
	return Result{
		Success: false,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Options controls save behavior
type Options struct {
	// Encoding of text content; only UTF-8 variants are supported
	Encoding string
	// Create all missing ancestor directories before writing
	CreateParentDirs bool
	// Replace an existing file instead of failing with ALREADY_EXISTS
	Overwrite bool
	// When overwriting, first rename the existing file to path+".bak"
	BackupExisting bool
	// Permissions for the written file
	Permissions os.FileMode
}

// DefaultOptions returns the default save options
func DefaultOptions() Options {
	return Options{
		Encoding:         "utf-8",
		CreateParentDirs: true,
		Overwrite:        true,
		BackupExisting:   false,
		Permissions:      0644,
	}
}

// Writer performs file save operations with structured, non-raising results
type Writer struct {
	logger zerolog.Logger
}

// NewWriter creates a new Writer instance
func NewWriter(logger zerolog.Logger) *Writer {
	return &Writer{
		logger: logger.With().Str("component", "FileWriter").Logger(),
	}
}

// Save validates the target path and writes the content, reporting every
// outcome as a Result. Validation failures, permission problems and I/O
// errors all come back as distinct error codes; callers treat file I/O as
// recoverable and reportable rather than fatal.
func (w *Writer) Save(path string, content Content, opts Options) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = failureResult(CodeUnknown, "unexpected failure while saving '%s': %v", path, r)
			w.logger.Error().Str("path", path).Interface("panic", r).Msg("Recovered from unexpected save failure")
		}
	}()

	if strings.TrimSpace(path) == "" {
		return failureResult(CodeInvalidPath, "file path must not be empty")
	}

	info, statErr := os.Stat(path)
	exists := statErr == nil

	if exists && info.IsDir() {
		return failureResult(CodeIsDirectory, "path '%s' is a directory, cannot save a file there", path)
	}

	if exists {
		if !opts.Overwrite {
			return failureResult(CodeAlreadyExists, "file '%s' already exists and overwrite is disabled", path)
		}
		if opts.BackupExisting {
			w.backupExisting(path)
		}
	}

	if opts.CreateParentDirs {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return failureResult(CodeDirectoryCreateFailed, "failed to create parent directories for '%s': %v", path, err)
		}
	}

	data, encResult := w.encodeContent(path, content, opts)
	if !encResult.Success {
		return encResult
	}

	if err := os.WriteFile(path, data, opts.Permissions); err != nil {
		return w.classifyWriteError(path, err)
	}

	w.logger.Debug().Str("path", path).Int("bytes", len(data)).Msg("File written successfully")
	return successResult()
}

// backupExisting renames the current file to path+".bak". The backup step is
// best-effort: failure is a logged warning and the write still proceeds.
func (w *Writer) backupExisting(path string) {
	backupPath := path + ".bak"
	if err := os.Rename(path, backupPath); err != nil {
		w.logger.Warn().Err(err).Str("path", path).Str("backup_path", backupPath).Msg("Failed to create backup of existing file")
		return
	}
	w.logger.Debug().Str("backup_path", backupPath).Msg("Created backup of existing file")
}

// encodeContent turns the content union into the byte payload to write
func (w *Writer) encodeContent(path string, content Content, opts Options) ([]byte, Result) {
	switch c := content.(type) {
	case TextContent:
		if !isSupportedEncoding(opts.Encoding) {
			return nil, failureResult(CodeEncodingError, "unsupported encoding '%s' for '%s'", opts.Encoding, path)
		}
		if !utf8.ValidString(string(c)) {
			return nil, failureResult(CodeEncodingError, "text content for '%s' is not valid %s", path, opts.Encoding)
		}
		return []byte(c), successResult()
	case BinaryContent:
		// Binary mode, the encoding option is ignored
		return []byte(c), successResult()
	case nil:
		return nil, failureResult(CodeUnsupportedContent, "content must not be nil")
	default:
		return nil, failureResult(CodeUnsupportedContent, "unsupported content type %T", content)
	}
}

// isSupportedEncoding accepts the UTF-8 spellings; empty means the default
func isSupportedEncoding(encoding string) bool {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "utf-8", "utf8":
		return true
	default:
		return false
	}
}

// classifyWriteError maps a write failure to its error code
func (w *Writer) classifyWriteError(path string, err error) Result {
	switch {
	case errors.Is(err, fs.ErrPermission):
		return failureResult(CodePermissionDenied, "no permission to write '%s': %v", path, err)
	default:
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			return failureResult(CodeIOError, "I/O error writing '%s': %v", path, err)
		}
		return failureResult(CodeUnknown, "unknown error writing '%s': %v", path, err)
	}
}

// SaveWithRetry calls Save up to maxAttempts times, returning on the first
// success, otherwise a final aggregated failure naming the attempt count.
func (w *Writer) SaveWithRetry(path string, content Content, maxAttempts int, opts Options) Result {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var last Result
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		last = w.Save(path, content, opts)
		if last.Success {
			return last
		}
		w.logger.Warn().
			Str("path", path).
			Int("attempt", attempt).
			Int("max_attempts", maxAttempts).
			Str("error", last.Message).
			Msg("Save attempt failed")
	}

	return failureResult(last.Code, "failed to save '%s' after %d attempts: %s", path, maxAttempts, last.Message)
}

// SaveSilent discards the failure details and returns only the success flag
func (w *Writer) SaveSilent(path string, content Content, opts Options) bool {
	return w.Save(path, content, opts).Success
}
