package infinity

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/hugr-lab/infinity-go/translate"
)

// ClientConfig contains configuration for a Client.
type ClientConfig struct {
	// Transport sends select requests to the engine.
	// REQUIRED: MUST NOT be nil.
	Transport Transport

	// Operators maps parsed operators to engine function names.
	// OPTIONAL: Uses translate.DefaultOperators() if nil.
	Operators translate.OperatorTable

	// Parser parses filter and column text.
	// OPTIONAL: Uses the sqlexpr parser if nil.
	Parser translate.Parser

	// Allocator for Arrow records returned by ToRecord.
	// OPTIONAL: Uses memory.DefaultAllocator if nil.
	Allocator memory.Allocator

	// MaxColumnSize caps the decompressed size of one result column in bytes.
	// OPTIONAL: Uses result.DefaultMaxColumnSize if 0.
	MaxColumnSize uint64

	// Logger for internal logging.
	// OPTIONAL: Uses slog.Default() if nil.
	// If LogLevel is specified and Logger is nil, a text logger with that level is created.
	Logger *slog.Logger

	// LogLevel sets the logging level.
	// OPTIONAL: Ignored when Logger is provided.
	LogLevel *slog.Level
}

// Standard errors returned by the infinity package.
var (
	// ErrInvalidConfig indicates ClientConfig validation failed.
	ErrInvalidConfig = errors.New("invalid client config")

	// ErrInvalidQuery indicates a query that cannot be turned into a request.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrEngine indicates the engine answered with a non-zero error code.
	ErrEngine = errors.New("engine error")
)

// EngineError is the error reported by the engine in a response envelope.
type EngineError struct {
	Code    int
	Message string
}

func (e *EngineError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("infinity: %v: code %d", ErrEngine, e.Code)
	}
	return fmt.Sprintf("infinity: %v: code %d: %s", ErrEngine, e.Code, e.Message)
}

func (e *EngineError) Unwrap() error { return ErrEngine }

// validateConfig checks that required ClientConfig fields are valid.
func validateConfig(config ClientConfig) error {
	if config.Transport == nil {
		return fmt.Errorf("transport is required")
	}
	return nil
}
