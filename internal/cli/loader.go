package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/hubstream/internal/compiler"
	"github.com/roach88/hubstream/internal/ir"
)

// LoadMode controls how errors are handled during stream loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadResult contains the streams loaded from a directory.
type LoadResult struct {
	Streams   []ir.StreamSpec
	FileCount int // Number of CUE files found
}

// Lookup returns the stream with the given name.
func (r *LoadResult) Lookup(name string) (ir.StreamSpec, bool) {
	for _, s := range r.Streams {
		if s.Name == name {
			return s, true
		}
	}
	return ir.StreamSpec{}, false
}

// LoadError represents an error that occurred during stream loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadStreams loads, compiles and validates the stream definitions in dir.
// If mode is LoadModeFailFast, returns on first validation error.
// If mode is LoadModeCollectAll, collects all validation errors.
//
// A nil result means nothing could be compiled; a non-nil result with
// errors holds streams that failed validation.
func LoadStreams(dir string, mode LoadMode) (*LoadResult, []error) {
	// Verify directory exists
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("streams directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing streams directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(cueFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}}
	}

	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{convertCompileError(err, ErrCodeBuildFailed)}
	}

	streams, err := compiler.CompileStreams(value)
	if err != nil {
		return nil, []error{convertCompileError(err, ErrCodeSchema)}
	}

	result := &LoadResult{
		Streams:   streams,
		FileCount: len(cueFiles),
	}
	if len(streams) == 0 {
		return result, []error{&LoadError{Code: ErrCodeNoStreams, Message: "no streams defined"}}
	}

	var errs []error
	for _, verr := range compiler.Validate(streams) {
		errs = append(errs, verr)
		if mode == LoadModeFailFast {
			break
		}
	}
	return result, errs
}

// FindCUEFiles returns the .cue files directly inside dir. CUE loads one
// package per directory, so subdirectories are not searched.
func FindCUEFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".cue" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files, nil
}

// convertCompileError converts a compiler error to a LoadError with
// position info. fallback is used when the error carries no field.
func convertCompileError(err error, fallback string) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		code := MapFieldToErrorCode(compileErr.Field)
		if code == ErrCodeGeneric {
			code = fallback
		}
		return &LoadError{
			Code:    code,
			Message: compileErr.Message,
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{Code: fallback, Message: err.Error()}
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeWriteFailed = "E007" // Store write failed
	ErrCodeDatabase    = "E008" // Store open or query failed
	ErrCodeBadInput    = "E009" // Unreadable import file
	ErrCodeNoIssue     = "E010" // Issue not in the store

	// Stream definition errors; validation codes E2xx come from the compiler.
	ErrCodeSchema         = "E101" // Stream file does not match the schema
	ErrCodeNoStreams      = "E102" // No streams defined
	ErrCodeStreamQueries  = "E103" // Stream has no usable queries
	ErrCodeStreamNotFound = "E104" // Named stream does not exist
)

// MapFieldToErrorCode maps a compiler error field to an error code.
func MapFieldToErrorCode(field string) string {
	switch field {
	case "cue":
		return ErrCodeSchema
	case "queries", "filter", "color":
		return ErrCodeStreamQueries
	default:
		return ErrCodeGeneric
	}
}

// errorCode extracts the error code and message from a load error.
func errorCode(err error) (string, string) {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, loadErr.Message
	}
	var verr compiler.ValidationError
	if errors.As(err, &verr) {
		return verr.Code, fmt.Sprintf("%s.%s: %s", verr.Stream, verr.Field, verr.Message)
	}
	return ErrCodeGeneric, err.Error()
}
