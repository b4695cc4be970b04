package uiflow

import (
	stderrors "errors"
	"strings"

	apperrors "github.com/goliatone/go-errors"
)

const (
	CodeSchemaValidation   = "SCHEMA_VALIDATION"
	CodeUnknownKind        = "UNKNOWN_KIND"
	CodePropertyParse      = "PROPERTY_PARSE"
	CodeActionParse        = "ACTION_PARSE"
	CodeVariableResolution = "VARIABLE_RESOLUTION"
	CodeNetwork            = "NETWORK"
	CodeHandlerNotFound    = "HANDLER_NOT_FOUND"
	CodeHandlerFailed      = "HANDLER_FAILED"
	CodeNavigation         = "NAVIGATION"
	CodeBuilderFailed      = "BUILDER_FAILED"
	CodeStateUpdate        = "STATE_UPDATE"
)

var (
	ErrSchemaValidation = apperrors.New("schema validation failed", apperrors.CategoryValidation).
				WithTextCode(CodeSchemaValidation)
	ErrUnknownKind = apperrors.New("unknown node kind", apperrors.CategoryBadInput).
			WithTextCode(CodeUnknownKind)
	ErrPropertyParse = apperrors.New("property parse failed", apperrors.CategoryValidation).
				WithTextCode(CodePropertyParse)
	ErrActionParse = apperrors.New("action parse failed", apperrors.CategoryBadInput).
			WithTextCode(CodeActionParse)
	ErrVariableResolution = apperrors.New("variable not found", apperrors.CategoryBadInput).
				WithTextCode(CodeVariableResolution)
	ErrNetwork = apperrors.New("network request failed", apperrors.CategoryExternal).
			WithTextCode(CodeNetwork)
	ErrHandlerNotFound = apperrors.New("handler not found", apperrors.CategoryBadInput).
				WithTextCode(CodeHandlerNotFound)
	ErrHandlerFailed = apperrors.New("handler failed", apperrors.CategoryHandler).
				WithTextCode(CodeHandlerFailed)
	ErrNavigation = apperrors.New("navigation failed", apperrors.CategoryExternal).
			WithTextCode(CodeNavigation)
	ErrBuilderFailed = apperrors.New("node builder failed", apperrors.CategoryHandler).
				WithTextCode(CodeBuilderFailed)
	ErrStateUpdate = apperrors.New("state update rejected", apperrors.CategoryConflict).
			WithTextCode(CodeStateUpdate)
)

// NewError clones base and overrides its message, source and metadata.
func NewError(base *apperrors.Error, message string, source error, metadata map[string]any) *apperrors.Error {
	if base == nil {
		base = ErrBuilderFailed
	}
	err := base.Clone()
	if text := strings.TrimSpace(message); text != "" {
		err.Message = text
	}
	if source != nil {
		err.Source = source
	}
	if len(metadata) > 0 {
		err = err.WithMetadata(metadata)
	}
	return err
}

// ErrorCode returns the text code of the first go-errors error in the chain.
func ErrorCode(err error) string {
	var ge *apperrors.Error
	if stderrors.As(err, &ge) {
		return ge.TextCode
	}
	return ""
}

// IsCode reports whether err carries the given text code.
func IsCode(err error, code string) bool {
	return err != nil && ErrorCode(err) == code
}

// ErrorMessage returns the go-errors message when available, otherwise err.Error().
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var ge *apperrors.Error
	if stderrors.As(err, &ge) && ge.Message != "" {
		if ge.Source != nil {
			return ge.Message + ": " + ge.Source.Error()
		}
		return ge.Message
	}
	return err.Error()
}

// ErrorMetadata returns the metadata of the first go-errors error in the chain.
func ErrorMetadata(err error) map[string]any {
	var ge *apperrors.Error
	if stderrors.As(err, &ge) {
		return ge.Metadata
	}
	return nil
}
