package uiflow

import (
	"fmt"
	"runtime"
	"strings"

	apperrors "github.com/goliatone/go-errors"
)

// Recover runs fn and converts a panic into an error cloned from base. The
// cleaned stack is attached as metadata.
func Recover(base *apperrors.Error, name string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			stack := make([]byte, 8096)
			n := runtime.Stack(stack, false)
			err = NewError(base, fmt.Sprintf("recovered from panic in %s", name), panicCause(r), map[string]any{
				"panic": fmt.Sprint(r),
				"stack": string(cleanStackTrace(stack[:n])),
			})
		}
	}()
	return fn()
}

func panicCause(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("%v", r)
}

func cleanStackTrace(stack []byte) []byte {
	lines := strings.Split(string(stack), "\n")

	panicLineIndex := -1
	for i, line := range lines {
		if strings.Contains(line, "panic(") {
			panicLineIndex = i
			break
		}
	}

	// drop the panic() frame and its file reference
	if panicLineIndex >= 0 && panicLineIndex+2 < len(lines) {
		lines = lines[panicLineIndex+2:]
	}

	return []byte(strings.Join(lines, "\n"))
}
