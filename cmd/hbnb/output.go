package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matsen/hbnb/internal/codec"
	"github.com/matsen/hbnb/internal/console"
	"github.com/matsen/hbnb/internal/model"
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputHuman writes a human-readable string to stdout.
func outputHuman(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// exitWithConsoleError reports an error from a console operation with the
// matching exit code.
func exitWithConsoleError(err error) {
	exitWithError(exitCodeFor(err), "%s", err)
}

// exitCodeFor maps console errors to exit codes.
func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case console.IsNotFound(err):
		return ExitNotFound
	case console.IsUsage(err):
		return ExitError
	default:
		return ExitDataError
	}
}

// printLoadWarnings writes one warning line per snapshot load problem.
func printLoadWarnings(w io.Writer, problems []string) {
	for _, p := range problems {
		fmt.Fprintf(w, "Warning: %s\n", p)
	}
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Key    string `json:"key,omitempty"`
	Path   string `json:"path,omitempty"`
}

// CreateResponse is the response for the create command.
type CreateResponse struct {
	ID    string `json:"id"`
	Class string `json:"class"`
	Key   string `json:"key"`
}

// CountResponse is the response for the count command.
type CountResponse struct {
	Class string `json:"class"`
	Count int    `json:"count"`
}

// entityJSON returns the persisted form of e for JSON output.
func entityJSON(e *model.Entity) map[string]any {
	return codec.Encode(e)
}

// entitiesJSON returns the persisted form of each entity.
func entitiesJSON(entities []*model.Entity) []map[string]any {
	out := make([]map[string]any, len(entities))
	for i, e := range entities {
		out[i] = entityJSON(e)
	}
	return out
}
