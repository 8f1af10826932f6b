// Package logging wires structured logging for the qlog collector in a
// Docker friendly way.
package logging

import (
	golog "log"
	"net/http"
	"os"

	"github.com/apex/log"
	"github.com/apex/log/handlers/json"
	"github.com/gorilla/handlers"
)

// Logger logs messages on the standard error in a structured JSON format,
// to simplify processing. Emitting logs on the standard error is consistent
// with the standard practices when dockerising a server.
var Logger = log.Logger{
	Handler: json.New(os.Stderr),
	Level:   log.InfoLevel,
}

// SetDebug lowers the log level to debug. Used by the -debug flag.
func SetDebug() {
	Logger.Level = log.DebugLevel
}

// MakeAccessLogHandler wraps handler with another handler that logs access
// to each resource on the standard output. Access logs keep the established
// combined format rather than JSON, since every log pipeline already
// parses it.
func MakeAccessLogHandler(handler http.Handler) http.Handler {
	return handlers.CombinedLoggingHandler(golog.Writer(), handler)
}
