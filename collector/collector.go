// Package collector assembles the qlog collection service.
package collector

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/ansg191/quiche/collector/handler"
	"github.com/ansg191/quiche/collector/spec"
	"github.com/ansg191/quiche/logging"
)

// makeUpgrader returns the WebSocket upgrader for live streams.
func makeUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1 << 17,
		WriteBufferSize: 1 << 10,
		CheckOrigin: func(r *http.Request) bool {
			// Browser-based tracers post traces from arbitrary origins.
			return true
		},
	}
}

func defaultHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte(`
This is a qlog collector.

Stream live traces to ` + spec.LiveURLPath + ` (WebSocket, subprotocol "` +
		spec.SecWebSocketProtocol + `") or POST complete traces to ` +
		spec.UploadURLPath + `.
`))
}

// NewMux builds the intake mux for a collector with the given archive
// settings. Access logging wraps every endpoint.
func NewMux(datadir string, compress bool, version string) *http.ServeMux {
	h := handler.Handler{
		Upgrader: makeUpgrader(),
		DataDir:  datadir,
		Compress: compress,
		Version:  version,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/", defaultHandler)
	mux.Handle(spec.LiveURLPath, logging.MakeAccessLogHandler(http.HandlerFunc(h.Live)))
	mux.Handle(spec.UploadURLPath, logging.MakeAccessLogHandler(http.HandlerFunc(h.Upload)))
	return mux
}
