// Package listener provides http serving helpers that eliminate an
// annoying race condition in net/http: with these functions the listening
// socket is fully established when the function returns, so it is safe to
// run an HTTP GET immediately.
package listener

import (
	"log"
	"net"
	"net/http"
	"strings"
	"time"
)

var logFatalf = log.Fatalf

// tcpKeepAliveListener sets TCP keep-alive timeouts on accepted
// connections, so dead TCP connections (e.g. a client losing power mid
// stream) eventually go away.
type tcpKeepAliveListener struct {
	*net.TCPListener
}

func (ln tcpKeepAliveListener) Accept() (net.Conn, error) {
	tc, err := ln.AcceptTCP()
	if err != nil {
		return nil, err
	}
	tc.SetKeepAlive(true)
	tc.SetKeepAlivePeriod(3 * time.Minute)
	return tc, nil
}

func serve(server *http.Server, listener net.Listener) {
	err := server.Serve(listener)
	if err != http.ErrServerClosed {
		logFatalf("Error, server %v closed with unexpected error %v", server, err)
	}
}

// ListenAndServeAsync starts an http server. The server will run until
// Shutdown() or Close() is called, but this function returns once the
// listening socket is established. If server.Addr ends with :0, it is
// updated with the selected port, which is very useful for unit tests.
//
// Returns a non-nil error if the listening socket can't be established.
// Logs a fatal error if the server dies for a reason besides
// ErrServerClosed.
func ListenAndServeAsync(server *http.Server) error {
	listener, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return err
	}
	if strings.HasSuffix(server.Addr, ":0") {
		server.Addr = listener.Addr().String()
	}
	go serve(server, tcpKeepAliveListener{listener.(*net.TCPListener)})
	return nil
}

func serveTLS(server *http.Server, listener net.Listener, certFile, keyFile string) {
	err := server.ServeTLS(listener, certFile, keyFile)
	if err != http.ErrServerClosed {
		logFatalf("Error, server %v closed with unexpected error %v", server, err)
	}
}

// ListenAndServeTLSAsync is ListenAndServeAsync for an https server. Unlike
// ListenAndServeAsync it does not rewrite a :0 server.Addr, because the
// resulting address may not be usable with TLS (e.g. "[::]:3232").
func ListenAndServeTLSAsync(server *http.Server, certFile, keyFile string) error {
	listener, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return err
	}
	go serveTLS(server, tcpKeepAliveListener{listener.(*net.TCPListener)}, certFile, keyFile)
	return nil
}
