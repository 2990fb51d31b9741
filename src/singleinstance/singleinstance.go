package singleinstance

// This file defines the API for single-instance ownership and capture delegation.

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"
)

// ErrCancelled is returned by a delegating client when the user cancelled
// the capture in the resident instance.
var ErrCancelled = errors.New("capture cancelled in resident instance")

// Server owns the TCP endpoint and answers capture requests.
type Server interface {
	// Start begins listening on the first port of the configured range and accepting client requests.
	Start(ctx context.Context) error
	// Port returns the bound TCP port, or 0 if not started.
	Port() int
	// Next returns the next accepted connection as a Conn, or ctx error.
	Next(ctx context.Context) (Conn, error)
	// Close releases ownership and stops accepting clients.
	Close() error
}

// Conn represents one client connection and exposes request + response API.
type Conn interface {
	// Request returns the parsed client request.
	Request() Request
	// RespondSuccess sends success with the saved file path, empty when no file was written.
	RespondSuccess(path string) error
	// RespondError sends an error with human-readable message.
	RespondError(msg string) error
	// RespondCancelled tells the client the user dismissed the overlay.
	RespondCancelled() error
	// Close closes the underlying connection.
	Close() error
}

// Request is one delegated capture.
type Request struct {
	// Dir overrides the output directory when non-empty.
	Dir             string
	SaveToFile      bool
	CopyToClipboard bool
}

// Encode renders the request line without the CAPTURE verb.
func (r Request) Encode() string {
	v := url.Values{}
	v.Set("file", strconv.FormatBool(r.SaveToFile))
	v.Set("clipboard", strconv.FormatBool(r.CopyToClipboard))
	if r.Dir != "" {
		v.Set("dir", r.Dir)
	}
	return v.Encode()
}

// ParseRequest parses a request line as produced by Encode. Missing flags
// default to true.
func ParseRequest(s string) (Request, error) {
	v, err := url.ParseQuery(strings.TrimSpace(s))
	if err != nil {
		return Request{}, err
	}
	flag := func(name string) (bool, error) {
		raw := v.Get(name)
		if raw == "" {
			return true, nil
		}
		return strconv.ParseBool(raw)
	}
	req := Request{Dir: v.Get("dir")}
	if req.SaveToFile, err = flag("file"); err != nil {
		return Request{}, err
	}
	if req.CopyToClipboard, err = flag("clipboard"); err != nil {
		return Request{}, err
	}
	return req, nil
}

// Client attempts to delegate a capture to a resident server.
type Client interface {
	// TryCapture scans the TCP range, performs handshake, and delegates to resident.
	// If no resident is found, returns delegated=false, err=nil.
	TryCapture(ctx context.Context, req Request) (delegated bool, path string, err error)
}

// NewServer returns TCP implementation.
func NewServer() Server { return newTcpServer() }

// NewClient returns TCP implementation.
func NewClient() Client { return newTcpClient() }
