package singleinstance

// This file defines the API for single-instance ownership and trigger delegation.

import (
	"context"
)

// TriggerKind names one of the two session triggers a client may request.
type TriggerKind string

const (
	TriggerCapture  TriggerKind = "capture"
	TriggerFinalize TriggerKind = "finalize"
)

// Request represents a single delegated trigger request.
type Request struct {
	Kind TriggerKind
}

// Server owns the TCP endpoint and answers trigger requests from later
// invocations of the binary.
type Server interface {
	// Start binds the configured port and begins accepting client requests.
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
	// RespondSuccess acknowledges the trigger, optionally with detail text.
	RespondSuccess(text string) error
	// RespondError sends an error with human-readable message.
	RespondError(msg string) error
	// Close closes the underlying connection.
	Close() error
}

// Client attempts to delegate a trigger to a resident instance.
type Client interface {
	// TryTrigger scans the configured TCP range, performs the PING handshake,
	// and forwards the trigger to a resident instance.
	// If no resident is found, returns delegated=false, err=nil.
	TryTrigger(ctx context.Context, kind TriggerKind) (delegated bool, reply string, err error)
}

// NewServer returns TCP implementation.
func NewServer() Server { return newTcpServer() }

// NewClient returns TCP implementation.
func NewClient() Client { return newTcpClient() }
