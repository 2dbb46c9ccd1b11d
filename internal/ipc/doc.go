// Package ipc exposes the running daemon over JSON-RPC Unix sockets and
// ships the matching client used by the CLI.
//
// It owns socket lifecycle management and the request/response DTOs. The
// server hands enqueue requests to the workflow manager while the daemon
// worker drains them, so `karaoke add` and `karaoke queue` work against a
// live daemon without a second process touching the library.
package ipc
