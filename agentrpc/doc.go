// Package agentrpc implements the protocol client for the cowork engine
// subprocess. The engine speaks JSON-RPC 2.0 over newline-delimited JSON on
// stdin/stdout: the client sends request/response calls (session lifecycle,
// message sends, confirmation responses, budget queries) and the engine
// pushes notifications (token deltas, tool calls, tool results, confirmation
// requests, budget snapshots, errors) that the client decodes into typed
// events on a single channel.
//
// The wire format is an implementation detail of this package; consumers see
// only the typed call methods and the Events() feed.
package agentrpc
