// Package service implements the procurement operations exposed by the
// service binary.
//
// Each operation loads a procurement from the store, applies one domain
// change, and persists the result in the same transaction. Errors are
// classified with [KindOf] so that transports can map them to their own
// status codes without inspecting domain sentinels.
package service
