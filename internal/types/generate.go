// Package types holds the FlatBuffers encodings of claim files and
// accumulator snapshots.
package types

//go:generate flatc --go -o ../ claim.fbs
