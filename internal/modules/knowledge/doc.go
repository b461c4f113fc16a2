// Package knowledge implements the pure parts of topic synthesis: turning raw
// generator output into a fixed schema, cross-linking known names inside the
// generated text, and deciding whether a cached article is still fresh.
//
// Nothing here performs I/O; the services layer feeds it data from the
// relational store and hands its results to the dual-store writer.
package knowledge
