// Package schema describes the data the converter reads and writes.
//
// Dative exports are linted against an embedded CUE schema (export.cue)
// before conversion, which reports every problem in an export instead of
// stopping at the first record that fails to decode. Inbound and outbound
// messages are described by JSON Schema reflected from their Go types.
package schema
