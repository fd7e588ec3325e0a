// Package engine converts Dative form payloads into normalized documents.
//
// ARCHITECTURE:
//
// Converter holds the state of one job and advances it one stage per tick:
//
//	Original → Speaker → Elicitor → Enterer → Modifier → Verifier → Utility → Interlinear
//
// Each stage reads the record at the head of the pending queue and writes
// derived documents into the accumulated map, keyed by serialized
// identifier. Optional stages whose input is absent are reported as
// skipped. Interlinear pops the head; when the queue is empty the next tick
// emits the whole map as one bulk write.
//
// Engine wraps a Converter in a single-writer loop fed by a FIFO of inbound
// messages. Messages are handled one at a time and a job is drained before
// the next message is read. Outbound messages (bulk writes, info and error
// notes) are delivered to a Sink in emission order.
//
// Errors in a message never stop the engine. A payload that fails to
// decode is reported on the error channel and the state is left as it was.
// An invalid project or actor at start-up is replaced by a fallback.
package engine
