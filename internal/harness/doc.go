// Package harness runs conversion scenarios against the engine.
//
// A scenario fixes the converter's start-up flags, feeds it a sequence of
// inbound messages and then checks the outbound messages and the stored
// documents.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: enterer_import
//	description: "An enterer becomes a person and a modification"
//	config:
//	  project: 6ba7b810-9dad-41d1-80b4-00c04fd430c8
//	  actor: importer@example.com
//	  time: 1622548800000
//	  seeds: [1, 2, 3, 4]
//	messages:
//	  - command: convert
//	    project: 6ba7b810-9dad-41d1-80b4-00c04fd430c8
//	    payload_file: forms/enterer.json
//	  - raw: '{"command": "convert", "payload": [}'
//	assertions:
//	  - type: document
//	    key: person/a.b%40example.com
//	    expect: { version: 1 }
//	  - type: message_order
//	    messages: ["Received Dative Forms", "Completed Processing"]
//	  - type: stored
//	    kind: person
//	    count: 1
//
// A message step either builds an envelope from command, project and
// payload (or payload_file, resolved against the scenario's directory), or
// hands raw text to the envelope decoder unchanged.
//
// # Assertion Types
//
//   - message: an outbound message with the given text (and command) exists
//   - message_order: messages appear in the given order, gaps allowed
//   - error_code: an error message carries the given code
//   - document: a bulk write holds the key, optionally matching expect
//   - no_document: no bulk write holds the key
//   - document_count: bulk writes hold count documents (of kind, if set)
//   - bulk_writes: exactly count bulk writes were emitted
//   - stored: the store holds count documents of kind for the project
//
// # Deterministic Output
//
// Every scenario runs with fixed flags and a fresh store in a temporary
// directory, so the outbound messages are byte-identical across runs and
// can be compared against golden files with RunWithGolden.
package harness
