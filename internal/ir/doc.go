// Package ir defines the normalized document model produced by the converter.
//
// It holds the document identifiers (root and derived), the seven document
// variants written to the store, and the canonical JSON used for batch
// digests. ir imports nothing internal; every other package builds on it.
//
// # Identifiers
//
// A document's storage key is a slash-delimited, percent-encoded path built
// from its identifier. The layout of each variant is a compatibility contract
// with documents already in the store:
//
//	person/<email>
//	interlinear/<uuid>
//	<root>/tag/<kind>
//	<root>/property/<kind>/<value>
//	<root>/description/<kind>[#fragment]
//	<root>/modification/<kind>/<epoch-ms>/<person>[#fragment]
//	utility/<kind>/<root>[#fragment]
//
// Root segments inside derived identifiers are encoded a second time, so an
// "@" in a person root appears as "%2540" in a property path.
package ir
