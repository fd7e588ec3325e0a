package ir

// Version constants for the document model and converter.
const (
	// DocumentVersion is the version stamped on every document the
	// converter emits.
	DocumentVersion = 1

	// ImportDocVersion is the docversion recorded on import modifications.
	ImportDocVersion = 0

	// ConverterVersion is the dativeconv release.
	ConverterVersion = "0.1.0"
)
