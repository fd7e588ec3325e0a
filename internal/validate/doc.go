// Package validate checks the identifying inputs of a conversion job.
//
// ParseUUID accepts the textual UUID forms found in Dative exports and
// reports why a value is rejected. Email decides whether a job actor can be
// used as a person identifier.
package validate
