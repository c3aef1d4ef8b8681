// Package errors defines the typed application errors shared by the incident
// tools. Every error carries an ErrorType so callers can separate fatal I/O
// failures from the recoverable conditions the pipeline only logs.
package errors
