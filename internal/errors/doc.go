// Package errors defines the structured error type shared by the library
// registry, the fetch collaborator, and the command layer.
//
// Every failure the core can produce carries an ErrorCode from a closed set.
// Callers branch on the code with errors.Is against the exported sentinels
// (ErrAlreadyInstalled, ErrNotInstalled, ...) or with CodeOf, and the command
// layer maps codes to process exit codes. The core never exits the process.
package errors
