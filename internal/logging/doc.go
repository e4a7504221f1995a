// Package logging configures slog for filesearch.
//
// Without --debug, warnings and errors go to stderr as text. With --debug,
// every record is written as JSON to a size-rotated file under
// ~/.filesearch/logs/ and echoed to stderr.
package logging
