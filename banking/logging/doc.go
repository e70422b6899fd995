// Package logging builds the library's zap loggers.
//
// Construction is environment-profiled (JSON encoding everywhere, debug
// verbosity for development/local) and returns a runtime-adjustable level
// handle. Log records are teed into the OpenTelemetry pipeline through the
// otelzap bridge.
package logging
