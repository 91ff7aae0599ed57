// Package observe provides structured logging, metrics, and tracing for
// the session layer, built on OpenTelemetry. Credential-bearing log
// fields are redacted before they reach any sink.
package observe
