// Package services holds the question answering pipeline: corpus processing,
// index builds, retrieval, grounded answers, the audit history and settings.
// Services depend only on driven ports; adapters are injected by the caller.
package services
