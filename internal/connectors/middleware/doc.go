// Package middleware decorates capability adapters with the resilience
// chain every provider call passes through.
//
// The layers run in a fixed order, outermost first:
//
//	logging -> error boundary -> rate limiter -> retry -> adapter
//
// Fetch and search failures come back as an empty list together with a
// *domain.ProviderError, so a single failing provider never aborts an
// aggregate query. Capability misuse is the exception: it is a programming
// error and surfaces unchanged.
package middleware
