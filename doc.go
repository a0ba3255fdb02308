// Package rumkit is a client-side Real-User-Monitoring agent. An
// application embeds it to record a hierarchical trace of user
// sessions — composed of actions, reported values, events, errors,
// crashes, and traced web requests — and to transmit these traces to a
// Dynatrace-compatible collector over HTTP.
//
// The object graph mirrors the conceptual hierarchy the collector expects:
//
//	OpenKit -> Session -> RootAction -> Action -> WebRequestTracer
//
// Every factory method on this graph returns a functioning null object
// instead of an error when given invalid input or called on an
// already-closed object: the agent never raises an error into the host
// application.
package rumkit
