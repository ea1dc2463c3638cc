/*
Package observability exposes Prometheus collectors for the conversation engine.

Every counter is registered on a dedicated registry so that several bots (or tests)
in one process do not collide. A nil *Metrics is valid and records nothing.
*/
package observability
