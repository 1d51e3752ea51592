// Package api handles the review engine's HTTP surface: routing targets,
// request validation, and the uniform response envelope. Handlers translate
// HTTP concerns into calls on the review services and map service errors to
// status codes without leaking internals to clients.
package api
