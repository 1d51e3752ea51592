// Package store defines the persistence interfaces for atoms, review
// sessions, and review responses, along with the sentinel errors their
// implementations return. Keeping the interfaces here lets the review
// services stay independent of the Postgres implementations in
// internal/platform/postgres.
package store
