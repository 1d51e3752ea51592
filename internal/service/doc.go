// Package service contains the application-specific use cases and business
// logic. It orchestrates interactions between domain objects and the stores
// (defined in internal/store) to fulfill application features.
//
// Each subpackage focuses on one domain area; internal/service/review holds
// the spaced-repetition review workflow: due-item selection, session
// lifecycle, and session statistics. Services receive their dependencies
// through constructor injection and apply transactional boundaries when an
// operation spans multiple stores.
package service
