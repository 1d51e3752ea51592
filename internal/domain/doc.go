// Package domain contains the core entities of the review engine: atoms
// (the reviewable units extracted from notes), review sessions, review
// responses, and their validation rules. It is independent of any storage
// or delivery mechanism; the scheduling algorithm itself lives in the
// srs subpackage.
package domain
