// Package postgres implements the store interfaces from internal/store on
// PostgreSQL. It owns query construction, row scanning between database
// records and domain entities, and the mapping of driver errors onto the
// store package's sentinel errors.
package postgres
