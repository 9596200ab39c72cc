// Package models holds the GORM row types backing the ledger tables.
// Domain aggregates stay free of ORM tags; each model here carries the
// column mappings and converts to and from its domain counterpart, so
// the repositories read and write models while the rest of the code
// only ever sees domain types.
//
// base.go has the shared identity/version columns; ledger.go has the
// order and credit-note rows with their JSONB payment histories.
package models
