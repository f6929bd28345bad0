// Package repo contains PostgreSQL implementations of repository interfaces.
//
// This package implements the ports defined in src/core/ports on top of the
// pooled executor in src/infra/db. Rows come back as column maps and are
// decoded into domain types with mapstructure; database error kinds are
// translated into domain errors here so the core never sees db.Error.
package repo
