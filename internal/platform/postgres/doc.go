// Package postgres provides the PostgreSQL implementations of the store and
// queue interfaces: the inspiration and generated image stores, the leased
// work queue, and the embedded goose migrations that create their tables.
//
// All types accept a store.DBTX so they can run against a *sql.DB in
// production and a *sql.Tx in integration tests. Driver errors are
// translated to store sentinels by MapError.
package postgres
