//go:build integration

// Package testdb provides utilities for database integration tests.
//
// Tests obtain a connection with GetTestDBWithT, which skips the test when
// DATABASE_URL is not set and applies the embedded migrations once per test
// binary. Each test then runs inside WithTx, whose transaction is rolled back
// when the test function returns, so tests can run in parallel without
// cleaning up after themselves.
//
//	func TestSomething(t *testing.T) {
//	    db := testdb.GetTestDBWithT(t)
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        s := postgres.NewPostgresInspirationStore(tx, nil)
//	        // ...
//	    })
//	}
package testdb
