// Package db is the PostgreSQL access layer.
//
// This package is responsible for:
//   - A bounded connection pool with idle eviction and draining
//   - Executing parameterized statements with timing and logging
//   - Transactions through a unit-of-work callback
//   - Classifying driver failures into an ErrorKind
//   - The startup probe, health checks and shutdown
//   - Embedded schema migrations
//
// A DB is constructed once in main and injected into the repositories:
//
//	database, err := db.New(ctx, cfg.Database, registry, log)
//	if err != nil {
//	    return err
//	}
//	defer database.Shutdown(context.Background())
//
//	row, found, err := database.QueryOne(ctx, "SELECT * FROM products WHERE id = $1", id)
//
//	err = database.RunTransaction(ctx, func(ctx context.Context, tx *db.Tx) error {
//	    if _, err := tx.Execute(ctx, "UPDATE ..."); err != nil {
//	        return err
//	    }
//	    _, err := tx.Execute(ctx, "INSERT ...")
//	    return err
//	})
//
// Failures come back as *Error; use errors.Is with the Err* sentinels or
// KindOf to branch on them.
package db
