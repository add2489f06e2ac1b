// Package database opens the controller's SQLite database and applies its
// embedded schema migrations.
//
// The database holds the persisted object records (see internal/storage). It
// is opened with a single connection: the command engine is the only writer
// and runs one command at a time.
//
// Usage:
//
//	db, err := database.Open(cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
//
// Migration files are named YYYYMMDD_HHMMSS_description.up.sql and are
// registered by importing the migrations package. Migrations are additive;
// there is no down path on the device.
package database
