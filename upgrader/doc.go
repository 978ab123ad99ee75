/*
Copyright © 2026 Acronis International GmbH.

Released under MIT license.
*/

// Package upgrader applies versioned SQL scripts of a scripts repository to a database.
//
// Every versioned script is identified by the UUID from its version's definition.xml and is executed
// at most once: after a successful execution it is recorded in the changelog table, and on the next
// runs it is skipped. Scripts of the Common folder are not tracked and are executed on every run
// after all versioned scripts.
//
// There are no transactions spanning several scripts and no retries. The first failed statement
// aborts the run, and scripts that have already been executed stay applied.
//
// Basic usage:
//
//	db, err := dbupgrade.Open(cfg, true)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	u, err := upgrader.New(db, cfg.Dialect, logger, upgrader.WithContentTransform(csvimport.ScriptTransformFor(cfg.Dialect)))
//	if err != nil {
//	    return err
//	}
//	status, err := u.Run(ctx, "./Scripts", "", map[string]string{"${ENV}": "prod"})
package upgrader
