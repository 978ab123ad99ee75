/*
Copyright © 2026 Acronis International GmbH.

Released under MIT license.
*/

// Command dbupgrade applies versioned SQL scripts to MSSQL, MySQL, Firebird, PostgreSQL and SQLite databases.
//
// Usage:
//
//	dbupgrade [--config dbupgrade.yaml] [--scriptsFolderPath ./Scripts] [--fromVersion V1.1.0] [--placeholders "k1=v1;k2=v2"]
//	dbupgrade generate [outputFolder]
//
// Exit codes:
//
//	0    success
//	160  error
//	270  scripts folder does not exist
//	490  unknown database
//	520  version folder does not exist
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return exitCodeOf(err)
	}
	return exitCodeSuccess
}
