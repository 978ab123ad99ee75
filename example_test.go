package dbupgrade_test

import (
	"log"
	"os"

	"github.com/acronis/go-dbupgrade"
)

func Example() {
	// Configure the target database using the dbupgrade.Config struct.
	// In this example, we're using MSSQL. Adjust Dialect and config fields for your target DB.
	cfg := dbupgrade.NewDefaultConfig(nil)
	cfg.Dialect = dbupgrade.DialectMSSQL
	cfg.MSSQL = dbupgrade.MSSQLConfig{
		Host:     os.Getenv("MSSQL_HOST"),
		Port:     1433,
		User:     os.Getenv("MSSQL_USER"),
		Password: os.Getenv("MSSQL_PASSWORD"),
		Database: os.Getenv("MSSQL_DATABASE"),
	}

	// Open the database connection.
	// The 2nd parameter is a boolean that indicates whether to ping the database.
	// Ping is disabled here to keep the example runnable without a server.
	db, err := dbupgrade.Open(cfg, false)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Output:
}
