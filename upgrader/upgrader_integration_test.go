//go:build integration

/*
Copyright © 2026 Acronis International GmbH.

Released under MIT license.
*/

package upgrader

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/acronis/go-dbupgrade"
	intTesting "github.com/acronis/go-dbupgrade/internal/testing"
	"github.com/acronis/go-dbupgrade/repository"
)

func TestUpgrader_Integration(t *testing.T) {
	for _, d := range []dbupgrade.Dialect{dbupgrade.DialectMySQL, dbupgrade.DialectPostgres} {
		t.Run(string(d), func(t *testing.T) {
			ctx := context.Background()
			db, stop := intTesting.MustRunAndOpenTestDB(ctx, d)
			defer func() { require.NoError(t, stop(ctx)) }()

			root := t.TempDir()
			writeVersion(t, root, "V1.0.0", testScript{idA, "schema.sql",
				"CREATE TABLE t1 (id INT);\nCREATE TABLE audit (msg VARCHAR(50));"})
			writeVersion(t, root, "V1.1.0", testScript{idB, "data.sql", "INSERT INTO t1 (id) VALUES (1);"})
			writeFile(t, filepath.Join(root, repository.CommonFolderName, "views.sql"),
				"CREATE OR REPLACE VIEW v_t1 AS SELECT id FROM t1;\nINSERT INTO audit (msg) VALUES ('common');")

			u, err := New(db, d, newLogger(t))
			require.NoError(t, err)

			for i := 0; i < 2; i++ {
				status, err := u.Run(ctx, root, "", nil)
				require.NoError(t, err)
				require.Equal(t, StatusSuccess, status)
			}

			require.Equal(t, 1, countRows(t, db, "t1"))
			require.Equal(t, 2, countRows(t, db, "audit"))
		})
	}
}
