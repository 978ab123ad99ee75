/*
Copyright © 2026 Acronis International GmbH.

Released under MIT license.
*/

package upgrader

import (
	"bytes"
	"testing"
	"time"

	"github.com/acronis/go-appkit/config"
	"github.com/stretchr/testify/require"
)

func TestConfig(t *testing.T) {
	tests := []struct {
		name       string
		cfgData    string
		wantCfg    *Config
		wantOpts   int
		wantErrMsg string
	}{
		{
			name:    "defaults",
			cfgData: "other: 1",
			wantCfg: &Config{
				ScriptsFolderPath: DefaultScriptsFolderPath,
				TableName:         "DBChangeLog",
			},
			wantOpts: 1,
		},
		{
			name: "all parameters",
			cfgData: `
upgrade:
  scriptsFolderPath: /opt/app/Scripts
  fromVersion: V2.0.0
  placeholders: "${ENV}=prod;${OWNER}=dbo"
  tableName: AppChangeLog
  commandTimeout: 5m
  slowStatementThreshold: 2s
`,
			wantCfg: &Config{
				ScriptsFolderPath:      "/opt/app/Scripts",
				FromVersion:            "V2.0.0",
				Placeholders:           "${ENV}=prod;${OWNER}=dbo",
				TableName:              "AppChangeLog",
				CommandTimeout:         config.TimeDuration(5 * time.Minute),
				SlowStatementThreshold: config.TimeDuration(2 * time.Second),
			},
			wantOpts: 3,
		},
		{
			name: "invalid table name",
			cfgData: `
upgrade:
  tableName: "bad name"
`,
			wantErrMsg: "upgrade.tableName",
		},
		{
			name: "malformed placeholders",
			cfgData: `
upgrade:
  placeholders: "novalue"
`,
			wantErrMsg: "upgrade.placeholders",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			err := config.NewDefaultLoader("").LoadFromReader(bytes.NewBufferString(tt.cfgData), config.DataTypeYAML, cfg)
			if tt.wantErrMsg != "" {
				require.ErrorContains(t, err, tt.wantErrMsg)
				return
			}
			require.NoError(t, err)
			tt.wantCfg.keyPrefix = cfgDefaultKeyPrefix
			require.Equal(t, tt.wantCfg, cfg)
			require.Len(t, cfg.Options(), tt.wantOpts)
		})
	}
}

func TestConfig_PlaceholderMap(t *testing.T) {
	cfg := &Config{Placeholders: "${ENV}=prod;${OWNER}=dbo;"}
	m, err := cfg.PlaceholderMap()
	require.NoError(t, err)
	require.Equal(t, map[string]string{"${ENV}": "prod", "${OWNER}": "dbo"}, m)
}
