/*
Copyright © 2026 Acronis International GmbH.

Released under MIT license.
*/

package dbupgrade

import (
	"fmt"
	"time"

	"github.com/acronis/go-appkit/config"
)

const cfgDefaultKeyPrefix = "db"

const (
	cfgKeyDialect         = "dialect"
	cfgKeyDSN             = "dsn"
	cfgKeyMaxIdleConns    = "maxIdleConns"
	cfgKeyMaxOpenConns    = "maxOpenConns"
	cfgKeyConnMaxLifetime = "connMaxLifeTime"

	cfgKeyMySQLHost     = "mysql.host"
	cfgKeyMySQLPort     = "mysql.port"
	cfgKeyMySQLDatabase = "mysql.database"
	cfgKeyMySQLUser     = "mysql.user"
	cfgKeyMySQLPassword = "mysql.password" //nolint: gosec

	cfgKeyMSSQLHost             = "mssql.host"
	cfgKeyMSSQLPort             = "mssql.port"
	cfgKeyMSSQLDatabase         = "mssql.database"
	cfgKeyMSSQLUser             = "mssql.user"
	cfgKeyMSSQLPassword         = "mssql.password" //nolint: gosec
	cfgKeyMSSQLAdditionalParams = "mssql.additionalParameters"

	cfgKeyFirebirdHost             = "firebird.host"
	cfgKeyFirebirdPort             = "firebird.port"
	cfgKeyFirebirdDatabase         = "firebird.database"
	cfgKeyFirebirdUser             = "firebird.user"
	cfgKeyFirebirdPassword         = "firebird.password" //nolint: gosec
	cfgKeyFirebirdAdditionalParams = "firebird.additionalParameters"

	cfgKeySQLitePath = "sqlite3.path"

	cfgKeyPostgresHost             = "postgres.host"
	cfgKeyPostgresPort             = "postgres.port"
	cfgKeyPostgresDatabase         = "postgres.database"
	cfgKeyPostgresUser             = "postgres.user"
	cfgKeyPostgresPassword         = "postgres.password" //nolint: gosec
	cfgKeyPostgresSSLMode          = "postgres.sslMode"
	cfgKeyPostgresSearchPath       = "postgres.searchPath"
	cfgKeyPostgresAdditionalParams = "postgres.additionalParameters"
)

// Config represents a set of configuration parameters for connecting to the target database.
type Config struct {
	Dialect Dialect `mapstructure:"dialect" yaml:"dialect" json:"dialect"`
	// DSN is a raw connection string. When it's set, dialect-specific connection parameters are ignored.
	DSN             string              `mapstructure:"dsn" yaml:"dsn" json:"dsn"`
	MaxOpenConns    int                 `mapstructure:"maxOpenConns" yaml:"maxOpenConns" json:"maxOpenConns"`
	MaxIdleConns    int                 `mapstructure:"maxIdleConns" yaml:"maxIdleConns" json:"maxIdleConns"`
	ConnMaxLifetime config.TimeDuration `mapstructure:"connMaxLifeTime" yaml:"connMaxLifeTime" json:"connMaxLifeTime"`
	MySQL           MySQLConfig         `mapstructure:"mysql" yaml:"mysql" json:"mysql"`
	MSSQL           MSSQLConfig         `mapstructure:"mssql" yaml:"mssql" json:"mssql"`
	Firebird        FirebirdConfig      `mapstructure:"firebird" yaml:"firebird" json:"firebird"`
	SQLite          SQLiteConfig        `mapstructure:"sqlite3" yaml:"sqlite3" json:"sqlite3"`
	Postgres        PostgresConfig      `mapstructure:"postgres" yaml:"postgres" json:"postgres"`

	keyPrefix         string
	supportedDialects []Dialect
}

var _ config.Config = (*Config)(nil)
var _ config.KeyPrefixProvider = (*Config)(nil)

// ConfigOption is a type for functional options for the Config.
type ConfigOption func(*configOptions)

type configOptions struct {
	keyPrefix string
}

// WithKeyPrefix returns a ConfigOption that sets a key prefix for parsing configuration parameters.
// This prefix will be used by config.Loader.
func WithKeyPrefix(keyPrefix string) ConfigOption {
	return func(o *configOptions) {
		o.keyPrefix = keyPrefix
	}
}

// NewConfig creates a new instance of the Config.
func NewConfig(supportedDialects []Dialect, options ...ConfigOption) *Config {
	var opts = configOptions{keyPrefix: cfgDefaultKeyPrefix}
	for _, opt := range options {
		opt(&opts)
	}
	return &Config{supportedDialects: supportedDialects, keyPrefix: opts.keyPrefix}
}

// NewDefaultConfig creates a new instance of the Config with default values.
func NewDefaultConfig(supportedDialects []Dialect, options ...ConfigOption) *Config {
	opts := configOptions{keyPrefix: cfgDefaultKeyPrefix}
	for _, opt := range options {
		opt(&opts)
	}
	return &Config{
		keyPrefix:         opts.keyPrefix,
		supportedDialects: supportedDialects,
		MaxOpenConns:      DefaultMaxOpenConns,
		MaxIdleConns:      DefaultMaxIdleConns,
		ConnMaxLifetime:   config.TimeDuration(DefaultConnMaxLifetime),
		Postgres: PostgresConfig{
			SSLMode: PostgresDefaultSSLMode,
		},
	}
}

// KeyPrefix returns a key prefix with which all configuration parameters should be presented.
// Implements config.KeyPrefixProvider interface.
func (c *Config) KeyPrefix() string {
	if c.keyPrefix == "" {
		return cfgDefaultKeyPrefix
	}
	return c.keyPrefix
}

// SupportedDialects returns the list of supported dialects.
func (c *Config) SupportedDialects() []Dialect {
	if len(c.supportedDialects) != 0 {
		return c.supportedDialects
	}
	return AllDialects()
}

// SetProviderDefaults sets default configuration values in config.DataProvider.
func (c *Config) SetProviderDefaults(dp config.DataProvider) {
	dp.SetDefault(cfgKeyMaxOpenConns, DefaultMaxOpenConns)
	dp.SetDefault(cfgKeyMaxIdleConns, DefaultMaxIdleConns)
	dp.SetDefault(cfgKeyConnMaxLifetime, DefaultConnMaxLifetime)
	dp.SetDefault(cfgKeyPostgresSSLMode, string(PostgresDefaultSSLMode))
}

// MySQLConfig represents a set of configuration parameters for working with MySQL.
type MySQLConfig struct {
	Host     string `mapstructure:"host" yaml:"host" json:"host"`
	Port     int    `mapstructure:"port" yaml:"port" json:"port"`
	User     string `mapstructure:"user" yaml:"user" json:"user"`
	Password string `mapstructure:"password" yaml:"password" json:"password"`
	Database string `mapstructure:"database" yaml:"database" json:"database"`
}

// MSSQLConfig represents a set of configuration parameters for working with MSSQL.
type MSSQLConfig struct {
	Host                 string            `mapstructure:"host" yaml:"host" json:"host"`
	Port                 int               `mapstructure:"port" yaml:"port" json:"port"`
	User                 string            `mapstructure:"user" yaml:"user" json:"user"`
	Password             string            `mapstructure:"password" yaml:"password" json:"password"`
	Database             string            `mapstructure:"database" yaml:"database" json:"database"`
	AdditionalParameters map[string]string `mapstructure:"additionalParameters" yaml:"additionalParameters" json:"additionalParameters"`
}

// FirebirdConfig represents a set of configuration parameters for working with Firebird.
// Database is a path (or an alias) of the database on the server.
type FirebirdConfig struct {
	Host                 string            `mapstructure:"host" yaml:"host" json:"host"`
	Port                 int               `mapstructure:"port" yaml:"port" json:"port"`
	User                 string            `mapstructure:"user" yaml:"user" json:"user"`
	Password             string            `mapstructure:"password" yaml:"password" json:"password"`
	Database             string            `mapstructure:"database" yaml:"database" json:"database"`
	AdditionalParameters map[string]string `mapstructure:"additionalParameters" yaml:"additionalParameters" json:"additionalParameters"`
}

// SQLiteConfig represents a set of configuration parameters for working with SQLite.
type SQLiteConfig struct {
	Path string `mapstructure:"path" yaml:"path" json:"path"`
}

// PostgresConfig represents a set of configuration parameters for working with Postgres.
type PostgresConfig struct {
	Host                 string            `mapstructure:"host" yaml:"host" json:"host"`
	Port                 int               `mapstructure:"port" yaml:"port" json:"port"`
	User                 string            `mapstructure:"user" yaml:"user" json:"user"`
	Password             string            `mapstructure:"password" yaml:"password" json:"password"`
	Database             string            `mapstructure:"database" yaml:"database" json:"database"`
	SSLMode              PostgresSSLMode   `mapstructure:"sslMode" yaml:"sslMode" json:"sslMode"`
	SearchPath           string            `mapstructure:"searchPath" yaml:"searchPath" json:"searchPath"`
	AdditionalParameters map[string]string `mapstructure:"additionalParameters" yaml:"additionalParameters" json:"additionalParameters"`
}

// Set sets configuration values from config.DataProvider.
func (c *Config) Set(dp config.DataProvider) error {
	var err error

	if err = c.setDialectSpecificConfig(dp); err != nil {
		return err
	}

	if c.DSN, err = dp.GetString(cfgKeyDSN); err != nil {
		return err
	}

	var maxOpenConns int
	if maxOpenConns, err = dp.GetInt(cfgKeyMaxOpenConns); err != nil {
		return err
	}
	if maxOpenConns < 0 {
		return dp.WrapKeyErr(cfgKeyMaxOpenConns, fmt.Errorf("must be positive"))
	}
	var maxIdleConns int
	if maxIdleConns, err = dp.GetInt(cfgKeyMaxIdleConns); err != nil {
		return err
	}
	if maxIdleConns < 0 {
		return dp.WrapKeyErr(cfgKeyMaxIdleConns, fmt.Errorf("must be positive"))
	}
	if maxIdleConns > 0 && maxOpenConns > 0 && maxIdleConns > maxOpenConns {
		return dp.WrapKeyErr(cfgKeyMaxIdleConns, fmt.Errorf("must be less than %s", cfgKeyMaxOpenConns))
	}
	c.MaxOpenConns = maxOpenConns
	c.MaxIdleConns = maxIdleConns

	var connMaxLifeTime time.Duration
	if connMaxLifeTime, err = dp.GetDuration(cfgKeyConnMaxLifetime); err != nil {
		return err
	}
	c.ConnMaxLifetime = config.TimeDuration(connMaxLifeTime)

	return nil
}

// DriverNameAndDSN returns driver name and DSN for connecting.
// Config.DSN takes precedence over the dialect-specific parameters.
func (c *Config) DriverNameAndDSN() (driverName, dsn string) {
	driverName = DriverName(c.Dialect)
	if driverName == "" {
		return "", ""
	}
	if c.DSN != "" {
		return driverName, c.DSN
	}
	switch c.Dialect {
	case DialectMySQL:
		return driverName, MakeMySQLDSN(&c.MySQL)
	case DialectSQLite:
		return driverName, MakeSQLiteDSN(&c.SQLite)
	case DialectPostgres, DialectPgx:
		return driverName, MakePostgresDSN(&c.Postgres)
	case DialectMSSQL:
		return driverName, MakeMSSQLDSN(&c.MSSQL)
	case DialectFirebird:
		return driverName, MakeFirebirdDSN(&c.Firebird)
	}
	return "", ""
}

// DriverName returns the database/sql driver name registered for the dialect.
func DriverName(dialect Dialect) string {
	switch dialect {
	case DialectMySQL:
		return "mysql"
	case DialectSQLite:
		return "sqlite3"
	case DialectPostgres:
		return "postgres"
	case DialectPgx:
		return "pgx"
	case DialectMSSQL:
		return "sqlserver"
	case DialectFirebird:
		return "firebirdsql"
	}
	return ""
}

func (c *Config) setDialectSpecificConfig(dp config.DataProvider) error {
	var err error

	var supportedDialectsStr []string
	for _, dialect := range c.SupportedDialects() {
		supportedDialectsStr = append(supportedDialectsStr, string(dialect))
	}
	var dialectStr string
	if dialectStr, err = dp.GetStringFromSet(cfgKeyDialect, supportedDialectsStr, false); err != nil {
		return err
	}
	c.Dialect = Dialect(dialectStr)

	switch c.Dialect {
	case DialectMySQL:
		err = c.setMySQLConfig(dp)
	case DialectSQLite:
		err = c.setSQLiteConfig(dp)
	case DialectPostgres, DialectPgx:
		err = c.setPostgresConfig(dp)
	case DialectMSSQL:
		err = c.setMSSQLConfig(dp)
	case DialectFirebird:
		err = c.setFirebirdConfig(dp)
	}
	return err
}

// nolint: dupl
func (c *Config) setMySQLConfig(dp config.DataProvider) error {
	var err error

	if c.MySQL.Host, err = dp.GetString(cfgKeyMySQLHost); err != nil {
		return err
	}
	if c.MySQL.Port, err = dp.GetInt(cfgKeyMySQLPort); err != nil {
		return err
	}
	if c.MySQL.User, err = dp.GetString(cfgKeyMySQLUser); err != nil {
		return err
	}
	if c.MySQL.Password, err = dp.GetString(cfgKeyMySQLPassword); err != nil {
		return err
	}
	if c.MySQL.Database, err = dp.GetString(cfgKeyMySQLDatabase); err != nil {
		return err
	}

	return nil
}

// nolint: dupl
func (c *Config) setMSSQLConfig(dp config.DataProvider) error {
	var err error

	if c.MSSQL.Host, err = dp.GetString(cfgKeyMSSQLHost); err != nil {
		return err
	}
	if c.MSSQL.Port, err = dp.GetInt(cfgKeyMSSQLPort); err != nil {
		return err
	}
	if c.MSSQL.User, err = dp.GetString(cfgKeyMSSQLUser); err != nil {
		return err
	}
	if c.MSSQL.Password, err = dp.GetString(cfgKeyMSSQLPassword); err != nil {
		return err
	}
	if c.MSSQL.Database, err = dp.GetString(cfgKeyMSSQLDatabase); err != nil {
		return err
	}
	var additionalParams map[string]string
	if additionalParams, err = dp.GetStringMapString(cfgKeyMSSQLAdditionalParams); err != nil {
		return err
	}
	if len(additionalParams) != 0 {
		c.MSSQL.AdditionalParameters = additionalParams
	}

	return nil
}

// nolint: dupl
func (c *Config) setFirebirdConfig(dp config.DataProvider) error {
	var err error

	if c.Firebird.Host, err = dp.GetString(cfgKeyFirebirdHost); err != nil {
		return err
	}
	if c.Firebird.Port, err = dp.GetInt(cfgKeyFirebirdPort); err != nil {
		return err
	}
	if c.Firebird.User, err = dp.GetString(cfgKeyFirebirdUser); err != nil {
		return err
	}
	if c.Firebird.Password, err = dp.GetString(cfgKeyFirebirdPassword); err != nil {
		return err
	}
	if c.Firebird.Database, err = dp.GetString(cfgKeyFirebirdDatabase); err != nil {
		return err
	}
	var additionalParams map[string]string
	if additionalParams, err = dp.GetStringMapString(cfgKeyFirebirdAdditionalParams); err != nil {
		return err
	}
	if len(additionalParams) != 0 {
		c.Firebird.AdditionalParameters = additionalParams
	}

	return nil
}

// nolint: dupl
func (c *Config) setPostgresConfig(dp config.DataProvider) error {
	var err error

	if c.Postgres.Host, err = dp.GetString(cfgKeyPostgresHost); err != nil {
		return err
	}
	if c.Postgres.Port, err = dp.GetInt(cfgKeyPostgresPort); err != nil {
		return err
	}
	if c.Postgres.User, err = dp.GetString(cfgKeyPostgresUser); err != nil {
		return err
	}
	if c.Postgres.Password, err = dp.GetString(cfgKeyPostgresPassword); err != nil {
		return err
	}
	if c.Postgres.Database, err = dp.GetString(cfgKeyPostgresDatabase); err != nil {
		return err
	}
	if c.Postgres.SearchPath, err = dp.GetString(cfgKeyPostgresSearchPath); err != nil {
		return err
	}

	var additionalParams map[string]string
	if additionalParams, err = dp.GetStringMapString(cfgKeyPostgresAdditionalParams); err != nil {
		return err
	}
	if len(additionalParams) != 0 {
		c.Postgres.AdditionalParameters = additionalParams
	}

	availableSSLModesStr := []string{
		string(PostgresSSLModeDisable),
		string(PostgresSSLModeRequire),
		string(PostgresSSLModeVerifyCA),
		string(PostgresSSLModeVerifyFull),
	}
	gotSSLModeStr, err := dp.GetStringFromSet(cfgKeyPostgresSSLMode, availableSSLModesStr, false)
	if err != nil {
		return err
	}
	c.Postgres.SSLMode = PostgresSSLMode(gotSSLModeStr)

	return nil
}

func (c *Config) setSQLiteConfig(dp config.DataProvider) error {
	var err error

	if c.SQLite.Path, err = dp.GetString(cfgKeySQLitePath); err != nil {
		return err
	}

	return nil
}
