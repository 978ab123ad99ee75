/*
Copyright © 2026 Acronis International GmbH.

Released under MIT license.
*/

package upgrader

import (
	"time"

	"github.com/acronis/go-appkit/config"

	"github.com/acronis/go-dbupgrade/dialect"
	"github.com/acronis/go-dbupgrade/placeholder"
)

const cfgDefaultKeyPrefix = "upgrade"

const (
	cfgKeyScriptsFolderPath      = "scriptsFolderPath"
	cfgKeyFromVersion            = "fromVersion"
	cfgKeyPlaceholders           = "placeholders"
	cfgKeyTableName              = "tableName"
	cfgKeyCommandTimeout         = "commandTimeout"
	cfgKeySlowStatementThreshold = "slowStatementThreshold"
)

// DefaultScriptsFolderPath is the scripts folder used when none is configured.
const DefaultScriptsFolderPath = "Scripts"

// Config represents a set of configuration parameters of an upgrade run.
type Config struct {
	ScriptsFolderPath string `mapstructure:"scriptsFolderPath" yaml:"scriptsFolderPath" json:"scriptsFolderPath"`
	FromVersion       string `mapstructure:"fromVersion" yaml:"fromVersion" json:"fromVersion"`
	// Placeholders uses the "key1=value1;key2=value2" form, keys are case-sensitive.
	Placeholders string `mapstructure:"placeholders" yaml:"placeholders" json:"placeholders"`
	TableName    string `mapstructure:"tableName" yaml:"tableName" json:"tableName"`
	// CommandTimeout overrides the per-statement timeout of the dialect when it is positive.
	CommandTimeout         config.TimeDuration `mapstructure:"commandTimeout" yaml:"commandTimeout" json:"commandTimeout"`
	SlowStatementThreshold config.TimeDuration `mapstructure:"slowStatementThreshold" yaml:"slowStatementThreshold" json:"slowStatementThreshold"`

	keyPrefix string
}

var _ config.Config = (*Config)(nil)
var _ config.KeyPrefixProvider = (*Config)(nil)

// NewConfig creates a new instance of the Config.
func NewConfig() *Config {
	return &Config{keyPrefix: cfgDefaultKeyPrefix}
}

// NewConfigWithKeyPrefix creates a new instance of the Config with the given key prefix.
func NewConfigWithKeyPrefix(keyPrefix string) *Config {
	return &Config{keyPrefix: keyPrefix}
}

// KeyPrefix returns a key prefix with which all configuration parameters should be presented.
func (c *Config) KeyPrefix() string {
	if c.keyPrefix == "" {
		return cfgDefaultKeyPrefix
	}
	return c.keyPrefix
}

// SetProviderDefaults sets default configuration values in config.DataProvider.
func (c *Config) SetProviderDefaults(dp config.DataProvider) {
	dp.SetDefault(cfgKeyScriptsFolderPath, DefaultScriptsFolderPath)
	dp.SetDefault(cfgKeyTableName, dialect.DefaultTableName)
	dp.SetDefault(cfgKeyCommandTimeout, 0)
	dp.SetDefault(cfgKeySlowStatementThreshold, 0)
}

// Set sets configuration values from config.DataProvider.
func (c *Config) Set(dp config.DataProvider) error {
	var err error
	if c.ScriptsFolderPath, err = dp.GetString(cfgKeyScriptsFolderPath); err != nil {
		return err
	}
	if c.FromVersion, err = dp.GetString(cfgKeyFromVersion); err != nil {
		return err
	}
	if c.Placeholders, err = dp.GetString(cfgKeyPlaceholders); err != nil {
		return err
	}
	if _, err = placeholder.Parse(c.Placeholders); err != nil {
		return dp.WrapKeyErr(cfgKeyPlaceholders, err)
	}

	if c.TableName, err = dp.GetString(cfgKeyTableName); err != nil {
		return err
	}
	if err = dialect.ValidateTableName(c.TableName); err != nil {
		return dp.WrapKeyErr(cfgKeyTableName, err)
	}

	var d time.Duration
	if d, err = dp.GetDuration(cfgKeyCommandTimeout); err != nil {
		return err
	}
	c.CommandTimeout = config.TimeDuration(d)
	if d, err = dp.GetDuration(cfgKeySlowStatementThreshold); err != nil {
		return err
	}
	c.SlowStatementThreshold = config.TimeDuration(d)

	return nil
}

// PlaceholderMap returns parsed placeholders.
func (c *Config) PlaceholderMap() (map[string]string, error) {
	return placeholder.Parse(c.Placeholders)
}

// Options returns upgrader options matching the configuration.
func (c *Config) Options() []Option {
	opts := []Option{}
	if c.TableName != "" {
		opts = append(opts, WithTableName(c.TableName))
	}
	if c.CommandTimeout > 0 {
		opts = append(opts, WithCommandTimeout(time.Duration(c.CommandTimeout)))
	}
	if c.SlowStatementThreshold > 0 {
		opts = append(opts, WithSlowStatementThreshold(time.Duration(c.SlowStatementThreshold)))
	}
	return opts
}
