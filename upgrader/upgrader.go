/*
Copyright © 2026 Acronis International GmbH.

Released under MIT license.
*/

package upgrader

import (
	"context"
	"fmt"
	"time"

	"github.com/acronis/go-appkit/log"

	"github.com/acronis/go-dbupgrade"
	"github.com/acronis/go-dbupgrade/changelog"
	"github.com/acronis/go-dbupgrade/dialect"
	"github.com/acronis/go-dbupgrade/placeholder"
	"github.com/acronis/go-dbupgrade/repository"
)

// ContentTransform changes the content of a script before placeholders are substituted.
type ContentTransform func(script repository.Script, content string) (string, error)

// Report describes a finished run.
type Report struct {
	Status         Status
	Applied        int
	Skipped        int
	CommonExecuted int
	Duration       time.Duration
}

// Upgrader applies scripts of a repository to a database.
type Upgrader struct {
	db         dbupgrade.Conner
	dialect    dialect.Descriptor
	logger     log.FieldLogger
	store      *changelog.Store
	tableName  string
	transforms []ContentTransform
	metrics    MetricsCollector

	commandTimeout         time.Duration
	slowStatementThreshold time.Duration
}

// Option is a functional option for Upgrader configuration.
type Option func(*Upgrader)

// WithTableName sets a custom changelog table name.
func WithTableName(name string) Option {
	return func(u *Upgrader) {
		u.tableName = name
	}
}

// WithContentTransform adds a transform applied to every script's content.
// Transforms are applied in the order they are added.
func WithContentTransform(t ContentTransform) Option {
	return func(u *Upgrader) {
		u.transforms = append(u.transforms, t)
	}
}

// WithCommandTimeout overrides the per-statement timeout of the dialect.
func WithCommandTimeout(timeout time.Duration) Option {
	return func(u *Upgrader) {
		u.commandTimeout = timeout
	}
}

// WithSlowStatementThreshold enables logging of statements executed longer than the threshold.
func WithSlowStatementThreshold(threshold time.Duration) Option {
	return func(u *Upgrader) {
		u.slowStatementThreshold = threshold
	}
}

// WithMetrics sets a metrics collector.
func WithMetrics(mc MetricsCollector) Option {
	return func(u *Upgrader) {
		u.metrics = mc
	}
}

// New creates a new Upgrader for the database of the given dialect.
func New(db dbupgrade.Conner, d dbupgrade.Dialect, logger log.FieldLogger, opts ...Option) (*Upgrader, error) {
	if db == nil {
		return nil, fmt.Errorf("db cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	desc, err := dialect.Lookup(d)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnknownDialect, err)
	}

	u := &Upgrader{
		db:        db,
		dialect:   *desc,
		logger:    logger,
		tableName: dialect.DefaultTableName,
		metrics:   disabledMetrics{},
	}
	for _, opt := range opts {
		opt(u)
	}
	if u.commandTimeout > 0 {
		u.dialect.CommandTimeout = u.commandTimeout
	}

	if u.store, err = changelog.NewStore(db, &u.dialect, changelog.WithTableName(u.tableName)); err != nil {
		return nil, fmt.Errorf("create changelog store: %w", err)
	}
	return u, nil
}

// Run applies the scripts of the repository at root.
// Versions before fromVersion are skipped when it is not empty. Placeholders are substituted
// in every script before execution.
func (u *Upgrader) Run(ctx context.Context, root, fromVersion string, placeholders map[string]string) (Status, error) {
	report, err := u.Execute(ctx, root, fromVersion, placeholders)
	return report.Status, err
}

// Execute is like Run but returns the full report of the run.
func (u *Upgrader) Execute(
	ctx context.Context, root, fromVersion string, placeholders map[string]string,
) (*Report, error) {
	startTime := time.Now()
	report := &Report{}
	err := u.execute(ctx, root, fromVersion, placeholders, report)
	report.Status = StatusOf(err)
	report.Duration = time.Since(startTime)

	fields := []log.Field{
		log.String("status", report.Status.String()),
		log.Int("applied", report.Applied),
		log.Int("skipped", report.Skipped),
		log.Int("common_executed", report.CommonExecuted),
		log.Int64("duration_ms", report.Duration.Milliseconds()),
	}
	if err != nil {
		u.logger.Error("database was not updated", append(fields, log.Error(err))...)
		return report, err
	}
	u.logger.Info("database has been successfully updated", fields...)
	return report, nil
}

func (u *Upgrader) execute(
	ctx context.Context, root, fromVersion string, placeholders map[string]string, report *Report,
) error {
	layout, err := repository.Resolve(root, fromVersion)
	if err != nil {
		return fmt.Errorf("resolve scripts: %w", err)
	}

	tableEnsured := false
	for _, version := range layout.Versions {
		u.logger.Info("processing version",
			log.String("version", version.Name), log.Int("scripts", len(version.Scripts)))
		for _, script := range version.Scripts {
			if !tableEnsured {
				if err = u.store.EnsureTable(ctx); err != nil {
					return fmt.Errorf("ensure changelog table: %w", err)
				}
				tableEnsured = true
			}
			applied, err := u.runVersioned(ctx, script, placeholders)
			if err != nil {
				u.metrics.IncScripts(ScriptKindVersioned, ScriptResultFailed)
				return err
			}
			if applied {
				report.Applied++
				u.metrics.IncScripts(ScriptKindVersioned, ScriptResultApplied)
			} else {
				report.Skipped++
				u.metrics.IncScripts(ScriptKindVersioned, ScriptResultSkipped)
			}
		}
	}

	for _, script := range layout.Common {
		if err = u.runCommon(ctx, script, placeholders); err != nil {
			u.metrics.IncScripts(ScriptKindCommon, ScriptResultFailed)
			return err
		}
		report.CommonExecuted++
		u.metrics.IncScripts(ScriptKindCommon, ScriptResultApplied)
	}
	return nil
}

// runVersioned executes a tracked script unless it has been applied already.
func (u *Upgrader) runVersioned(ctx context.Context, script repository.Script, placeholders map[string]string) (bool, error) {
	applied, err := u.store.IsApplied(ctx, script.ID)
	if err != nil {
		return false, fmt.Errorf("check script %s: %w", script.Path, err)
	}
	if applied {
		u.logger.Debug("script has already been executed, skipping", log.String("script", script.Path))
		return false, nil
	}

	// Transforms may read files next to the script, applied scripts don't need them.
	content, err := u.prepare(script, placeholders)
	if err != nil {
		return false, err
	}

	if err = u.executeScript(ctx, script, content, ScriptKindVersioned); err != nil {
		return false, err
	}

	recorded, err := u.store.Record(ctx, script.ID, script.Path)
	if err != nil {
		return false, fmt.Errorf("%w: script %s: %w", ErrRecordFailed, script.Path, err)
	}
	if !recorded {
		return false, fmt.Errorf("%w: script %s: no rows affected", ErrRecordFailed, script.Path)
	}
	return true, nil
}

func (u *Upgrader) runCommon(ctx context.Context, script repository.Script, placeholders map[string]string) error {
	content, err := u.prepare(script, placeholders)
	if err != nil {
		return err
	}
	return u.executeScript(ctx, script, content, ScriptKindCommon)
}

func (u *Upgrader) prepare(script repository.Script, placeholders map[string]string) (string, error) {
	content := script.Content
	for _, transform := range u.transforms {
		var err error
		if content, err = transform(script, content); err != nil {
			return "", fmt.Errorf("%w: script %s: %w", ErrContentTransform, script.Path, err)
		}
	}
	return placeholder.Substitute(content, placeholders), nil
}

// executeScript executes all statements of the script one by one on a single connection.
func (u *Upgrader) executeScript(ctx context.Context, script repository.Script, content, kind string) error {
	logger := u.logger.With(log.String("script", script.Path), log.String("kind", kind))
	statements := u.dialect.Splitter.Split(content)
	logger.Info("executing script", log.Int("statements", len(statements)))
	if len(statements) == 0 {
		return nil
	}

	conn, err := u.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close() // nolint: errcheck

	for i, stmt := range statements {
		startTime := time.Now()
		cmdCtx, cancel := u.dialect.CommandContext(ctx)
		_, err = conn.ExecContext(cmdCtx, stmt)
		cancel()
		elapsed := time.Since(startTime)
		u.metrics.ObserveStatementDuration(kind, elapsed)
		if err != nil {
			logger.Error("statement execution failed", log.Int("statement", i+1), log.Error(err))
			return fmt.Errorf("%w: script %s, statement %d: %w", ErrStatementExecution, script.Path, i+1, err)
		}
		if u.slowStatementThreshold > 0 && elapsed >= u.slowStatementThreshold {
			logger.Warn("slow SQL statement", log.Int("statement", i+1), log.Int64("duration_ms", elapsed.Milliseconds()))
		}
	}
	return nil
}
