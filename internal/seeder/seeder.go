package seeder

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/Lumos-Labs-HQ/sheetflash/internal/database"
	"github.com/Lumos-Labs-HQ/sheetflash/internal/types"
	"github.com/fatih/color"
	"go.uber.org/zap"
)

// validIdentifier validates SQL identifiers (table/column names)
var validIdentifier = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// Seeder writes a converted row forest into a database, parents before
// children.
type Seeder struct {
	db      *sql.DB
	dialect database.Dialect
	logger  *zap.Logger
}

func NewSeeder(db *sql.DB, dialect database.Dialect, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{db: db, dialect: dialect, logger: logger}
}

func (s *Seeder) Seed(ctx context.Context, rows []*types.Row, cfg SeedConfig) (*Stats, error) {
	if cfg.RootTable == "" {
		return nil, fmt.Errorf("root table is required")
	}

	color.Cyan("🌱 Starting database seeding...")

	stats := &Stats{Rows: make(map[string]int)}
	var plan []statement
	for _, row := range rows {
		if err := s.planRow(&plan, stats, row, cfg.RootTable, cfg); err != nil {
			return nil, err
		}
	}

	tables := tableOrder(plan)
	if len(tables) == 0 {
		color.Yellow("⚠️  Nothing to seed")
		return stats, nil
	}
	color.Cyan("📋 Insertion order: %s", strings.Join(tables, " → "))

	if cfg.DryRun != nil {
		if cfg.Truncate {
			for i := len(tables) - 1; i >= 0; i-- {
				query, _, err := s.dialect.Delete(tables[i])
				if err != nil {
					return nil, err
				}
				fmt.Fprintf(cfg.DryRun, "%s;\n", query)
			}
		}
		for _, st := range plan {
			fmt.Fprintf(cfg.DryRun, "%s; -- %v\n", st.query, st.args)
			stats.record(st.table)
		}
		return stats, nil
	}

	if s.db == nil {
		return nil, fmt.Errorf("no database connection")
	}

	var exec execer = s.db
	var tx *sql.Tx
	if !cfg.NoTransaction {
		var err error
		tx, err = s.db.BeginTx(ctx, nil)
		if err != nil {
			color.Yellow("⚠️  Could not start transaction: %v (continuing without transaction)", err)
		} else {
			exec = tx
			color.Cyan("🔒 Transaction started")
		}
	}

	seedErr := s.execute(ctx, exec, plan, tables, stats, cfg)

	if tx != nil {
		if seedErr != nil {
			color.Yellow("🔄 Rolling back transaction due to error...")
			if rbErr := tx.Rollback(); rbErr != nil {
				return stats, fmt.Errorf("seed failed and rollback failed: %v (original: %w)", rbErr, seedErr)
			}
			color.Yellow("✅ Transaction rolled back")
			return stats, seedErr
		}
		if err := tx.Commit(); err != nil {
			return stats, fmt.Errorf("failed to commit transaction: %w", err)
		}
		color.Cyan("🔓 Transaction committed")
	} else if seedErr != nil {
		return stats, seedErr
	}

	color.Green("✅ Seeded %d rows into %d tables", stats.Total(), len(stats.Tables))
	return stats, nil
}

func (s *Seeder) execute(ctx context.Context, exec execer, plan []statement, tables []string, stats *Stats, cfg SeedConfig) error {
	if cfg.Truncate {
		for i := len(tables) - 1; i >= 0; i-- {
			query, args, err := s.dialect.Delete(tables[i])
			if err != nil {
				return err
			}
			if _, err := exec.ExecContext(ctx, query, args...); err != nil {
				if !cfg.Force {
					return fmt.Errorf("failed to truncate %s: %w (use --force to continue)", tables[i], err)
				}
				color.Yellow("⚠️  Truncate of %s failed but continuing with --force: %v", tables[i], err)
			}
		}
	}

	for _, st := range plan {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.logger.Debug("insert", zap.String("table", st.table), zap.String("query", st.query))
		if _, err := exec.ExecContext(ctx, st.query, st.args...); err != nil {
			if !cfg.Force {
				return fmt.Errorf("failed to insert into %s: %w", st.table, err)
			}
			stats.Failed++
			color.Yellow("⚠️  Insert into %s failed but continuing with --force: %v", st.table, err)
			continue
		}
		stats.record(st.table)
	}
	return nil
}

// planRow appends the INSERT for row and then, in order, the inserts of the
// rows nested under it.
func (s *Seeder) planRow(plan *[]statement, stats *Stats, row *types.Row, table string, cfg SeedConfig) error {
	if !validIdentifier.MatchString(table) {
		return fmt.Errorf("invalid table name: %s", table)
	}

	var (
		columns []string
		values  []interface{}
		nested  []string
	)
	for key, v := range row.All() {
		switch x := v.(type) {
		case types.Undefined:
			continue
		case *types.Bucket:
			nested = append(nested, key)
			continue
		case types.Relation:
			ref, ok := x.Target.(types.Reference)
			if !ok {
				stats.Skipped++
				s.logger.Debug("skipping reference list", zap.String("table", table), zap.String("column", key))
				continue
			}
			columns = append(columns, key)
			values = append(values, referenceArg(ref))
			continue
		case *types.Row:
			continue
		}
		columns = append(columns, key)
		values = append(values, scalarArg(v))
	}

	if len(columns) > 0 {
		for _, col := range columns {
			if !validIdentifier.MatchString(col) {
				return fmt.Errorf("invalid column name in table %s: %s", table, col)
			}
		}
		query, args, err := s.dialect.Insert(table, columns, values)
		if err != nil {
			return fmt.Errorf("failed to build insert for %s: %w", table, err)
		}
		*plan = append(*plan, statement{table: table, query: query, args: args})
	}

	for _, relation := range nested {
		bucket := row.Value(relation).(*types.Bucket)
		for _, child := range bucket.Create {
			if err := s.planRow(plan, stats, child, cfg.tableFor(relation), cfg); err != nil {
				return err
			}
		}
	}
	return nil
}

func tableOrder(plan []statement) []string {
	seen := make(map[string]bool)
	var tables []string
	for _, st := range plan {
		if !seen[st.table] {
			seen[st.table] = true
			tables = append(tables, st.table)
		}
	}
	return tables
}

func scalarArg(v types.Value) interface{} {
	switch x := v.(type) {
	case types.String:
		return string(x)
	case types.Number:
		if x.Integral() {
			return int64(x)
		}
		return float64(x)
	case types.Bool:
		return bool(x)
	}
	return nil
}

func referenceArg(ref types.Reference) interface{} {
	if !ref.Valid {
		return nil
	}
	return ref.ID
}
