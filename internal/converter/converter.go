package converter

import (
	"context"
	"errors"
	"fmt"

	"github.com/Lumos-Labs-HQ/sheetflash/internal/relation"
	"github.com/Lumos-Labs-HQ/sheetflash/internal/sheet"
	"github.com/Lumos-Labs-HQ/sheetflash/internal/tree"
	"github.com/Lumos-Labs-HQ/sheetflash/internal/types"
	"go.uber.org/zap"
)

const DefaultDelimiter = "|"

type Options struct {
	// FilePath is the workbook opened by Open.
	FilePath string
	// Delimiter splits multi-id relation cells.
	Delimiter string
	// PKSuffix, when set, only keeps root rows that have a value in the
	// column named <sheet name><suffix>. Child sheets are not filtered by it.
	PKSuffix string
	// Strict makes OneToManyCreate fail when a row cannot be linked or
	// matches several parents.
	Strict bool
	Logger *zap.Logger
}

// Converter is one conversion session. It owns the forest it builds and is
// not safe for concurrent use.
type Converter struct {
	reader sheet.Reader
	closer func() error
	opts   Options
	logger *zap.Logger
	result []*types.Row
	report Report
}

func New(reader sheet.Reader, opts Options) *Converter {
	if opts.Delimiter == "" {
		opts.Delimiter = DefaultDelimiter
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Converter{
		reader: reader,
		opts:   opts,
		logger: logger,
	}
}

// Open starts a session over the workbook at opts.FilePath.
func Open(opts Options) (*Converter, error) {
	wb, err := sheet.Open(opts.FilePath)
	if err != nil {
		return nil, err
	}
	c := New(wb, opts)
	c.closer = wb.Close
	return c, nil
}

func (c *Converter) Close() error {
	if c.closer != nil {
		return c.closer()
	}
	return nil
}

// ReadSheet loads the root sheet. Accepted rows are appended to the forest.
// The option is returned so child sheets can chain on its name.
func (c *Converter) ReadSheet(ctx context.Context, opt types.SheetOption) (types.SheetOption, error) {
	if err := opt.Validate(); err != nil {
		return opt, err
	}
	table, err := c.reader.ReadSheet(ctx, opt.Name, opt.RowNameIndex, opt.StartRowIndex)
	if err != nil {
		return opt, fmt.Errorf("failed to read sheet %s: %w", opt.Name, err)
	}

	stats := SheetStats{Name: opt.Name}
	for _, r := range table.Rows {
		stats.Read++
		row := relation.Materialize(table.Columns, r.Values, opt.Relations, c.opts.Delimiter)
		if !c.acceptRoot(opt.Name, row) {
			stats.Skipped++
			continue
		}
		stats.Accepted++
		c.result = append(c.result, row)
	}

	c.report.Sheets = append(c.report.Sheets, stats)
	c.logger.Debug("Sheet loaded",
		zap.String("sheet", opt.Name),
		zap.Int("read", stats.Read),
		zap.Int("accepted", stats.Accepted))
	return opt, nil
}

// OneToManyCreate loads a child sheet and attaches every accepted row under
// the first loaded row sharing its fk value. Rows with no match are dropped
// and recorded in the report. In strict mode the sheet is still fully
// processed before a *LinkError is returned.
func (c *Converter) OneToManyCreate(ctx context.Context, opt types.SubCreateOption) (types.SubCreateOption, error) {
	if err := opt.Validate(); err != nil {
		return opt, err
	}
	table, err := c.reader.ReadSheet(ctx, opt.Name, opt.RowNameIndex, opt.StartRowIndex)
	if err != nil {
		return opt, fmt.Errorf("failed to read sheet %s: %w", opt.Name, err)
	}

	relationName := opt.RelationName()
	stats := SheetStats{Name: opt.Name}
	linkErr := &LinkError{Sheet: opt.Name}

	for _, r := range table.Rows {
		stats.Read++
		row := relation.Materialize(table.Columns, r.Values, opt.Relations, c.opts.Delimiter)
		if !hasValue(row) {
			stats.Skipped++
			continue
		}
		stats.Accepted++
		key := row.Value(opt.FK)

		if c.opts.Strict {
			if n := tree.CountMatches(c.result, row, opt.FK); n > 1 {
				collision := Collision{Sheet: opt.Name, Row: r.Number, FK: opt.FK, Key: key, Matches: n}
				linkErr.Collisions = append(linkErr.Collisions, collision)
				c.report.Collisions = append(c.report.Collisions, collision)
				c.logger.Warn("Child row matches several parents",
					zap.String("sheet", opt.Name),
					zap.Int("row", r.Number),
					zap.String(opt.FK, KeyString(key)),
					zap.Int("matches", n))
			}
		}

		err := tree.Link(c.result, row, opt.FK, relationName)
		if err == nil {
			stats.Attached++
			continue
		}

		unlinked := UnlinkedRow{Sheet: opt.Name, Row: r.Number, FK: opt.FK, Key: key}
		if errors.Is(err, types.ErrFieldTaken) {
			unlinked.Reason = err.Error()
			c.logger.Warn("Child row dropped, parent already has a field named after the relation",
				zap.String("sheet", opt.Name),
				zap.Int("row", r.Number),
				zap.String(opt.FK, KeyString(key)),
				zap.Error(err))
		} else {
			c.logger.Debug("Child row dropped, no parent matched",
				zap.String("sheet", opt.Name),
				zap.Int("row", r.Number),
				zap.String(opt.FK, KeyString(key)))
		}
		linkErr.Unlinked = append(linkErr.Unlinked, unlinked)
		c.report.Unlinked = append(c.report.Unlinked, unlinked)
	}

	c.report.Sheets = append(c.report.Sheets, stats)
	c.logger.Debug("Sheet attached",
		zap.String("sheet", opt.Name),
		zap.String("relation", relationName),
		zap.Int("attached", stats.Attached),
		zap.Int("unlinked", len(linkErr.Unlinked)))

	if c.opts.Strict && (len(linkErr.Unlinked) > 0 || len(linkErr.Collisions) > 0) {
		return opt, linkErr
	}
	return opt, nil
}

// Run reads root, then attaches children in dependency order, and returns
// the pruned result.
func (c *Converter) Run(ctx context.Context, root types.SheetOption, children []types.SubCreateOption) ([]*types.Row, error) {
	graph := NewDependencyGraph(root.Name)
	for _, child := range children {
		if err := graph.AddSheet(child); err != nil {
			return nil, err
		}
	}
	order, err := graph.BuildOrder()
	if err != nil {
		return nil, fmt.Errorf("failed to order sheets: %w", err)
	}

	if _, err := c.ReadSheet(ctx, root); err != nil {
		return nil, err
	}
	for _, child := range order {
		if _, err := c.OneToManyCreate(ctx, child); err != nil {
			return nil, err
		}
	}
	return c.Data(), nil
}

// Data prunes empty buckets and returns the forest.
func (c *Converter) Data() []*types.Row {
	c.result = tree.Prune(c.result)
	return c.result
}

func (c *Converter) Report() Report {
	return c.report
}

func (c *Converter) acceptRoot(sheetName string, row *types.Row) bool {
	if c.opts.PKSuffix != "" {
		return types.IsDefined(row.Value(sheetName + c.opts.PKSuffix))
	}
	return hasValue(row)
}

// hasValue is false for rows whose cells are all empty.
func hasValue(row *types.Row) bool {
	for _, v := range row.All() {
		if types.IsDefined(v) {
			return true
		}
	}
	return false
}
