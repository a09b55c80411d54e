package seeder

import "io"

type SeedConfig struct {
	RootTable     string            // Table for top-level rows
	Tables        map[string]string // Relation name -> table name overrides
	Truncate      bool              // Clear tables before seeding
	Force         bool              // Continue after failed inserts
	NoTransaction bool              // Disable transaction wrapping
	DryRun        io.Writer         // Print statements instead of executing them
}

func (c SeedConfig) tableFor(relation string) string {
	if t, ok := c.Tables[relation]; ok && t != "" {
		return t
	}
	return relation
}

// Stats counts what a seed run wrote.
type Stats struct {
	Tables  []string       // Tables in first-insert order
	Rows    map[string]int // Inserted rows per table
	Skipped int            // Reference lists that have no column to live in
	Failed  int
}

func (s *Stats) Total() int {
	n := 0
	for _, c := range s.Rows {
		n += c
	}
	return n
}

func (s *Stats) record(table string) {
	if _, ok := s.Rows[table]; !ok {
		s.Tables = append(s.Tables, table)
	}
	s.Rows[table]++
}

// statement is one INSERT produced from a row.
type statement struct {
	table string
	query string
	args  []interface{}
}
