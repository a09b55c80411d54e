package types

import "fmt"

type Operation string

const (
	OperationConnect    Operation = "connect"
	OperationSet        Operation = "set"
	OperationDisconnect Operation = "disconnect"
)

// Cardinality says whether a relation cell holds one id or a delimited list.
type Cardinality string

const (
	CardinalityOne  Cardinality = "one"
	CardinalityMany Cardinality = "many"
)

// RelationSpec marks a column whose cells are ids of another table.
type RelationSpec struct {
	Key       string      `json:"key" mapstructure:"key" yaml:"key"`
	Option    Cardinality `json:"option" mapstructure:"option" yaml:"option"`
	Operation Operation   `json:"operation" mapstructure:"operation" yaml:"operation"`
}

// SheetOption selects a worksheet and where its header and data start.
// Indexes are 1-based, as shown by spreadsheet applications.
type SheetOption struct {
	Name          string         `json:"name" mapstructure:"name" yaml:"name"`
	RowNameIndex  int            `json:"row_name_index" mapstructure:"row_name_index" yaml:"row_name_index"`
	StartRowIndex int            `json:"start_row_index" mapstructure:"start_row_index" yaml:"start_row_index"`
	Relations     []RelationSpec `json:"relations,omitempty" mapstructure:"relations" yaml:"relations,omitempty"`
}

// SubCreateOption describes a child sheet linked to already loaded rows by FK.
type SubCreateOption struct {
	SheetOption `mapstructure:",squash" yaml:",inline"`
	FK          string `json:"fk" mapstructure:"fk" yaml:"fk"`
	// Many names the parent sheet the rows hang under.
	Many string `json:"many,omitempty" mapstructure:"many" yaml:"many,omitempty"`
	// Relation overrides the bucket name, which defaults to the sheet name.
	Relation string `json:"relation,omitempty" mapstructure:"relation" yaml:"relation,omitempty"`
}

func (o SubCreateOption) RelationName() string {
	if o.Relation != "" {
		return o.Relation
	}
	return o.Name
}

func (op Operation) Validate() error {
	switch op {
	case OperationConnect, OperationSet, OperationDisconnect:
		return nil
	}
	return fmt.Errorf("unsupported relation operation %q (expected connect, set or disconnect)", string(op))
}

func (c Cardinality) Validate() error {
	switch c {
	case CardinalityOne, CardinalityMany:
		return nil
	}
	return fmt.Errorf("unsupported relation option %q (expected one or many)", string(c))
}

func (s RelationSpec) Validate() error {
	if s.Key == "" {
		return fmt.Errorf("relation key cannot be empty")
	}
	if err := s.Option.Validate(); err != nil {
		return fmt.Errorf("relation %s: %w", s.Key, err)
	}
	if err := s.Operation.Validate(); err != nil {
		return fmt.Errorf("relation %s: %w", s.Key, err)
	}
	return nil
}

func (o SheetOption) Validate() error {
	if o.Name == "" {
		return fmt.Errorf("sheet name cannot be empty")
	}
	if o.RowNameIndex < 1 {
		return fmt.Errorf("sheet %s: row_name_index must be >= 1, got %d", o.Name, o.RowNameIndex)
	}
	if o.StartRowIndex <= o.RowNameIndex {
		return fmt.Errorf("sheet %s: start_row_index (%d) must come after row_name_index (%d)", o.Name, o.StartRowIndex, o.RowNameIndex)
	}
	for _, rel := range o.Relations {
		if err := rel.Validate(); err != nil {
			return fmt.Errorf("sheet %s: %w", o.Name, err)
		}
	}
	return nil
}

func (o SubCreateOption) Validate() error {
	if err := o.SheetOption.Validate(); err != nil {
		return err
	}
	if o.FK == "" {
		return fmt.Errorf("sheet %s: fk cannot be empty", o.Name)
	}
	return nil
}
