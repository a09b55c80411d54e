package converter

import (
	"fmt"

	"github.com/Lumos-Labs-HQ/sheetflash/internal/types"
)

// DependencyGraph orders child sheets so that every sheet is attached after
// the sheet it hangs under. A child with no Many depends on the root.
type DependencyGraph struct {
	root   string
	sheets map[string]types.SubCreateOption
	names  []string
}

func NewDependencyGraph(root string) *DependencyGraph {
	return &DependencyGraph{
		root:   root,
		sheets: make(map[string]types.SubCreateOption),
	}
}

func (g *DependencyGraph) AddSheet(opt types.SubCreateOption) error {
	if opt.Name == g.root {
		return fmt.Errorf("sheet %s is already the root sheet", opt.Name)
	}
	if _, exists := g.sheets[opt.Name]; exists {
		return fmt.Errorf("sheet %s is declared twice", opt.Name)
	}
	g.sheets[opt.Name] = opt
	g.names = append(g.names, opt.Name)
	return nil
}

// BuildOrder returns the child sheets in attach order. Declaration order is
// kept wherever dependencies allow it.
func (g *DependencyGraph) BuildOrder() ([]types.SubCreateOption, error) {
	visited := make(map[string]bool)
	temp := make(map[string]bool)
	var order []types.SubCreateOption

	var visit func(string) error
	visit = func(name string) error {
		if temp[name] {
			return fmt.Errorf("circular dependency detected involving sheet: %s", name)
		}
		if visited[name] {
			return nil
		}

		temp[name] = true
		opt := g.sheets[name]
		parent := opt.Many
		if parent != "" && parent != g.root {
			if _, known := g.sheets[parent]; !known {
				return fmt.Errorf("sheet %s hangs under unknown sheet %s", name, parent)
			}
			if err := visit(parent); err != nil {
				return err
			}
		}

		temp[name] = false
		visited[name] = true
		order = append(order, opt)
		return nil
	}

	for _, name := range g.names {
		if err := visit(name); err != nil {
			return nil, err
		}
	}
	return order, nil
}
