package export

import (
	"strconv"

	"github.com/Lumos-Labs-HQ/sheetflash/internal/types"
	"gopkg.in/yaml.v3"
)

func rowsNode(rows []*types.Row) *yaml.Node {
	seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, r := range rows {
		seq.Content = append(seq.Content, valueNode(r))
	}
	return seq
}

// valueNode builds YAML nodes by hand so rows keep their field order.
func valueNode(v types.Value) *yaml.Node {
	switch x := v.(type) {
	case types.String:
		return scalar("!!str", string(x))
	case types.Number:
		if x.Integral() {
			return scalar("!!int", x.String())
		}
		return scalar("!!float", x.String())
	case types.Bool:
		return scalar("!!bool", strconv.FormatBool(bool(x)))
	case types.Reference:
		id := scalar("!!null", "null")
		if x.Valid {
			id = scalar("!!int", strconv.FormatInt(x.ID, 10))
		}
		return mapping("id", id)
	case types.References:
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, ref := range x {
			seq.Content = append(seq.Content, valueNode(ref))
		}
		return seq
	case types.Relation:
		return mapping(string(x.Op), valueNode(x.Target))
	case *types.Bucket:
		return mapping("create", rowsNode(x.Create))
	case *types.Row:
		m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for key, field := range x.All() {
			if !types.IsDefined(field) {
				continue
			}
			m.Content = append(m.Content, scalar("!!str", key), valueNode(field))
		}
		return m
	}
	return scalar("!!null", "null")
}

func scalar(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

func mapping(key string, value *yaml.Node) *yaml.Node {
	return &yaml.Node{
		Kind:    yaml.MappingNode,
		Tag:     "!!map",
		Content: []*yaml.Node{scalar("!!str", key), value},
	}
}
