package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Lumos-Labs-HQ/sheetflash/internal/types"
	"github.com/ohler55/ojg/jp"
	"gopkg.in/yaml.v3"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Render encodes rows as JSON or YAML. With a JSONPath selector only the
// matched nodes are encoded; selected output loses field order.
func Render(rows []*types.Row, format, selector string) ([]byte, error) {
	if selector != "" {
		selected, err := Select(rows, selector)
		if err != nil {
			return nil, err
		}
		return encodePlain(selected, format)
	}

	switch format {
	case FormatYAML:
		return encodeYAML(rowsNode(rows))
	case FormatJSON, "":
		data, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal data: %w", err)
		}
		return append(data, '\n'), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// Select evaluates a JSONPath expression against the rows.
func Select(rows []*types.Row, selector string) ([]any, error) {
	x, err := jp.ParseString(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid jsonpath '%s': %w", selector, err)
	}
	return x.Get(types.RowsToAny(rows)), nil
}

// Write stores the rendered rows in a timestamped file under exportPath and
// returns its path.
func Write(rows []*types.Row, exportPath, format, selector string) (string, error) {
	if err := os.MkdirAll(exportPath, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	data, err := Render(rows, format, selector)
	if err != nil {
		return "", err
	}

	ext := format
	if ext == "" {
		ext = FormatJSON
	}
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	filePath := filepath.Join(exportPath, fmt.Sprintf("payload_%s.%s", timestamp, ext))

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return filePath, nil
}

func encodePlain(v any, format string) ([]byte, error) {
	switch format {
	case FormatYAML:
		var node yaml.Node
		if err := node.Encode(v); err != nil {
			return nil, fmt.Errorf("failed to marshal data: %w", err)
		}
		return encodeYAML(&node)
	case FormatJSON, "":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal data: %w", err)
		}
		return append(data, '\n'), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

func encodeYAML(node *yaml.Node) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return nil, fmt.Errorf("failed to marshal data: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
