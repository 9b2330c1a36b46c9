package rules

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fenykepesz/expense-dashboard/internal/model"
)

// entry is a keyword/label pair as read from disk, before validation.
type entry struct {
	Keyword string
	Label   string
}

// codec reads and writes an ordered keyword→category mapping.
type codec interface {
	decode(data []byte) ([]entry, error)
	encode(rules []model.Rule) ([]byte, error)
}

func codecFor(path string) codec {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yamlCodec{}
	default:
		return jsonCodec{}
	}
}

// jsonCodec handles category_rules.json: a single object whose key order is
// rule precedence.
type jsonCodec struct{}

func (jsonCodec) decode(data []byte) ([]entry, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("reading JSON: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("expected a JSON object of keyword to category")
	}

	var entries []entry
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("reading key: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}
		var label string
		if err := dec.Decode(&label); err != nil {
			return nil, fmt.Errorf("reading category for %q: %w", key, err)
		}
		entries = append(entries, entry{Keyword: key, Label: label})
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("reading JSON: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after JSON object")
	}
	return entries, nil
}

func (jsonCodec) encode(rules []model.Rule) ([]byte, error) {
	if len(rules) == 0 {
		return []byte("{}\n"), nil
	}

	var buf bytes.Buffer
	buf.WriteString("{\n")
	for i, r := range rules {
		buf.WriteString("    ")
		if err := writeJSONString(&buf, r.Keyword); err != nil {
			return nil, err
		}
		buf.WriteString(": ")
		if err := writeJSONString(&buf, string(r.Category)); err != nil {
			return nil, err
		}
		if i < len(rules)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

// writeJSONString writes s as a JSON string without HTML escaping, so Hebrew
// and '&' stay readable in the file.
func writeJSONString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encoding %q: %w", s, err)
	}
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
	return nil
}

// yamlCodec handles a top-level YAML mapping. yaml.v3 nodes keep key order.
type yamlCodec struct{}

func (yamlCodec) decode(data []byte) ([]entry, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("reading YAML: %w", err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping of keyword to category", root.Line)
	}

	entries := make([]entry, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		k, v := root.Content[i], root.Content[i+1]
		if k.Kind != yaml.ScalarNode || v.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: keyword and category must be scalars", k.Line)
		}
		entries = append(entries, entry{Keyword: k.Value, Label: v.Value})
	}
	return entries, nil
}

func (yamlCodec) encode(rules []model.Rule) ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, r := range rules {
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: r.Keyword},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: string(r.Category)},
		)
	}
	data, err := yaml.Marshal(root)
	if err != nil {
		return nil, fmt.Errorf("encoding YAML: %w", err)
	}
	return data, nil
}
