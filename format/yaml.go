package format

import (
	"bytes"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/confclass/confclass"
)

// YAMLFormat reads and writes YAML configuration files. Documents go
// through yaml.Node so mapping order survives both directions; nulls are
// explicit.
type YAMLFormat struct{}

// YAML returns the YAML format adapter.
func YAML() *YAMLFormat { return &YAMLFormat{} }

// Read loads the document at path. A missing file is reported as
// (nil, nil); an empty file reads as an empty document.
func (f *YAMLFormat) Read(path string) (*confclass.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return confclass.NewDocument(), nil
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return confclass.NewDocument(), nil
	}
	v, err := nodeValue(root.Content[0])
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	doc, ok := v.(*confclass.Document)
	if !ok {
		return nil, fmt.Errorf("parsing %s: top-level value must be a mapping", path)
	}
	return doc, nil
}

// Write overwrites path with the document.
func (f *YAMLFormat) Write(path string, doc *confclass.Document) error {
	node, err := valueNode(doc)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func nodeValue(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.MappingNode:
		doc := confclass.NewDocument()
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := nodeValue(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			doc.Set(n.Content[i].Value, v)
		}
		return doc, nil
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := nodeValue(c)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.ScalarNode:
		switch n.Tag {
		case "!!null":
			return nil, nil
		case "!!bool":
			return strconv.ParseBool(n.Value)
		case "!!int":
			return strconv.ParseInt(n.Value, 0, 64)
		case "!!float":
			return strconv.ParseFloat(n.Value, 64)
		default:
			return n.Value, nil
		}
	case yaml.AliasNode:
		return nodeValue(n.Alias)
	}
	return nil, fmt.Errorf("unsupported YAML node kind %v", n.Kind)
}

func valueNode(v any) (*yaml.Node, error) {
	switch t := v.(type) {
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	case *confclass.Document:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range t.Keys() {
			e, _ := t.Get(k)
			vn, err := valueNode(e)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}, vn)
		}
		return node, nil
	case []any:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, e := range t {
			vn, err := valueNode(e)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, vn)
		}
		return node, nil
	case string:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: t}, nil
	case bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(t)}, nil
	case int64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(t, 10)}, nil
	case float64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: strconv.FormatFloat(t, 'g', -1, 64)}, nil
	default:
		return nil, fmt.Errorf("cannot encode %T into YAML", v)
	}
}
