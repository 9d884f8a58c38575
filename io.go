// FILE: lixenwraith/globalconfig/io.go
package globalconfig

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/google/renameio/v2"
	"gopkg.in/yaml.v3"
)

// Format names a text encoding of a configuration.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// Parse decodes a configuration document in the given format, keeping the key
// order of the document.
func Parse(data []byte, format Format) (*Map, error) {
	switch format {
	case FormatJSON:
		return ParseJSON(data)
	case FormatTOML:
		return ParseTOML(data)
	case FormatYAML:
		return ParseYAML(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// ParseJSON decodes a JSON object into a Map in document key order.
// Numbers are kept as json.Number to preserve precision.
func ParseJSON(data []byte) (*Map, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber() // Preserve number precision

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("%w: JSON document is not an object", ErrNotMapping)
	}

	m, err := decodeJSONObject(dec)
	if err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse JSON: unexpected data after top-level object")
	}
	return m, nil
}

// decodeJSONObject reads entries until the closing brace, which it consumes.
func decodeJSONObject(dec *json.Decoder) (*Map, error) {
	m := NewMap()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected object key %v", tok)
		}
		value, err := decodeJSONValue(dec)
		if err != nil {
			return nil, err
		}
		m.Set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return m, nil
}

func decodeJSONValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil // string, json.Number, bool or nil
	}

	switch delim {
	case '{':
		return decodeJSONObject(dec)
	case '[':
		seq := make([]any, 0)
		for dec.More() {
			v, err := decodeJSONValue(dec)
			if err != nil {
				return nil, err
			}
			seq = append(seq, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return seq, nil
	default:
		return nil, fmt.Errorf("unexpected delimiter %q", delim)
	}
}

// UnmarshalJSON replaces the contents of m with a JSON object in document order.
func (m *Map) UnmarshalJSON(data []byte) error {
	parsed, err := ParseJSON(data)
	if err != nil {
		return err
	}
	*m = *parsed
	return nil
}

// ParseYAML decodes a YAML mapping document into a Map in document key order.
// An empty document yields an empty Map.
func ParseYAML(data []byte) (*Map, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	root := &doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return NewMap(), nil
		}
		root = root.Content[0]
	}
	if root.Kind == 0 {
		return NewMap(), nil
	}

	value, err := yamlNodeValue(root)
	if err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	m, ok := value.(*Map)
	if !ok {
		return nil, fmt.Errorf("%w: YAML document is not a mapping", ErrNotMapping)
	}
	return m, nil
}

// Alias expansion may produce at most yamlExpansionFactor times the nodes
// written in the document, and never less than yamlMinExpansion.
const (
	yamlExpansionFactor = 100
	yamlMinExpansion    = 10000
)

// yamlNodeValue converts a node tree into configuration values.
// Merge keys ("<<") contribute entries the mapping does not define itself.
func yamlNodeValue(n *yaml.Node) (any, error) {
	limit := max(yamlMinExpansion, yamlExpansionFactor*countYAMLNodes(n))
	c := &yamlConverter{limit: limit, budget: limit}
	return c.value(n)
}

// countYAMLNodes counts the nodes of the tree without following aliases.
func countYAMLNodes(n *yaml.Node) int {
	count := 1
	if n.Kind != yaml.AliasNode {
		for _, child := range n.Content {
			count += countYAMLNodes(child)
		}
	}
	return count
}

type yamlConverter struct {
	limit  int
	budget int
}

func (c *yamlConverter) value(n *yaml.Node) (any, error) {
	c.budget--
	if c.budget < 0 {
		return nil, fmt.Errorf("line %d: alias expansion exceeds %d nodes", n.Line, c.limit)
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return c.value(n.Content[0])

	case yaml.AliasNode:
		return c.value(n.Alias)

	case yaml.MappingNode:
		m := NewMap()
		var merges []*Map
		for i := 0; i+1 < len(n.Content); i += 2 {
			keyNode, valueNode := n.Content[i], n.Content[i+1]
			value, err := c.value(valueNode)
			if err != nil {
				return nil, err
			}
			if keyNode.ShortTag() == "!!merge" {
				switch mv := value.(type) {
				case *Map:
					merges = append(merges, mv)
				case []any:
					for _, e := range mv {
						if em, ok := e.(*Map); ok {
							merges = append(merges, em)
						}
					}
				}
				continue
			}
			m.Set(keyNode.Value, value)
		}
		for _, merged := range merges {
			merged.Range(func(k string, v any) bool {
				if _, exists := m.Get(k); !exists {
					m.Set(k, v)
				}
				return true
			})
		}
		return m, nil

	case yaml.SequenceNode:
		seq := make([]any, 0, len(n.Content))
		for _, child := range n.Content {
			v, err := c.value(child)
			if err != nil {
				return nil, err
			}
			seq = append(seq, v)
		}
		return seq, nil

	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return v, nil
	}

	return nil, fmt.Errorf("line %d: unsupported YAML node kind %d", n.Line, n.Kind)
}

// UnmarshalYAML replaces the contents of m with a YAML mapping in document order.
func (m *Map) UnmarshalYAML(node *yaml.Node) error {
	value, err := yamlNodeValue(node)
	if err != nil {
		return err
	}
	parsed, ok := value.(*Map)
	if !ok {
		return fmt.Errorf("%w: YAML node is not a mapping", ErrNotMapping)
	}
	*m = *parsed
	return nil
}

// MarshalYAML encodes m as a YAML mapping in insertion order.
func (m *Map) MarshalYAML() (any, error) {
	if err := checkAcyclic(m); err != nil {
		return nil, err
	}
	return yamlNode(m)
}

// ParseTOML decodes a TOML document into a Map following the key order of the
// file. Tables inside arrays of tables are ordered by key.
func ParseTOML(data []byte) (*Map, error) {
	raw := make(map[string]any)
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	// Touching each key in file order moves it behind the keys seen before it
	m := NewMap()
	for _, key := range md.Keys() {
		touchTOMLKey(m, raw, key)
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, exists := m.Get(k); !exists {
			m.Set(k, Normalize(raw[k]))
		}
	}

	return m, nil
}

func touchTOMLKey(root *Map, raw map[string]any, key toml.Key) {
	if len(key) == 0 {
		return
	}

	parent, rawParent := root, raw
	for _, segment := range key[:len(key)-1] {
		rawNext, ok := rawParent[segment].(map[string]any)
		if !ok {
			return // Parent is an array of tables or a leaf
		}
		next, exists := parent.Get(segment)
		if !exists {
			// Implicit table; its children reorder it as they are touched
			next = Normalize(rawNext)
			parent.Set(segment, next)
		}
		nextMap, ok := next.(*Map)
		if !ok {
			return
		}
		parent, rawParent = nextMap, rawNext
	}

	last := key[len(key)-1]
	if existing, exists := parent.Get(last); exists {
		parent.Delete(last)
		parent.Set(last, existing)
		return
	}
	if value, ok := rawParent[last]; ok {
		parent.Set(last, Normalize(value))
	}
}

// SerializeAs renders the configuration in the given format.
// JSON output is identical to Serialize; TOML orders keys alphabetically.
func (s *Store) SerializeAs(format Format) (string, error) {
	if format == FormatJSON {
		return s.Serialize()
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	data, err := marshalFormat(s.data, format)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// marshalFormat encodes m in the given format.
func marshalFormat(m *Map, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return encodeJSON(m)

	case FormatYAML:
		if err := checkAcyclic(m); err != nil {
			return nil, err
		}
		node, err := yamlNode(m)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(node); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSerialization, err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSerialization, err)
		}
		return buf.Bytes(), nil

	case FormatTOML:
		if err := checkAcyclic(m); err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(numbersResolved(m.ToMap())); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSerialization, err)
		}
		return buf.Bytes(), nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// yamlNode builds a node tree so mapping order survives encoding.
func yamlNode(v any) (*yaml.Node, error) {
	switch t := v.(type) {
	case *Map:
		if t == nil {
			return yamlNode(nil)
		}
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		var err error
		t.Range(func(k string, e any) bool {
			var child *yaml.Node
			if child, err = yamlNode(e); err != nil {
				return false
			}
			node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}, child)
			return true
		})
		if err != nil {
			return nil, err
		}
		return node, nil
	case json.Number:
		return yamlNode(resolveNumber(t))
	}

	switch KindOf(v) {
	case KindMapping:
		return yamlNode(Normalize(v))
	case KindSequence:
		if b, ok := v.([]byte); ok {
			return yamlNode(string(b))
		}
		rv := reflect.ValueOf(v)
		for rv.Kind() == reflect.Ptr {
			rv = rv.Elem()
		}
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for i := 0; i < rv.Len(); i++ {
			child, err := yamlNode(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, child)
		}
		return node, nil
	}

	node := &yaml.Node{}
	if err := node.Encode(v); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerialization, err)
	}
	return node, nil
}

// resolveNumber converts a json.Number to int64 or float64 for encoders without number text support.
func resolveNumber(n json.Number) any {
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}

// numbersResolved replaces json.Number values in a plain tree.
func numbersResolved(v any) any {
	switch t := v.(type) {
	case json.Number:
		return resolveNumber(t)
	case map[string]any:
		for k, e := range t {
			t[k] = numbersResolved(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = numbersResolved(e)
		}
		return t
	}
	return v
}

// Save writes the configuration to path atomically. The format follows the file
// extension and defaults to JSON.
func (s *Store) Save(path string) error {
	format := Format(detectFileFormat(path))
	if format == "" {
		format = FormatJSON
	}

	data, err := s.SerializeAs(format)
	if err != nil {
		return err
	}

	return atomicWriteFile(path, []byte(data))
}

// Dump writes the configuration to w in the given format.
func (s *Store) Dump(w io.Writer, format Format) error {
	data, err := s.SerializeAs(format)
	if err != nil {
		return err
	}
	if !strings.HasSuffix(data, "\n") {
		data += "\n"
	}
	_, err = io.WriteString(w, data)
	return err
}

// atomicWriteFile performs a durable write: temp file, fsync, rename.
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory '%s': %w", dir, err)
	}

	pendingFile, err := renameio.NewPendingFile(path, renameio.WithPermissions(0644))
	if err != nil {
		return fmt.Errorf("failed to create pending file for '%s': %w", path, err)
	}
	defer pendingFile.Cleanup()

	if _, err := pendingFile.Write(data); err != nil {
		return fmt.Errorf("failed to write pending file for '%s': %w", path, err)
	}

	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("failed to replace '%s': %w", path, err)
	}

	return nil
}
