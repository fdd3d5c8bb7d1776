package hierarchy

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned by [Import] for unknown file extensions.
var ErrUnsupportedFormat = errors.New("unsupported hierarchy format")

type document struct {
	Meta  Metadata  `json:"meta,omitempty" toml:"meta,omitempty" yaml:"meta,omitempty"`
	Nodes []nodeDoc `json:"nodes" toml:"nodes" yaml:"nodes"`
}

type nodeDoc struct {
	ID      string   `json:"id" toml:"id" yaml:"id"`
	Parents []string `json:"parents,omitempty" toml:"parents,omitempty" yaml:"parents,omitempty"`
	Meta    Metadata `json:"meta,omitempty" toml:"meta,omitempty" yaml:"meta,omitempty"`
}

// build creates a hierarchy from decoded nodes. Errors name the node
// that could not be added.
func (d document) build() (*Hierarchy, error) {
	h := New(d.Meta)
	for _, n := range d.Nodes {
		if err := h.AddNode(Node{ID: n.ID, Parents: n.Parents, Meta: n.Meta}); err != nil {
			return nil, fmt.Errorf("node %q: %w", n.ID, err)
		}
	}
	return h, nil
}

func toDocument(h *Hierarchy) document {
	d := document{Nodes: make([]nodeDoc, 0, h.NodeCount())}
	if len(h.meta) > 0 {
		d.Meta = h.meta
	}
	for _, n := range h.Nodes() {
		nd := nodeDoc{ID: n.ID, Parents: n.Parents}
		if len(n.Meta) > 0 {
			nd.Meta = n.Meta
		}
		d.Nodes = append(d.Nodes, nd)
	}
	return d
}

// ReadJSON decodes a JSON hierarchy from r. It does not call
// [Hierarchy.Validate]; undeclared parents surface when linearizing.
func ReadJSON(r io.Reader) (*Hierarchy, error) {
	var d document
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return d.build()
}

// ReadTOML decodes a TOML hierarchy from r, using [[nodes]] tables.
func ReadTOML(r io.Reader) (*Hierarchy, error) {
	var d document
	if _, err := toml.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return d.build()
}

// ReadYAML decodes a YAML hierarchy from r.
func ReadYAML(r io.Reader) (*Hierarchy, error) {
	var d document
	if err := yaml.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return d.build()
}

// WriteJSON encodes h as indented JSON. Nodes keep declaration order, so the
// output is stable and can be re-read with [ReadJSON].
func WriteJSON(h *Hierarchy, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(toDocument(h)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// MarshalJSON returns the canonical JSON encoding of h.
func (h *Hierarchy) MarshalJSON() ([]byte, error) {
	return json.Marshal(toDocument(h))
}

// UnmarshalJSON replaces h with the decoded hierarchy.
func (h *Hierarchy) UnmarshalJSON(data []byte) error {
	decoded, err := ReadJSON(bytes.NewReader(data))
	if err != nil {
		return err
	}
	*h = *decoded
	return nil
}

// Hash returns the SHA-256 hex digest of the canonical JSON encoding of h.
// Equal hierarchies declared in the same order hash equally.
func Hash(h *Hierarchy) (string, error) {
	data, err := h.MarshalJSON()
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Import reads the hierarchy file at path. The codec is chosen by
// extension: .json, .toml, .yaml or .yml.
func Import(path string) (*Hierarchy, error) {
	read, err := readerFor(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h, err := read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return h, nil
}

// Export writes h as JSON to path.
func Export(h *Hierarchy, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(h, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func readerFor(path string) (func(io.Reader) (*Hierarchy, error), error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return ReadJSON, nil
	case ".toml":
		return ReadTOML, nil
	case ".yaml", ".yml":
		return ReadYAML, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}
