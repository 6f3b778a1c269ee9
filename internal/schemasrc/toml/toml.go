// Package toml reads a TOML schema-model document and converts it into
// the canonical model.Schema that the migration core diffs. The format
// describes entities, properties, keys, foreign keys, indexes, and
// sequences; foreign keys reference principal entities by logical name
// and are resolved in a second pass once every entity exists.
package toml

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"schemamig/internal/model"
)

// schemaFile is the top-level TOML document: [[entities]] and
// [[sequences]] are both top-level keys.
type schemaFile struct {
	Entities  []tomlEntity   `toml:"entities"`
	Sequences []tomlSequence `toml:"sequences"`
}

// Parser reads TOML schema-model files.
type Parser struct{}

// NewParser creates a new TOML schema parser.
func NewParser() *Parser {
	return &Parser{}
}

// ParseFile opens the file at the given path and parses it as a TOML
// schema model.
func (p *Parser) ParseFile(path string) (*model.Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("toml: open file %q: %w", path, err)
	}
	defer f.Close()

	return p.Parse(f)
}

// Parse reads TOML content from reader and returns the corresponding
// model.Schema.
func (p *Parser) Parse(r io.Reader) (*model.Schema, error) {
	var sf schemaFile
	if _, err := toml.NewDecoder(r).Decode(&sf); err != nil {
		return nil, fmt.Errorf("toml: decode error: %w", err)
	}

	return newConverter(&sf).convert()
}

type converter struct {
	sf       *schemaFile
	entities map[string]*model.EntityType
}

func newConverter(sf *schemaFile) *converter {
	return &converter{
		sf:       sf,
		entities: make(map[string]*model.EntityType, len(sf.Entities)),
	}
}

func (c *converter) convert() (*model.Schema, error) {
	schema := &model.Schema{
		Entities:  make([]*model.EntityType, 0, len(c.sf.Entities)),
		Sequences: make([]*model.Sequence, 0, len(c.sf.Sequences)),
	}

	for i := range c.sf.Entities {
		e, err := c.convertEntity(&c.sf.Entities[i])
		if err != nil {
			return nil, fmt.Errorf("toml: entity %q: %w", c.sf.Entities[i].Name, err)
		}
		if c.entities[e.Name] != nil {
			return nil, fmt.Errorf("toml: entity %q: duplicate name", e.Name)
		}
		c.entities[e.Name] = e
		schema.Entities = append(schema.Entities, e)
	}

	// Foreign keys reference other entities by logical name; resolve
	// them only after every entity has been built.
	for i := range c.sf.Entities {
		if err := c.resolveForeignKeys(&c.sf.Entities[i]); err != nil {
			return nil, fmt.Errorf("toml: entity %q: %w", c.sf.Entities[i].Name, err)
		}
	}

	for i := range c.sf.Sequences {
		s, err := convertSequence(&c.sf.Sequences[i])
		if err != nil {
			return nil, fmt.Errorf("toml: sequence %q: %w", c.sf.Sequences[i].Name, err)
		}
		schema.Sequences = append(schema.Sequences, s)
	}

	return schema, nil
}
