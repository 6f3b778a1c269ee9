package toml

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"schemamig/internal/model"
)

// tomlEntity maps [[entities]].
type tomlEntity struct {
	Name        string           `toml:"name"`
	Table       string           `toml:"table"`
	Schema      string           `toml:"schema"`
	Properties  []tomlProperty   `toml:"properties"`
	PrimaryKey  *tomlKey         `toml:"primary_key"`
	Keys        []tomlKey        `toml:"keys"`
	ForeignKeys []tomlForeignKey `toml:"foreign_keys"`
	Indexes     []tomlIndex      `toml:"indexes"`
}

// tomlProperty maps [[entities.properties]].
type tomlProperty struct {
	Name                string `toml:"name"`
	Kind                string `toml:"kind"`
	Nullable            bool   `toml:"nullable"`
	MaxLength           *int   `toml:"max_length"`
	ConcurrencyToken    bool   `toml:"concurrency_token"`
	ValueGeneratedOnAdd bool   `toml:"value_generated_on_add"`
	StoreComputed       bool   `toml:"store_computed"`

	Column     string `toml:"column"`
	ColumnType string `toml:"column_type"`

	// Default accepts string, bool, or number from TOML; the converter
	// normalizes everything to a string snapshot.
	Default           any    `toml:"default"`
	DefaultExpression string `toml:"default_expression"`
}

// tomlKey maps [entities.primary_key] and [[entities.keys]].
type tomlKey struct {
	Name       string   `toml:"name"`
	Properties []string `toml:"properties"`
}

// tomlForeignKey maps [[entities.foreign_keys]].
type tomlForeignKey struct {
	Name                string   `toml:"name"`
	Properties          []string `toml:"properties"`
	Principal           string   `toml:"principal"`
	PrincipalProperties []string `toml:"principal_properties"`
	OnDelete            string   `toml:"on_delete"`
}

// tomlIndex maps [[entities.indexes]].
type tomlIndex struct {
	Name       string   `toml:"name"`
	Unique     bool     `toml:"unique"`
	Properties []string `toml:"properties"`
}

// tomlSequence maps [[sequences]].
type tomlSequence struct {
	Name        string `toml:"name"`
	Schema      string `toml:"schema"`
	Start       int64  `toml:"start"`
	Increment   int64  `toml:"increment"`
	Min         *int64 `toml:"min"`
	Max         *int64 `toml:"max"`
	NumericType string `toml:"numeric_type"`
}

var kindNames = map[string]model.Kind{
	"int16":          model.KindInt16,
	"int32":          model.KindInt32,
	"int64":          model.KindInt64,
	"uint64":         model.KindUint64,
	"byte":           model.KindByte,
	"bool":           model.KindBool,
	"float32":        model.KindFloat32,
	"float64":        model.KindFloat64,
	"decimal":        model.KindDecimal,
	"string":         model.KindString,
	"blob":           model.KindBlob,
	"datetime":       model.KindDateTime,
	"datetimeoffset": model.KindDateTimeOffset,
	"guid":           model.KindGUID,
}

func parseKind(raw string) (model.Kind, error) {
	k, ok := kindNames[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return "", fmt.Errorf("unknown kind %q", raw)
	}
	return k, nil
}

var referentialActions = map[string]model.ReferentialAction{
	"":          model.ActionNoAction,
	"NO ACTION": model.ActionNoAction,
	"CASCADE":   model.ActionCascade,
	"SET NULL":  model.ActionSetNull,
	"RESTRICT":  model.ActionRestrict,
}

func parseReferentialAction(raw string) (model.ReferentialAction, error) {
	a, ok := referentialActions[strings.ToUpper(strings.TrimSpace(raw))]
	if !ok {
		return "", fmt.Errorf("unknown on_delete action %q", raw)
	}
	return a, nil
}

func (c *converter) convertEntity(te *tomlEntity) (*model.EntityType, error) {
	if strings.TrimSpace(te.Name) == "" {
		return nil, errors.New("entity name is empty")
	}

	e := &model.EntityType{
		Name:       te.Name,
		Properties: make([]*model.Property, 0, len(te.Properties)),
	}
	if te.Table != "" {
		e.HasTable = true
		e.Table = model.SchemaName{Schema: te.Schema, Name: te.Table}
	}

	for i := range te.Properties {
		p, err := convertProperty(&te.Properties[i])
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", te.Properties[i].Name, err)
		}
		e.Properties = append(e.Properties, p)
	}

	if te.PrimaryKey != nil {
		props, err := resolveProperties(e, te.PrimaryKey.Properties)
		if err != nil {
			return nil, fmt.Errorf("primary key: %w", err)
		}
		e.PrimaryKey = &model.PrimaryKey{Name: te.PrimaryKey.Name, Properties: props}
	}

	for i := range te.Keys {
		props, err := resolveProperties(e, te.Keys[i].Properties)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", te.Keys[i].Name, err)
		}
		e.Keys = append(e.Keys, &model.Key{Name: te.Keys[i].Name, Properties: props})
	}

	for i := range te.Indexes {
		props, err := resolveProperties(e, te.Indexes[i].Properties)
		if err != nil {
			return nil, fmt.Errorf("index %q: %w", te.Indexes[i].Name, err)
		}
		e.Indexes = append(e.Indexes, &model.Index{
			Name:       te.Indexes[i].Name,
			Unique:     te.Indexes[i].Unique,
			Properties: props,
		})
	}

	return e, nil
}

func convertProperty(tp *tomlProperty) (*model.Property, error) {
	if strings.TrimSpace(tp.Name) == "" {
		return nil, errors.New("name is empty")
	}
	kind, err := parseKind(tp.Kind)
	if err != nil {
		return nil, err
	}

	p := &model.Property{
		Name:                tp.Name,
		Kind:                kind,
		Nullable:            tp.Nullable,
		MaxLength:           tp.MaxLength,
		ConcurrencyToken:    tp.ConcurrencyToken,
		ValueGeneratedOnAdd: tp.ValueGeneratedOnAdd,
		StoreComputed:       tp.StoreComputed,
		ColumnName:          tp.Column,
		ColumnType:          tp.ColumnType,
	}

	if tp.Default != nil {
		s := normalizeDefault(tp.Default)
		p.DefaultValue = &s
	}
	if tp.DefaultExpression != "" {
		expr := tp.DefaultExpression
		p.DefaultExpression = &expr
	}

	return p, nil
}

// resolveForeignKeys runs after every entity exists, wiring each FK's
// principal entity and principal property references.
func (c *converter) resolveForeignKeys(te *tomlEntity) error {
	e := c.entities[te.Name]
	for i := range te.ForeignKeys {
		tfk := &te.ForeignKeys[i]
		principal := c.entities[tfk.Principal]
		if principal == nil {
			return fmt.Errorf("foreign key %q: unknown principal entity %q", tfk.Name, tfk.Principal)
		}
		props, err := resolveProperties(e, tfk.Properties)
		if err != nil {
			return fmt.Errorf("foreign key %q: %w", tfk.Name, err)
		}
		principalProps, err := resolveProperties(principal, tfk.PrincipalProperties)
		if err != nil {
			return fmt.Errorf("foreign key %q: principal: %w", tfk.Name, err)
		}
		onDelete, err := parseReferentialAction(tfk.OnDelete)
		if err != nil {
			return fmt.Errorf("foreign key %q: %w", tfk.Name, err)
		}
		e.ForeignKeys = append(e.ForeignKeys, &model.ForeignKey{
			Name:                tfk.Name,
			Properties:          props,
			PrincipalEntity:     principal,
			PrincipalProperties: principalProps,
			OnDelete:            onDelete,
		})
	}
	return nil
}

func resolveProperties(e *model.EntityType, names []string) ([]*model.Property, error) {
	if len(names) == 0 {
		return nil, errors.New("property list is empty")
	}
	out := make([]*model.Property, 0, len(names))
	for _, name := range names {
		p := e.FindProperty(name)
		if p == nil {
			return nil, fmt.Errorf("unknown property %q", name)
		}
		out = append(out, p)
	}
	return out, nil
}

func convertSequence(ts *tomlSequence) (*model.Sequence, error) {
	if strings.TrimSpace(ts.Name) == "" {
		return nil, errors.New("sequence name is empty")
	}
	kind := model.KindInt64
	if ts.NumericType != "" {
		k, err := parseKind(ts.NumericType)
		if err != nil {
			return nil, err
		}
		kind = k
	}
	increment := ts.Increment
	if increment == 0 {
		increment = 1
	}
	return &model.Sequence{
		Name:        model.SchemaName{Schema: ts.Schema, Name: ts.Name},
		StartValue:  ts.Start,
		IncrementBy: increment,
		MinValue:    ts.Min,
		MaxValue:    ts.Max,
		NumericType: kind,
	}, nil
}

func normalizeDefault(v any) string {
	switch val := v.(type) {
	case bool:
		if val {
			return "TRUE"
		}
		return "FALSE"
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", val)
	}
}
