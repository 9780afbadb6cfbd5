package catalog

import (
	"fmt"
	"os"
	"reflect"

	"github.com/aretw0/ticketflow/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// document is the on-disk layout. A bare list of trails is accepted as well.
type document struct {
	Trails []map[string]any `yaml:"trails" mapstructure:"trails"`
}

// Load reads a YAML (or JSON) trail file.
//
//	trails:
//	  - seq: auth select avail_no
//	    expected: reject
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a trail document from memory.
func Parse(data []byte) (*Catalog, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	var entries []map[string]any
	switch v := raw.(type) {
	case nil:
	case []any:
		if err := mapstructure.Decode(v, &entries); err != nil {
			return nil, err
		}
	case map[string]any:
		var doc document
		if err := mapstructure.Decode(v, &doc); err != nil {
			return nil, err
		}
		entries = doc.Trails
	default:
		return nil, fmt.Errorf("unexpected document of type %T", raw)
	}

	trails := make([]domain.Trail, 0, len(entries))
	for i, entry := range entries {
		tr, err := decodeTrail(entry)
		if err != nil {
			return nil, fmt.Errorf("trail %d: %w", i, err)
		}
		trails = append(trails, tr)
	}
	return New(trails...), nil
}

func decodeTrail(entry map[string]any) (domain.Trail, error) {
	var tr domain.Trail
	var md mapstructure.Metadata
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &tr,
		Metadata:         &md,
		WeaklyTypedInput: true,
		DecodeHook:       verdictHook,
	})
	if err != nil {
		return tr, err
	}
	if err := dec.Decode(entry); err != nil {
		return tr, err
	}
	if len(md.Unused) > 0 {
		return tr, fmt.Errorf("unknown fields %v", md.Unused)
	}
	if tr.Seq == "" && tr.Expected == "" {
		return tr, fmt.Errorf("empty trail")
	}
	if _, err := domain.ParseVerdict(string(tr.Expected)); err != nil {
		return tr, err
	}
	return tr, nil
}

// verdictHook accepts booleans (true = accept) and normalises verdict casing.
func verdictHook(from, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(domain.Verdict("")) {
		return data, nil
	}
	switch v := data.(type) {
	case bool:
		return domain.VerdictOf(v), nil
	case string:
		if parsed, err := domain.ParseVerdict(v); err == nil {
			return parsed, nil
		}
	}
	return data, nil
}
