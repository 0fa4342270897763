package definitions

import (
	"os"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/stash/pkg/errors"
)

// File is the on-disk layout of a definitions file. JSON files parse too.
type File struct {
	Buckets []*Bucket `json:"buckets" yaml:"buckets"`
	Items   []*Item   `json:"items" yaml:"items"`
	Moments []*Moment `json:"moments" yaml:"moments"`
}

// LoadFile reads a YAML or JSON definitions file into a Memory catalog.
func LoadFile(path string) (*Memory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	return Parse(path, data)
}

// Parse decodes definitions data. The name is only used in errors.
func Parse(name string, data []byte) (*Memory, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.WrapParse("yaml", name, err)
	}

	for _, b := range f.Buckets {
		if b == nil || b.Hash == 0 {
			return nil, errors.NewParseError("yaml", name, "bucket definition without hash", nil)
		}
	}
	for _, i := range f.Items {
		if i == nil || i.Hash == 0 {
			return nil, errors.NewParseError("yaml", name, "item definition without hash", nil)
		}
	}

	return NewMemory(
		WithBuckets(f.Buckets...),
		WithItems(f.Items...),
		WithMoments(f.Moments...),
	), nil
}
