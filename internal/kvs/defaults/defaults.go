// Package defaults implements the read-only defaults overlay (C2): a map
// loaded once at instance open from kvs_<instance_id>_default.json and
// never rewritten afterward.
package defaults

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kvsdriver/kvs/internal/kvs/kvserr"
	"github.com/kvsdriver/kvs/internal/kvs/value"
)

// Policy controls whether a missing defaults file is acceptable at Load.
type Policy int

const (
	Optional Policy = iota
	Required
)

// Defaults is the immutable, read-only map loaded for one instance.
type Defaults struct {
	values map[string]value.Value
}

// Path returns the defaults file path for instance id within dir.
func Path(dir string, instanceID uint32) string {
	return filepath.Join(dir, fmt.Sprintf("kvs_%d_default.json", instanceID))
}

// Load reads and parses the defaults file for instanceID within dir.
//
//   - file absent, policy Required  -> KvsFileReadError (fatal)
//   - file absent, policy Optional  -> empty Defaults, no error
//   - file present, unreadable      -> KvsFileReadError
//   - file present, invalid JSON    -> JsonParserError
func Load(dir string, instanceID uint32, policy Policy) (*Defaults, error) {
	path := Path(dir, instanceID)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if policy == Required {
				return nil, kvserr.Wrap(kvserr.KvsFileReadError,
					fmt.Sprintf("file %q could not be read", path), err)
			}
			return &Defaults{values: map[string]value.Value{}}, nil
		}
		return nil, kvserr.Wrap(kvserr.KvsFileReadError,
			fmt.Sprintf("file %q could not be read", path), err)
	}

	values, err := value.DecodeMap(data)
	if err != nil {
		return nil, kvserr.Wrap(kvserr.JsonParserError,
			fmt.Sprintf("file %q could not be read", path), err)
	}

	return &Defaults{values: values}, nil
}

// Get returns the default value for k, or KeyNotFound if absent. The
// returned value is cloned so a caller mutating an array/object result
// can't reach back into the shared defaults map.
func (d *Defaults) Get(k string) (value.Value, error) {
	v, ok := d.values[k]
	if !ok {
		return value.Value{}, kvserr.New(kvserr.KeyNotFound, fmt.Sprintf("key not found: %q", k))
	}
	return v.Clone(), nil
}

// Has reports whether k has a default value.
func (d *Defaults) Has(k string) bool {
	_, ok := d.values[k]
	return ok
}

// Keys returns every key with a default value, in no particular order.
func (d *Defaults) Keys() []string {
	keys := make([]string, 0, len(d.values))
	for k := range d.values {
		keys = append(keys, k)
	}
	return keys
}

// Len returns the number of default values loaded.
func (d *Defaults) Len() int {
	return len(d.values)
}
