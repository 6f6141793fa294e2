package aggregator

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/democosm/hcfabric/cell"
	"github.com/democosm/hcfabric/hctree"
)

// jsonParamSpec is the on-disk shape of one ParamSpec entry. Access is
// spelled out as the mnemonic letters from spec §3 (r/w/i/t/f) rather
// than the raw bitmask so a hand-edited schema file stays readable.
type jsonParamSpec struct {
	Path   string `json:"path"`
	PID    uint16 `json:"pid"`
	Type   string `json:"type"`
	Access string `json:"access"`
}

var schemaTypeNames = map[string]cell.TypeCode{
	"int8": cell.Int8, "uint8": cell.Uint8,
	"int16": cell.Int16, "uint16": cell.Uint16,
	"int32": cell.Int32, "uint32": cell.Uint32,
	"int64": cell.Int64, "uint64": cell.Uint64,
	"float": cell.Float, "double": cell.Double,
	"bool": cell.Bool, "string": cell.String, "ipv4": cell.IPv4,
}

// LoadSchemas reads a JSON document mapping connection name to its
// mirrored parameter list, the data-driven counterpart of the
// path->PID->type map the original's HCUtility::MapLookup resolved
// from a locally maintained map file (spec §1 places that lookup
// mechanism out of scope; LoadSchemas is the minimal stand-in a
// caller needs to drive New without hand-writing Go literals).
//
// Document shape:
//
//	{"A": [{"path": "count", "pid": 7, "type": "uint32", "access": "rw"}]}
func LoadSchemas(r io.Reader) (Schemas, error) {
	var raw map[string][]jsonParamSpec
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("aggregator: parse schema: %w", err)
	}

	out := make(Schemas, len(raw))
	for conn, specs := range raw {
		parsed := make([]ParamSpec, 0, len(specs))
		for _, s := range specs {
			typ, ok := schemaTypeNames[s.Type]
			if !ok {
				return nil, fmt.Errorf("aggregator: conn %q: unknown type %q for %q", conn, s.Type, s.Path)
			}
			access, err := parseAccess(s.Access)
			if err != nil {
				return nil, fmt.Errorf("aggregator: conn %q: %q: %w", conn, s.Path, err)
			}
			parsed = append(parsed, ParamSpec{Path: s.Path, PID: s.PID, Type: typ, Access: access})
		}
		out[conn] = parsed
	}
	return out, nil
}

func parseAccess(s string) (hctree.Access, error) {
	var a hctree.Access
	for _, c := range s {
		switch c {
		case 'r':
			a |= hctree.Readable
		case 'w':
			a |= hctree.Writable
		case 'i':
			a |= hctree.Invokable
		case 't':
			a |= hctree.TabularAccess
		case 'f':
			a |= hctree.FileAccess
		default:
			return 0, fmt.Errorf("unknown access flag %q", string(c))
		}
	}
	return a, nil
}
