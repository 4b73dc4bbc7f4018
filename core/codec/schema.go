package codec

import (
	"crypto/sha256"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
)

//go:embed pump_fun_idl.json
var defaultIDL []byte

const DiscriminatorSize = 8

type FieldType string

const (
	TypeU8        FieldType = "u8"
	TypeU16       FieldType = "u16"
	TypeU32       FieldType = "u32"
	TypeU64       FieldType = "u64"
	TypeI64       FieldType = "i64"
	TypeBool      FieldType = "bool"
	TypePublicKey FieldType = "publicKey"
)

func (t FieldType) size() (int, bool) {
	switch t {
	case TypeU8, TypeBool:
		return 1, true
	case TypeU16:
		return 2, true
	case TypeU32:
		return 4, true
	case TypeU64, TypeI64:
		return 8, true
	case TypePublicKey:
		return 32, true
	}
	return 0, false
}

type Field struct {
	Name string    `json:"name"`
	Type FieldType `json:"type"`
}

// EventSchema is the fixed wire layout of one anchor event. Fields are
// decoded in declared order, little-endian, with no delimiters or padding.
type EventSchema struct {
	Name          string
	Discriminator [DiscriminatorSize]byte
	Fields        []Field

	width int
}

type idlDocument struct {
	Name   string `json:"name"`
	Events []struct {
		Name          string  `json:"name"`
		Discriminator []int   `json:"discriminator"`
		Fields        []Field `json:"fields"`
	} `json:"events"`
}

// Registry holds every event schema of one IDL document, keyed by
// discriminator. Built once at process start and never mutated afterwards.
type Registry struct {
	program   string
	byDiscrim map[[DiscriminatorSize]byte]*EventSchema
	byName    map[string]*EventSchema
}

// EventDiscriminator derives the anchor event discriminator,
// sha256("event:<name>")[:8].
func EventDiscriminator(name string) [DiscriminatorSize]byte {
	sum := sha256.Sum256([]byte("event:" + name))

	var out [DiscriminatorSize]byte
	copy(out[:], sum[:DiscriminatorSize])
	return out
}

// LoadIDL parses an IDL document and builds the schema registry. Unknown
// field types are rejected here so decoding never meets an unsized field.
func LoadIDL(raw []byte) (*Registry, error) {
	var doc idlDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse idl failed, %w", err)
	}

	if len(doc.Events) == 0 {
		return nil, fmt.Errorf("idl %s has no events", doc.Name)
	}

	reg := &Registry{
		program:   doc.Name,
		byDiscrim: make(map[[DiscriminatorSize]byte]*EventSchema, len(doc.Events)),
		byName:    make(map[string]*EventSchema, len(doc.Events)),
	}

	for _, ev := range doc.Events {
		schema := &EventSchema{
			Name:   ev.Name,
			Fields: ev.Fields,
		}

		if len(ev.Discriminator) == DiscriminatorSize {
			for i, b := range ev.Discriminator {
				schema.Discriminator[i] = byte(b)
			}
		} else {
			schema.Discriminator = EventDiscriminator(ev.Name)
		}

		for _, f := range ev.Fields {
			size, ok := f.Type.size()
			if !ok {
				return nil, fmt.Errorf("event %s field %s has unsupported type %q", ev.Name, f.Name, f.Type)
			}
			schema.width += size
		}

		if _, dup := reg.byDiscrim[schema.Discriminator]; dup {
			return nil, fmt.Errorf("duplicated discriminator for event %s", ev.Name)
		}

		reg.byDiscrim[schema.Discriminator] = schema
		reg.byName[ev.Name] = schema
	}

	return reg, nil
}

// LoadIDLFile loads the registry from an IDL file on disk, falling back to
// the embedded pump.fun IDL when path is empty.
func LoadIDLFile(path string) (*Registry, error) {
	if path == "" {
		return LoadIDL(defaultIDL)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read idl file failed, %w", err)
	}

	return LoadIDL(raw)
}

func (r *Registry) Program() string {
	return r.program
}

// Schema returns the schema registered under name, or nil.
func (r *Registry) Schema(name string) *EventSchema {
	return r.byName[name]
}
