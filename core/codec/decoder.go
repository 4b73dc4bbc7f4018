package codec

import (
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// ErrMalformedEvent reports a payload that does not match any registered
// schema, or whose length disagrees with the schema's declared widths.
var ErrMalformedEvent = errors.New("malformed event payload")

// Event is one decoded anchor event. Fields holds raw typed values
// (uint64/int64/bool/solana.PublicKey/...) keyed by field name. The map is
// freshly allocated per decode and owned by the caller.
type Event struct {
	Name   string
	Fields map[string]interface{}
}

// Decode matches the payload's leading 8-byte discriminator against the
// registry and decodes the remaining bytes against that schema.
func (r *Registry) Decode(payload []byte) (*Event, error) {
	if len(payload) < DiscriminatorSize {
		return nil, fmt.Errorf("%w: %d bytes is shorter than a discriminator", ErrMalformedEvent, len(payload))
	}

	var discrim [DiscriminatorSize]byte
	copy(discrim[:], payload[:DiscriminatorSize])

	schema, ok := r.byDiscrim[discrim]
	if !ok {
		return nil, fmt.Errorf("%w: unknown discriminator %x", ErrMalformedEvent, discrim)
	}

	return decodeBody(schema, payload[DiscriminatorSize:])
}

// DecodeAs decodes payload positionally against the named schema, with no
// discriminator prefix expected.
func (r *Registry) DecodeAs(name string, payload []byte) (*Event, error) {
	schema, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("event schema %s not registered", name)
	}

	return decodeBody(schema, payload)
}

func decodeBody(schema *EventSchema, body []byte) (*Event, error) {
	if len(body) != schema.width {
		return nil, fmt.Errorf("%w: event %s wants %d bytes, got %d", ErrMalformedEvent, schema.Name, schema.width, len(body))
	}

	decoder := bin.NewBorshDecoder(body)

	fields := make(map[string]interface{}, len(schema.Fields))
	for _, f := range schema.Fields {
		var (
			value interface{}
			err   error
		)

		switch f.Type {
		case TypeU8:
			value, err = decoder.ReadUint8()
		case TypeU16:
			value, err = decoder.ReadUint16(bin.LE)
		case TypeU32:
			value, err = decoder.ReadUint32(bin.LE)
		case TypeU64:
			value, err = decoder.ReadUint64(bin.LE)
		case TypeI64:
			value, err = decoder.ReadInt64(bin.LE)
		case TypeBool:
			value, err = decoder.ReadBool()
		case TypePublicKey:
			var raw []byte
			raw, err = decoder.ReadNBytes(32)
			if err == nil {
				value = solana.PublicKeyFromBytes(raw)
			}
		default:
			err = fmt.Errorf("unsupported type %q", f.Type)
		}

		if err != nil {
			return nil, fmt.Errorf("%w: event %s field %s, %v", ErrMalformedEvent, schema.Name, f.Name, err)
		}

		fields[f.Name] = value
	}

	return &Event{Name: schema.Name, Fields: fields}, nil
}

func (e *Event) Uint64(name string) (uint64, error) {
	raw, ok := e.Fields[name]
	if !ok {
		return 0, fmt.Errorf("event %s has no field %s", e.Name, name)
	}

	value, ok := raw.(uint64)
	if !ok {
		return 0, fmt.Errorf("event %s field %s is %T, not u64", e.Name, name, raw)
	}
	return value, nil
}

func (e *Event) Int64(name string) (int64, error) {
	raw, ok := e.Fields[name]
	if !ok {
		return 0, fmt.Errorf("event %s has no field %s", e.Name, name)
	}

	value, ok := raw.(int64)
	if !ok {
		return 0, fmt.Errorf("event %s field %s is %T, not i64", e.Name, name, raw)
	}
	return value, nil
}

func (e *Event) Bool(name string) (bool, error) {
	raw, ok := e.Fields[name]
	if !ok {
		return false, fmt.Errorf("event %s has no field %s", e.Name, name)
	}

	value, ok := raw.(bool)
	if !ok {
		return false, fmt.Errorf("event %s field %s is %T, not bool", e.Name, name, raw)
	}
	return value, nil
}

func (e *Event) PublicKey(name string) (solana.PublicKey, error) {
	raw, ok := e.Fields[name]
	if !ok {
		return solana.PublicKey{}, fmt.Errorf("event %s has no field %s", e.Name, name)
	}

	value, ok := raw.(solana.PublicKey)
	if !ok {
		return solana.PublicKey{}, fmt.Errorf("event %s field %s is %T, not publicKey", e.Name, name, raw)
	}
	return value, nil
}
