// Package tdjson speaks TDLib's JSON interface: it encodes requests,
// decodes responses and updates, and drives a transport such as the
// native libtdjson client.
package tdjson

import (
	"fmt"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// Object is a decoded TDLib JSON object. The "@type" discriminator and the
// "@extra" correlation token are lifted out; the other fields are kept raw
// and decoded on access.
type Object struct {
	Type     string
	Extra    int64
	HasExtra bool

	fields map[string]jx.Raw
}

// Decode parses a single TDLib JSON object.
func Decode(data []byte) (Object, error) {
	o := Object{fields: make(map[string]jx.Raw)}
	d := jx.DecodeBytes(data)
	if err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "@type":
			s, err := d.Str()
			if err != nil {
				return errors.Wrap(err, "@type")
			}
			o.Type = s
		case "@extra":
			// Only integer tokens are ours; anything else is skipped.
			if d.Next() != jx.Number {
				return d.Skip()
			}
			n, err := d.Num()
			if err != nil {
				return errors.Wrap(err, "@extra")
			}
			if n.IsInt() {
				v, err := n.Int64()
				if err != nil {
					return errors.Wrap(err, "@extra")
				}
				o.Extra = v
				o.HasExtra = true
			}
		default:
			raw, err := d.Raw()
			if err != nil {
				return errors.Wrapf(err, "field %q", key)
			}
			o.fields[string(key)] = append(jx.Raw(nil), raw...)
		}
		return nil
	}); err != nil {
		return Object{}, errors.Wrap(err, "decode object")
	}
	if o.Type == "" {
		return Object{}, errors.New("decode object: missing @type")
	}
	return o, nil
}

// Has reports whether the object carries the named field.
func (o Object) Has(key string) bool {
	_, ok := o.fields[key]
	return ok
}

func (o Object) field(key string) (*jx.Decoder, error) {
	raw, ok := o.fields[key]
	if !ok {
		return nil, &FieldError{Type: o.Type, Field: key}
	}
	return jx.DecodeBytes(raw), nil
}

// String returns a string field.
func (o Object) String(key string) (string, error) {
	d, err := o.field(key)
	if err != nil {
		return "", err
	}
	s, err := d.Str()
	if err != nil {
		return "", errors.Wrapf(err, "%s.%s", o.Type, key)
	}
	return s, nil
}

// Int64 returns an integer field. TDLib encodes 64-bit values as strings
// in some objects, so both forms are accepted.
func (o Object) Int64(key string) (int64, error) {
	d, err := o.field(key)
	if err != nil {
		return 0, err
	}
	if d.Next() == jx.String {
		s, err := d.Str()
		if err != nil {
			return 0, errors.Wrapf(err, "%s.%s", o.Type, key)
		}
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, errors.Wrapf(err, "%s.%s", o.Type, key)
		}
		return v, nil
	}
	v, err := d.Int64()
	if err != nil {
		return 0, errors.Wrapf(err, "%s.%s", o.Type, key)
	}
	return v, nil
}

// Bool returns a boolean field.
func (o Object) Bool(key string) (bool, error) {
	d, err := o.field(key)
	if err != nil {
		return false, err
	}
	v, err := d.Bool()
	if err != nil {
		return false, errors.Wrapf(err, "%s.%s", o.Type, key)
	}
	return v, nil
}

// Object returns a nested object field.
func (o Object) Object(key string) (Object, error) {
	raw, ok := o.fields[key]
	if !ok {
		return Object{}, &FieldError{Type: o.Type, Field: key}
	}
	if raw.Type() != jx.Object {
		return Object{}, &FieldError{Type: o.Type, Field: key}
	}
	return Decode(raw)
}

// Path walks nested object fields, e.g. Path("content", "text").
func (o Object) Path(keys ...string) (Object, error) {
	cur := o
	for _, k := range keys {
		next, err := cur.Object(k)
		if err != nil {
			return Object{}, err
		}
		cur = next
	}
	return cur, nil
}

// Objects returns an array-of-objects field.
func (o Object) Objects(key string) ([]Object, error) {
	d, err := o.field(key)
	if err != nil {
		return nil, err
	}
	var out []Object
	if err := d.Arr(func(d *jx.Decoder) error {
		raw, err := d.Raw()
		if err != nil {
			return err
		}
		obj, err := Decode(raw)
		if err != nil {
			return err
		}
		out = append(out, obj)
		return nil
	}); err != nil {
		return nil, errors.Wrapf(err, "%s.%s", o.Type, key)
	}
	return out, nil
}

// FieldError reports a missing or mistyped field.
type FieldError struct {
	Type  string
	Field string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: missing field %q", e.Type, e.Field)
}

// Error is a TDLib "error" object returned in place of a result.
type Error struct {
	Code    int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("tdlib error %d: %s", e.Code, e.Message)
}

// AsError converts an "error" object into *Error. It returns nil for any
// other object type.
func AsError(o Object) *Error {
	if o.Type != TypeError {
		return nil
	}
	code, _ := o.Int64("code")
	msg, _ := o.String("message")
	return &Error{Code: int(code), Message: msg}
}
