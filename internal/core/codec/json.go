package codec

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/zeusync/thunder/internal/core/metatype"
	"github.com/zeusync/thunder/internal/core/variant"
	"github.com/zeusync/thunder/pkg/amath"
)

// MarshalJSON renders v as compact JSON with map keys sorted. Floats always
// carry a decimal point or exponent so they decode back as floats.
func MarshalJSON(v variant.Value) ([]byte, error) {
	return MarshalJSONIndent(v, "")
}

// MarshalJSONIndent is MarshalJSON with one indent per nesting level.
func MarshalJSONIndent(v variant.Value, indent string) ([]byte, error) {
	w := &jsonWriter{indent: indent}
	if err := w.value(v, 0); err != nil {
		return nil, err
	}
	return w.buf.Bytes(), nil
}

type jsonWriter struct {
	buf    bytes.Buffer
	indent string
}

func (w *jsonWriter) newline(depth int) {
	if w.indent == "" {
		return
	}
	w.buf.WriteByte('\n')
	w.buf.WriteString(strings.Repeat(w.indent, depth))
}

func (w *jsonWriter) colon() {
	w.buf.WriteByte(':')
	if w.indent != "" {
		w.buf.WriteByte(' ')
	}
}

func (w *jsonWriter) value(v variant.Value, depth int) error {
	switch t := v.Type(); {
	case t == metatype.Invalid:
		w.buf.WriteString("null")
	case t == metatype.Bool:
		w.buf.WriteString(strconv.FormatBool(v.Bool()))
	case t == metatype.Int:
		w.buf.WriteString(strconv.FormatInt(int64(v.Int()), 10))
	case t == metatype.Float:
		w.float(v.Float())
	case t == metatype.String:
		w.str(v.String())
	case t == metatype.ByteArray:
		return w.tagged("ByteArray", depth, func() error {
			w.str(base64.StdEncoding.EncodeToString(v.Bytes()))
			return nil
		})
	case t == metatype.List:
		return w.list(v.List(), depth)
	case t == metatype.Map:
		return w.object(v.Map(), depth)
	default:
		l, ok := v.Convert(metatype.List)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnsupported, v.TypeName())
		}
		return w.tagged(v.TypeName(), depth, func() error {
			return w.list(l.List(), depth+1)
		})
	}
	return nil
}

func (w *jsonWriter) float(f float32) {
	if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
		w.buf.WriteString("null")
		return
	}
	s := strconv.FormatFloat(float64(f), 'g', -1, 32)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	w.buf.WriteString(s)
}

func (w *jsonWriter) str(s string) {
	b, _ := json.Marshal(s)
	w.buf.Write(b)
}

func (w *jsonWriter) tagged(name string, depth int, body func() error) error {
	w.buf.WriteByte('{')
	w.newline(depth + 1)
	w.str(name)
	w.colon()
	if err := body(); err != nil {
		return err
	}
	w.newline(depth)
	w.buf.WriteByte('}')
	return nil
}

func (w *jsonWriter) list(l variant.List, depth int) error {
	w.buf.WriteByte('[')
	for i, e := range l {
		if i > 0 {
			w.buf.WriteByte(',')
		}
		w.newline(depth + 1)
		if err := w.value(e, depth+1); err != nil {
			return err
		}
	}
	if len(l) > 0 {
		w.newline(depth)
	}
	w.buf.WriteByte(']')
	return nil
}

func (w *jsonWriter) object(m variant.Map, depth int) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	w.buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			w.buf.WriteByte(',')
		}
		w.newline(depth + 1)
		w.str(k)
		w.colon()
		if err := w.value(m[k], depth+1); err != nil {
			return err
		}
	}
	if len(keys) > 0 {
		w.newline(depth)
	}
	w.buf.WriteByte('}')
	return nil
}

// UnmarshalJSON parses JSON into a Value. Integers that fit in 32 bits
// become Int, other numbers Float. An object with a single key naming an
// aggregate type and holding an array decodes as that aggregate, and
// {"ByteArray": "<base64>"} decodes as bytes. A genuine one-key map of
// that shape is indistinguishable from the wrapper and decodes the same way.
func UnmarshalJSON(data []byte) (variant.Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := readJSON(dec)
	if err != nil {
		return variant.Value{}, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return variant.Value{}, fmt.Errorf("%w: trailing data", ErrMalformed)
	}
	return v, nil
}

func readJSON(dec *json.Decoder) (variant.Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return variant.Value{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	switch t := tok.(type) {
	case nil:
		return variant.Value{}, nil
	case bool:
		return variant.Bool(t), nil
	case string:
		return variant.New(t), nil
	case json.Number:
		return number(t)
	case json.Delim:
		switch t {
		case '[':
			var l variant.List
			for dec.More() {
				e, err := readJSON(dec)
				if err != nil {
					return variant.Value{}, err
				}
				l = append(l, e)
			}
			if _, err := dec.Token(); err != nil {
				return variant.Value{}, fmt.Errorf("%w: %v", ErrMalformed, err)
			}
			if l == nil {
				l = variant.List{}
			}
			return variant.New(l), nil
		case '{':
			m := variant.Map{}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return variant.Value{}, fmt.Errorf("%w: %v", ErrMalformed, err)
				}
				key, _ := keyTok.(string)
				e, err := readJSON(dec)
				if err != nil {
					return variant.Value{}, err
				}
				m[key] = e
			}
			if _, err := dec.Token(); err != nil {
				return variant.Value{}, fmt.Errorf("%w: %v", ErrMalformed, err)
			}
			return tagged(m), nil
		}
	}
	return variant.Value{}, fmt.Errorf("%w: unexpected token %v", ErrMalformed, tok)
}

func number(n json.Number) (variant.Value, error) {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		if i, err := strconv.ParseInt(s, 10, 32); err == nil {
			return variant.Int(int32(i)), nil
		}
	}
	f, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return variant.Value{}, fmt.Errorf("%w: number %q", ErrMalformed, s)
	}
	return variant.Float(float32(f)), nil
}

// tagged turns single-key wrapper objects back into typed values. Maps
// whose key and payload do not fit a wrapper are kept as maps.
func tagged(m variant.Map) variant.Value {
	if len(m) != 1 {
		return variant.New(m)
	}
	for name, inner := range m {
		if name == "ByteArray" && inner.Type() == metatype.String {
			if b, err := base64.StdEncoding.DecodeString(inner.String()); err == nil {
				return variant.New(b)
			}
		}
		if amath.Components(name) > 0 && inner.Type() == metatype.List {
			if v, ok := inner.Convert(metatype.IDOf(name)); ok {
				return v
			}
		}
	}
	return variant.New(m)
}
