package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/zeusync/thunder/internal/core/metatype"
	"github.com/zeusync/thunder/internal/core/variant"
	"github.com/zeusync/thunder/pkg/amath"
	"github.com/zeusync/thunder/pkg/generic"
)

// Element tags. The scalar, string, document, array and binary tags follow
// BSON; aggregates use tags from the user-defined range.
const (
	tagEnd    byte = 0x00
	tagDouble byte = 0x01
	tagString byte = 0x02
	tagObject byte = 0x03
	tagArray  byte = 0x04
	tagBinary byte = 0x05
	tagBool   byte = 0x08
	tagNull   byte = 0x0A
	tagInt32  byte = 0x10

	tagVector2    byte = 0x81
	tagVector3    byte = 0x82
	tagVector4    byte = 0x83
	tagQuaternion byte = 0x84
	tagMatrix3    byte = 0x85
	tagMatrix4    byte = 0x86
)

var aggregateTags = map[metatype.ID]byte{
	metatype.Vector2:    tagVector2,
	metatype.Vector3:    tagVector3,
	metatype.Vector4:    tagVector4,
	metatype.Quaternion: tagQuaternion,
	metatype.Matrix3:    tagMatrix3,
	metatype.Matrix4:    tagMatrix4,
}

var aggregateNames = map[byte]string{
	tagVector2:    "Vector2",
	tagVector3:    "Vector3",
	tagVector4:    "Vector4",
	tagQuaternion: "Quaternion",
	tagMatrix3:    "Matrix3",
	tagMatrix4:    "Matrix4",
}

var buffers = generic.NewHotPool(func() *bytes.Buffer {
	return new(bytes.Buffer)
}, 4).WithReset(func(b *bytes.Buffer) { b.Reset() })

// MarshalBSON encodes v as a tag byte followed by its payload. Maps and
// lists are written as length-prefixed documents with keys in sorted order.
func MarshalBSON(v variant.Value) ([]byte, error) {
	buf := buffers.Get()
	defer buffers.Put(buf)

	tag, err := tagOf(v)
	if err != nil {
		return nil, err
	}
	buf.WriteByte(tag)
	if err := writePayload(buf, tag, v); err != nil {
		return nil, err
	}
	return bytes.Clone(buf.Bytes()), nil
}

func tagOf(v variant.Value) (byte, error) {
	switch t := v.Type(); t {
	case metatype.Invalid:
		return tagNull, nil
	case metatype.Bool:
		return tagBool, nil
	case metatype.Int:
		return tagInt32, nil
	case metatype.Float:
		return tagDouble, nil
	case metatype.String:
		return tagString, nil
	case metatype.ByteArray:
		return tagBinary, nil
	case metatype.List:
		return tagArray, nil
	case metatype.Map:
		return tagObject, nil
	default:
		if tag, ok := aggregateTags[t]; ok {
			return tag, nil
		}
		return 0, fmt.Errorf("%w: %s", ErrUnsupported, v.TypeName())
	}
}

func writePayload(buf *bytes.Buffer, tag byte, v variant.Value) error {
	switch tag {
	case tagNull:
	case tagBool:
		if v.Bool() {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
	case tagInt32:
		buf.Write(binary.LittleEndian.AppendUint32(nil, uint32(v.Int())))
	case tagDouble:
		buf.Write(binary.LittleEndian.AppendUint64(nil, math.Float64bits(float64(v.Float()))))
	case tagString:
		s := v.String()
		buf.Write(binary.LittleEndian.AppendUint32(nil, uint32(len(s)+1)))
		buf.WriteString(s)
		buf.WriteByte(0)
	case tagBinary:
		b := v.Bytes()
		buf.Write(binary.LittleEndian.AppendUint32(nil, uint32(len(b))))
		buf.WriteByte(0)
		buf.Write(b)
	case tagArray:
		l := v.List()
		keys := make([]string, len(l))
		for i := range l {
			keys[i] = strconv.Itoa(i)
		}
		return writeDocument(buf, keys, func(i int) variant.Value { return l[i] })
	case tagObject:
		m := v.Map()
		keys := make([]string, 0, len(m))
		for k := range m {
			if strings.IndexByte(k, 0) >= 0 {
				return fmt.Errorf("%w: key %q contains NUL", ErrUnsupported, k)
			}
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return writeDocument(buf, keys, func(i int) variant.Value { return m[keys[i]] })
	default:
		f := v.Interface().(amath.Flattener).Floats()
		buf.Write(binary.LittleEndian.AppendUint32(nil, uint32(len(f))))
		for _, x := range f {
			buf.Write(binary.LittleEndian.AppendUint32(nil, math.Float32bits(x)))
		}
	}
	return nil
}

func writeDocument(buf *bytes.Buffer, keys []string, at func(int) variant.Value) error {
	start := buf.Len()
	buf.Write([]byte{0, 0, 0, 0})
	for i, k := range keys {
		e := at(i)
		tag, err := tagOf(e)
		if err != nil {
			return err
		}
		buf.WriteByte(tag)
		buf.WriteString(k)
		buf.WriteByte(0)
		if err := writePayload(buf, tag, e); err != nil {
			return err
		}
	}
	buf.WriteByte(tagEnd)
	binary.LittleEndian.PutUint32(buf.Bytes()[start:], uint32(buf.Len()-start))
	return nil
}

// UnmarshalBSON decodes data produced by MarshalBSON.
func UnmarshalBSON(data []byte) (variant.Value, error) {
	r := &bsonReader{data: data}
	tag, err := r.byte()
	if err != nil {
		return variant.Value{}, err
	}
	v, err := r.payload(tag)
	if err != nil {
		return variant.Value{}, err
	}
	if r.pos != len(r.data) {
		return variant.Value{}, fmt.Errorf("%w: %d trailing bytes", ErrMalformed, len(r.data)-r.pos)
	}
	return v, nil
}

type bsonReader struct {
	data []byte
	pos  int
}

func (r *bsonReader) take(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.data) {
		return nil, fmt.Errorf("%w: truncated at offset %d", ErrMalformed, r.pos)
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *bsonReader) byte() (byte, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *bsonReader) uint32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *bsonReader) cstring() (string, error) {
	end := bytes.IndexByte(r.data[r.pos:], 0)
	if end < 0 {
		return "", fmt.Errorf("%w: unterminated name at offset %d", ErrMalformed, r.pos)
	}
	s := string(r.data[r.pos : r.pos+end])
	r.pos += end + 1
	return s, nil
}

func (r *bsonReader) payload(tag byte) (variant.Value, error) {
	switch tag {
	case tagNull:
		return variant.Value{}, nil
	case tagBool:
		b, err := r.byte()
		if err != nil {
			return variant.Value{}, err
		}
		return variant.Bool(b != 0), nil
	case tagInt32:
		u, err := r.uint32()
		return variant.Int(int32(u)), err
	case tagDouble:
		b, err := r.take(8)
		if err != nil {
			return variant.Value{}, err
		}
		return variant.Float(float32(math.Float64frombits(binary.LittleEndian.Uint64(b)))), nil
	case tagString:
		n, err := r.uint32()
		if err != nil {
			return variant.Value{}, err
		}
		if n == 0 {
			return variant.Value{}, fmt.Errorf("%w: zero string length", ErrMalformed)
		}
		b, err := r.take(int(n))
		if err != nil {
			return variant.Value{}, err
		}
		if b[n-1] != 0 {
			return variant.Value{}, fmt.Errorf("%w: string not NUL terminated", ErrMalformed)
		}
		return variant.New(string(b[:n-1])), nil
	case tagBinary:
		n, err := r.uint32()
		if err != nil {
			return variant.Value{}, err
		}
		if _, err := r.byte(); err != nil {
			return variant.Value{}, err
		}
		b, err := r.take(int(n))
		if err != nil {
			return variant.Value{}, err
		}
		return variant.New(bytes.Clone(b)), nil
	case tagArray, tagObject:
		return r.document(tag == tagArray)
	}
	if name, ok := aggregateNames[tag]; ok {
		return r.aggregate(name)
	}
	return variant.Value{}, fmt.Errorf("%w: unknown tag 0x%02x", ErrMalformed, tag)
}

func (r *bsonReader) document(array bool) (variant.Value, error) {
	start := r.pos
	size, err := r.uint32()
	if err != nil {
		return variant.Value{}, err
	}
	end := start + int(size)
	if int(size) < 5 || end > len(r.data) {
		return variant.Value{}, fmt.Errorf("%w: bad document size %d", ErrMalformed, size)
	}

	l := variant.List{}
	m := variant.Map{}
	for {
		tag, err := r.byte()
		if err != nil {
			return variant.Value{}, err
		}
		if tag == tagEnd {
			break
		}
		key, err := r.cstring()
		if err != nil {
			return variant.Value{}, err
		}
		v, err := r.payload(tag)
		if err != nil {
			return variant.Value{}, err
		}
		if array {
			if key != strconv.Itoa(len(l)) {
				return variant.Value{}, fmt.Errorf("%w: array key %q out of order", ErrMalformed, key)
			}
			l = append(l, v)
		} else {
			m[key] = v
		}
	}
	if r.pos != end {
		return variant.Value{}, fmt.Errorf("%w: document size mismatch", ErrMalformed)
	}
	if array {
		return variant.New(l), nil
	}
	return variant.New(m), nil
}

func (r *bsonReader) aggregate(name string) (variant.Value, error) {
	n, err := r.uint32()
	if err != nil {
		return variant.Value{}, err
	}
	if int(n) != amath.Components(name) {
		return variant.Value{}, fmt.Errorf("%w: %s with %d components", ErrMalformed, name, n)
	}
	f := make([]float32, n)
	for i := range f {
		u, err := r.uint32()
		if err != nil {
			return variant.Value{}, err
		}
		f[i] = math.Float32frombits(u)
	}
	v, ok := variant.New(variant.FloatList(f)).Convert(metatype.IDOf(name))
	if !ok {
		return variant.Value{}, fmt.Errorf("%w: cannot build %s", ErrMalformed, name)
	}
	return v, nil
}
