package codec

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/thunder/internal/core/metatype"
	"github.com/zeusync/thunder/internal/core/variant"
	"github.com/zeusync/thunder/pkg/amath"
)

func sampleTree() variant.Value {
	return variant.New(variant.Map{
		"name":  variant.New("lamp"),
		"power": variant.Int(3),
		"scale": variant.Float(1.5),
		"pos":   variant.New(amath.Vector3{X: 1, Y: 2, Z: 3}),
		"blob":  variant.New([]byte("hi")),
		"tags":  variant.New(variant.List{variant.New("a"), variant.Bool(true), {}}),
	})
}

func TestJSON_Golden(t *testing.T) {
	out, err := MarshalJSONIndent(sampleTree(), "  ")
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "tree", append(out, '\n'))
}

func TestJSON_RoundTrip(t *testing.T) {
	tree := sampleTree()
	for _, indent := range []string{"", "\t"} {
		out, err := MarshalJSONIndent(tree, indent)
		require.NoError(t, err)

		back, err := UnmarshalJSON(out)
		require.NoError(t, err)
		assert.True(t, back.Equal(tree), "indent %q: %s", indent, out)
	}
}

func TestJSON_Scalars(t *testing.T) {
	tests := []struct {
		name string
		in   variant.Value
		want string
	}{
		{"invalid", variant.Value{}, "null"},
		{"bool", variant.Bool(false), "false"},
		{"int", variant.Int(-7), "-7"},
		{"whole float", variant.Float(2), "2.0"},
		{"float", variant.Float(0.25), "0.25"},
		{"string", variant.New("a\"b"), `"a\"b"`},
		{"empty list", variant.New(variant.List{}), "[]"},
		{"empty map", variant.New(variant.Map{}), "{}"},
		{"sorted keys", variant.New(variant.Map{"b": variant.Int(2), "a": variant.Int(1)}), `{"a":1,"b":2}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := MarshalJSON(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(out))
		})
	}
}

func TestJSON_Parse(t *testing.T) {
	v, err := UnmarshalJSON([]byte(`{"i": 5, "f": 5.0, "big": 5000000000, "v": {"Vector2": [1, 2]}, "m": {"Vector2": [1]}}`))
	require.NoError(t, err)

	m := v.Map()
	assert.Equal(t, metatype.Int, m["i"].Type())
	assert.Equal(t, metatype.Float, m["f"].Type())
	assert.Equal(t, metatype.Float, m["big"].Type())
	assert.Equal(t, amath.Vector2{X: 1, Y: 2}, variant.As[amath.Vector2](m["v"]))
	assert.Equal(t, metatype.Map, m["m"].Type(), "wrong arity stays a map")
}

func TestJSON_OneKeyMaps(t *testing.T) {
	v, err := UnmarshalJSON([]byte(`{"b": {"ByteArray": "aGk="}, "n": {"ByteArray": 3}, "v": {"Vector3": [1, 2, 3]}, "k": {"Vector3": "x"}}`))
	require.NoError(t, err)

	m := v.Map()
	assert.Equal(t, []byte("hi"), m["b"].Bytes(), "wrapper shape decodes as bytes")
	assert.Equal(t, metatype.Map, m["n"].Type())
	assert.Equal(t, metatype.Vector3, m["v"].Type(), "wrapper shape decodes as the aggregate")
	assert.Equal(t, metatype.Map, m["k"].Type())
}

func TestJSON_Malformed(t *testing.T) {
	for _, in := range []string{``, `{`, `[1,`, `{"a":1} 2`, `tru`} {
		_, err := UnmarshalJSON([]byte(in))
		assert.ErrorIs(t, err, ErrMalformed, "input %q", in)
	}
}

func TestBSON_Vector3(t *testing.T) {
	v := variant.New(amath.Vector3{X: 1, Y: 2, Z: 3})

	out, err := MarshalBSON(v)
	require.NoError(t, err)
	assert.Equal(t, byte(tagVector3), out[0])
	assert.Len(t, out, 1+4+3*4)

	back, err := UnmarshalBSON(out)
	require.NoError(t, err)
	assert.Equal(t, metatype.Vector3, back.Type())
	assert.Equal(t, amath.Vector3{X: 1, Y: 2, Z: 3}, variant.As[amath.Vector3](back))
}

func TestBSON_RoundTrip(t *testing.T) {
	tree := variant.New(variant.Map{
		"tree":   sampleTree(),
		"matrix": variant.New(amath.Identity4()),
		"quat":   variant.New(amath.Quaternion{W: 1}),
	})

	out, err := MarshalBSON(tree)
	require.NoError(t, err)

	back, err := UnmarshalBSON(out)
	require.NoError(t, err)
	assert.True(t, back.Equal(tree))

	again, err := MarshalBSON(back)
	require.NoError(t, err)
	assert.Equal(t, out, again, "encoding is deterministic")
}

func TestBSON_AggregatesUseListConversion(t *testing.T) {
	for _, id := range []metatype.ID{
		metatype.Vector2, metatype.Vector3, metatype.Vector4,
		metatype.Quaternion, metatype.Matrix3, metatype.Matrix4,
	} {
		name := metatype.Name(id)
		t.Run(name, func(t *testing.T) {
			f := make([]float32, amath.Components(name))
			for i := range f {
				f[i] = float32(i) + 0.25
			}
			want, ok := variant.New(variant.FloatList(f)).Convert(id)
			require.True(t, ok)

			out, err := MarshalBSON(want)
			require.NoError(t, err)
			back, err := UnmarshalBSON(out)
			require.NoError(t, err)
			assert.Equal(t, id, back.Type())
			assert.True(t, back.Equal(want))

			text, err := MarshalJSON(want)
			require.NoError(t, err)
			fromJSON, err := UnmarshalJSON(text)
			require.NoError(t, err)
			assert.True(t, back.Equal(fromJSON), "both codecs build aggregates the same way")
		})
	}
}

func TestBSON_Malformed(t *testing.T) {
	good, err := MarshalBSON(sampleTree())
	require.NoError(t, err)

	tests := map[string][]byte{
		"empty":       nil,
		"truncated":   good[:len(good)-3],
		"trailing":    append(append([]byte{}, good...), 0),
		"unknown tag": {0x7f},
		"bad size":    {tagObject, 0xff, 0, 0, 0, 0},
		"vector size": {tagVector2, 3, 0, 0, 0},
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := UnmarshalBSON(in)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestBSON_Unsupported(t *testing.T) {
	_, err := MarshalBSON(variant.New(variant.Map{"a\x00b": variant.Int(1)}))
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestFormat(t *testing.T) {
	f, err := FormatOf("scene.JSON")
	require.NoError(t, err)
	assert.Equal(t, JSON, f)

	f, err = FormatOf("/tmp/scene.bson")
	require.NoError(t, err)
	assert.Equal(t, BSON, f)

	_, err = FormatOf("scene.xml")
	assert.ErrorIs(t, err, ErrUnknown)

	for _, f := range []Format{JSON, BSON} {
		out, err := Encode(f, sampleTree())
		require.NoError(t, err)
		back, err := Decode(f, out)
		require.NoError(t, err)
		assert.True(t, back.Equal(sampleTree()), "format %s", f)
	}

	_, err = Encode("xml", variant.Value{})
	assert.ErrorIs(t, err, ErrUnknown)
}

func TestCodec_RoundTripProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	build := func(ints []int32, floats []float32, strs []string) variant.Value {
		l := variant.List{}
		for _, i := range ints {
			l = append(l, variant.Int(i))
		}
		for _, f := range floats {
			l = append(l, variant.Float(f))
		}
		m := variant.Map{}
		for _, s := range strs {
			m[s] = variant.New(s)
		}
		return variant.New(variant.Map{"list": variant.New(l), "map": variant.New(m)})
	}
	roundTrips := func(f Format, v variant.Value) bool {
		out, err := Encode(f, v)
		if err != nil {
			return false
		}
		back, err := Decode(f, out)
		return err == nil && back.Equal(v)
	}

	for _, f := range []Format{JSON, BSON} {
		properties.Property(string(f)+" round-trips", prop.ForAll(
			func(ints []int32, floats []float32, strs []string) bool {
				return roundTrips(f, build(ints, floats, strs))
			},
			gen.SliceOf(gen.Int32()),
			gen.SliceOf(gen.Float32Range(-1e6, 1e6)),
			gen.SliceOf(gen.AlphaString()),
		))
	}

	properties.TestingRun(t)
}
