package meta

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/thunder/internal/core/metatype"
	"github.com/zeusync/thunder/internal/core/variant"
)

type lamp struct {
	power float32
	calls []int32
}

func lampClasses() (base, derived *ClassDescriptor) {
	base = NewClass(Def{
		Name: "Base",
		Methods: []MethodDescriptor{
			NewSignal("destroyed"),
			{},
			NewSignal("ignored"),
		},
	})
	derived = NewClass(Def{
		Name:    "Lamp",
		Super:   base,
		Factory: func() any { return &lamp{} },
		Methods: []MethodDescriptor{
			NewSignal("changed", metatype.Int),
			NewSlot("onChanged", func(obj any, args []variant.Value) variant.Value {
				l := obj.(*lamp)
				l.calls = append(l.calls, args[0].Int())
				return variant.Value{}
			}, metatype.Int),
			NewMethod("twice", metatype.Float, func(obj any, args []variant.Value) variant.Value {
				return variant.Float(args[0].Float() * 2)
			}, metatype.Float),
		},
		Properties: []PropertyDescriptor{
			Prop("power", func(l *lamp) float32 { return l.power }, func(l *lamp, v float32) { l.power = v }),
			{Name: "wrap", Type: metatype.Int, Annotation: "enum=Wrap"},
		},
		Enums: []Enumerator{
			{Name: "Wrap", Keys: []EnumKey{{"Clamp", 0}, {"Repeat", 1}}},
		},
	})
	return base, derived
}

func TestClass_SentinelAndOffsets(t *testing.T) {
	base, lamp := lampClasses()

	require.Equal(t, 1, base.MethodCount(), "entries after the sentinel are dropped")
	assert.Equal(t, 1, lamp.MethodOffset())
	assert.Equal(t, 4, lamp.MethodCount())
	assert.Equal(t, 0, lamp.PropertyOffset())
	assert.Equal(t, 2, lamp.PropertyCount())
}

func TestClass_IndexOf(t *testing.T) {
	_, lamp := lampClasses()

	tests := []struct {
		name  string
		find  func(string) int
		query string
		want  int
	}{
		{"inherited signal", lamp.IndexOfSignal, "destroyed", 0},
		{"signal by name", lamp.IndexOfSignal, "changed", 1},
		{"signal by signature", lamp.IndexOfSignal, "changed(int)", 1},
		{"signal with prefix", lamp.IndexOfSignal, "1changed(int)", 1},
		{"signature tolerates blanks", lamp.IndexOfSignal, "changed( int )", 1},
		{"slot is not a signal", lamp.IndexOfSignal, "onChanged", -1},
		{"slot", lamp.IndexOfSlot, "2onChanged(int)", 2},
		{"wrong prefix", lamp.IndexOfSlot, "1onChanged(int)", -1},
		{"any kind", lamp.IndexOfMethod, "twice(float)", 3},
		{"wrong params", lamp.IndexOfMethod, "twice(int)", -1},
		{"unknown", lamp.IndexOfMethod, "missing", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.find(tt.query))
		})
	}
}

func TestClass_ResolveByIndex(t *testing.T) {
	_, lamp := lampClasses()

	m := lamp.Method(lamp.IndexOfMethod("destroyed"))
	require.NotNil(t, m)
	assert.Equal(t, "destroyed()", m.Signature())
	assert.Equal(t, Signal, m.Kind)

	assert.Nil(t, lamp.Method(-1))
	assert.Nil(t, lamp.Method(lamp.MethodCount()))

	p := lamp.Property(lamp.IndexOfProperty("wrap"))
	require.NotNil(t, p)
	assert.Equal(t, "enum=Wrap", p.Annotation)
	assert.False(t, p.Readable())

	e := lamp.Enumerator(lamp.IndexOfEnumerator("Wrap"))
	require.NotNil(t, e)
	v, ok := e.Value("Repeat")
	require.True(t, ok)
	assert.Equal(t, int32(1), v)
	k, ok := e.Key(0)
	require.True(t, ok)
	assert.Equal(t, "Clamp", k)
}

func TestClass_Override(t *testing.T) {
	base, _ := lampClasses()
	child := NewClass(Def{
		Name:    "Child",
		Super:   base,
		Methods: []MethodDescriptor{NewSignal("destroyed")},
	})

	assert.Equal(t, 1, child.IndexOfSignal("destroyed"), "derived declaration wins")
	assert.Equal(t, 0, base.IndexOfSignal("destroyed"))
}

func TestClass_CanCastTo(t *testing.T) {
	base, lamp := lampClasses()

	assert.True(t, lamp.CanCastTo("Lamp"))
	assert.True(t, lamp.CanCastTo("Base"))
	assert.False(t, base.CanCastTo("Lamp"))
	assert.False(t, base.Constructible())
	assert.Nil(t, base.New())
}

func TestMethod_Invoke(t *testing.T) {
	_, cls := lampClasses()
	obj := cls.New().(*lamp)

	slot := cls.Method(cls.IndexOfSlot("onChanged"))
	slot.Invoke(obj, []variant.Value{variant.Int(7)})
	slot.Invoke(obj, []variant.Value{variant.Float(2.6)})
	assert.Equal(t, []int32{7, 3}, obj.calls, "arguments convert to the declared type")

	twice := cls.Method(cls.IndexOfMethod("twice"))
	assert.Equal(t, float32(3), twice.Invoke(obj, []variant.Value{variant.Float(1.5)}).Float())

	assert.Panics(t, func() { slot.Invoke(obj, nil) })
}

func TestProperty_ReadWrite(t *testing.T) {
	_, cls := lampClasses()
	obj := cls.New().(*lamp)

	p := cls.Property(cls.IndexOfProperty("power"))
	require.Equal(t, metatype.Float, p.Type)

	p.Write(obj, variant.New("0.5"))
	assert.Equal(t, float32(0.5), obj.power)
	assert.True(t, p.Read(obj).Equal(variant.Float(0.5)))
}

type counter struct {
	n     int
	big   int64
	ratio float64
	mask  uint32
	on    bool
	tag   string
	raw   variant.Value
}

type mode string

func TestProperty_GoKinds(t *testing.T) {
	props := []PropertyDescriptor{
		Prop("n", func(c *counter) int { return c.n }, func(c *counter, v int) { c.n = v }),
		Prop("big", func(c *counter) int64 { return c.big }, func(c *counter, v int64) { c.big = v }),
		Prop("ratio", func(c *counter) float64 { return c.ratio }, func(c *counter, v float64) { c.ratio = v }),
		Prop("mask", func(c *counter) uint32 { return c.mask }, func(c *counter, v uint32) { c.mask = v }),
		Prop("on", func(c *counter) bool { return c.on }, func(c *counter, v bool) { c.on = v }),
		Prop("mode", func(c *counter) mode { return mode(c.tag) }, func(c *counter, v mode) { c.tag = string(v) }),
		Prop("raw", func(c *counter) variant.Value { return c.raw }, func(c *counter, v variant.Value) { c.raw = v }),
	}
	tests := []struct {
		prop  int
		typ   metatype.ID
		write variant.Value
		check func(c *counter) bool
	}{
		{0, metatype.Int, variant.Int(5), func(c *counter) bool { return c.n == 5 }},
		{1, metatype.Int, variant.Float(7.4), func(c *counter) bool { return c.big == 7 }},
		{2, metatype.Float, variant.Int(2), func(c *counter) bool { return c.ratio == 2 }},
		{3, metatype.Int, variant.Int(9), func(c *counter) bool { return c.mask == 9 }},
		{4, metatype.Bool, variant.Int(1), func(c *counter) bool { return c.on }},
		{5, metatype.String, variant.New("fast"), func(c *counter) bool { return c.tag == "fast" }},
		{6, metatype.Invalid, variant.New(variant.List{}), func(c *counter) bool { return c.raw.Type() == metatype.List }},
	}
	for _, tt := range tests {
		p := props[tt.prop]
		t.Run(p.Name, func(t *testing.T) {
			c := &counter{}
			assert.Equal(t, tt.typ, p.Type)
			p.Write(c, tt.write)
			assert.True(t, tt.check(c), "write reached the field")
			if tt.typ != metatype.Invalid {
				assert.Equal(t, tt.typ, p.Read(c).Type())
			}
		})
	}

	c := &counter{n: 3}
	props[0].Write(c, variant.New("not a number"))
	assert.Equal(t, 3, c.n, "failed conversions leave the field alone")
}

func TestProperty_UnsupportedTypePanics(t *testing.T) {
	assert.Panics(t, func() {
		Prop("bad", func(c *counter) struct{} { return struct{}{} }, nil)
	})
}
