package meta

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/text/unicode/norm"

	"github.com/zeusync/thunder/internal/core/metatype"
	"github.com/zeusync/thunder/internal/core/variant"
)

type MethodKind uint8

const (
	Method MethodKind = iota
	Signal
	Slot
)

func (k MethodKind) String() string {
	switch k {
	case Signal:
		return "signal"
	case Slot:
		return "slot"
	default:
		return "method"
	}
}

// Prefix is the digit prepended to signatures in serialized links.
func (k MethodKind) Prefix() byte { return '0' + byte(k) }

// Invoker calls a method on obj. Signals have no invoker.
type Invoker func(obj any, args []variant.Value) variant.Value

type MethodDescriptor struct {
	Kind   MethodKind
	Name   string
	Return metatype.ID
	Params []metatype.ID
	Call   Invoker

	signature   string
	fingerprint uint64
}

func (m *MethodDescriptor) seal() {
	names := make([]string, len(m.Params))
	for i, p := range m.Params {
		names[i] = metatype.Name(p)
	}
	m.signature = m.Name + "(" + strings.Join(names, ",") + ")"
	m.fingerprint = Fingerprint(m.signature)
}

// Signature renders the method as "name(type,...)".
func (m *MethodDescriptor) Signature() string { return m.signature }

func (m *MethodDescriptor) Fingerprint() uint64 { return m.fingerprint }

// Invoke calls the method with args. Arguments of a different but
// convertible type are converted to the declared parameter type. A wrong
// argument count means the class tables are inconsistent with the caller
// and panics.
func (m *MethodDescriptor) Invoke(obj any, args []variant.Value) variant.Value {
	if len(args) != len(m.Params) {
		panic(fmt.Sprintf("meta: %s expects %d argument(s), got %d", m.signature, len(m.Params), len(args)))
	}
	if m.Call == nil {
		return variant.Value{}
	}
	in, copied := args, false
	for i, p := range m.Params {
		if args[i].Type() == p || !args[i].CanConvert(p) {
			continue
		}
		if !copied {
			in, copied = append([]variant.Value(nil), args...), true
		}
		in[i], _ = args[i].Convert(p)
	}
	return m.Call(obj, in)
}

// Fingerprint hashes a normalized signature.
func Fingerprint(signature string) uint64 {
	return xxhash.Sum64String(normalize(signature))
}

func normalize(signature string) string {
	s := norm.NFC.String(signature)
	if !strings.ContainsAny(s, " \t") {
		return s
	}
	return strings.Join(strings.Fields(s), "")
}

func NewSignal(name string, params ...metatype.ID) MethodDescriptor {
	return MethodDescriptor{Kind: Signal, Name: name, Params: params}
}

func NewSlot(name string, fn Invoker, params ...metatype.ID) MethodDescriptor {
	return MethodDescriptor{Kind: Slot, Name: name, Params: params, Call: fn}
}

func NewMethod(name string, ret metatype.ID, fn Invoker, params ...metatype.ID) MethodDescriptor {
	return MethodDescriptor{Kind: Method, Name: name, Return: ret, Params: params, Call: fn}
}
