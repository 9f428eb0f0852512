package object

import (
	"github.com/zeusync/thunder/internal/core/meta"
	"github.com/zeusync/thunder/internal/core/variant"
)

type MessageKind uint8

const (
	InvokeMessage MessageKind = iota
	DestroyMessage
)

// Message is a deferred call waiting in an entity's mailbox.
type Message struct {
	Kind   MessageKind
	Method int
	Sender *Entity
	Args   []variant.Value
}

// Emit raises signal on e. It reports whether the signal resolved.
func (e *Entity) Emit(signal string, args ...variant.Value) bool {
	i := e.class.IndexOfSignal(signal)
	if i < 0 {
		return false
	}
	e.EmitIndex(i, args...)
	return true
}

// EmitIndex raises the signal at index. Receivers sharing e's context run
// before EmitIndex returns; other receivers get a message in their
// mailbox. Links targeting a signal forward the emission.
func (e *Entity) EmitIndex(signal int, args ...variant.Value) {
	if e.blocked.Load() || !e.Alive() {
		return
	}

	e.mu.Lock()
	var links []Link
	for _, l := range e.outgoing {
		if l.Signal == signal {
			links = append(links, *l)
		}
	}
	e.mu.Unlock()

	for _, l := range links {
		r := l.Receiver
		if !r.Alive() {
			continue
		}
		m := r.class.Method(l.Method)
		if m.Kind == meta.Signal {
			r.EmitIndex(l.Method, args...)
			continue
		}
		if e.ctx == r.ctx {
			r.call(e, m, args)
			if r.ctx != nil {
				r.ctx.Delivered(Direct)
			}
			continue
		}
		r.Post(Message{Kind: InvokeMessage, Method: l.Method, Sender: e, Args: args})
		if r.ctx != nil {
			r.ctx.Delivered(Queued)
		}
	}
}

// call runs m on e with sender recorded for the duration of the call.
// Signals may carry more arguments than a slot takes; extra ones are
// dropped.
func (e *Entity) call(sender *Entity, m *meta.MethodDescriptor, args []variant.Value) variant.Value {
	if len(args) > len(m.Params) {
		args = args[:len(m.Params)]
	}
	prev := e.sender.Swap(sender)
	defer e.sender.Store(prev)
	return m.Invoke(e.self, args)
}

// Invoke calls a method by name or signature. Invoking a signal emits it.
// Unknown methods yield an invalid value.
func (e *Entity) Invoke(method string, args ...variant.Value) variant.Value {
	i := e.class.IndexOfMethod(method)
	if i < 0 {
		return variant.Value{}
	}
	m := e.class.Method(i)
	if m.Kind == meta.Signal {
		e.EmitIndex(i, args...)
		return variant.Value{}
	}
	return e.call(nil, m, args)
}

// Post appends msg to the mailbox.
func (e *Entity) Post(msg Message) {
	e.mailMu.Lock()
	e.mailbox.Push(msg)
	e.mailMu.Unlock()
}

// Pending returns the number of queued messages.
func (e *Entity) Pending() int {
	e.mailMu.Lock()
	defer e.mailMu.Unlock()
	return e.mailbox.Len()
}

// ProcessEvents drains the mailbox and returns the number of messages
// dispatched. The mailbox lock is never held during dispatch. A destroy
// message destroys e and ends the drain.
func (e *Entity) ProcessEvents() int {
	n := 0
	for {
		e.mailMu.Lock()
		msg, ok := e.mailbox.Pop()
		e.mailMu.Unlock()
		if !ok {
			return n
		}
		n++

		switch msg.Kind {
		case DestroyMessage:
			e.Destroy()
			return n
		case InvokeMessage:
			if !e.Alive() {
				continue
			}
			m := e.class.Method(msg.Method)
			if m == nil {
				continue
			}
			sender := msg.Sender
			if !sender.Alive() {
				sender = nil
			}
			e.call(sender, m, msg.Args)
		}
	}
}
