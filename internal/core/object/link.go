package object

// Link is a signal connection. Signal indexes the sender's class and
// Method indexes the receiver's class.
type Link struct {
	Sender   *Entity
	Signal   int
	Receiver *Entity
	Method   int
}

// SignalSignature renders the sender side as stored in serialized links.
func (l Link) SignalSignature() string {
	m := l.Sender.class.Method(l.Signal)
	return string(m.Kind.Prefix()) + m.Signature()
}

// MethodSignature renders the receiver side as stored in serialized links.
func (l Link) MethodSignature() string {
	m := l.Receiver.class.Method(l.Method)
	return string(m.Kind.Prefix()) + m.Signature()
}

// Connect links signal on sender to method on receiver. Both names may be
// bare names or signatures. It returns false if either side fails to
// resolve or the identical link already exists.
func Connect(sender *Entity, signal string, receiver *Entity, method string) bool {
	if sender == nil || receiver == nil {
		return false
	}
	si := sender.class.IndexOfSignal(signal)
	mi := receiver.class.IndexOfMethod(method)
	if si < 0 || mi < 0 {
		return false
	}
	return ConnectIndex(sender, si, receiver, mi)
}

// ConnectIndex is Connect with resolved indices.
func ConnectIndex(sender *Entity, signal int, receiver *Entity, method int) bool {
	if !sender.Alive() || !receiver.Alive() {
		return false
	}
	l := &Link{Sender: sender, Signal: signal, Receiver: receiver, Method: method}

	unlock := lockPair(sender, receiver)
	defer unlock()
	// Destroy clears alive before it snapshots links under the same lock.
	if !sender.Alive() || !receiver.Alive() {
		return false
	}
	for _, o := range sender.outgoing {
		if *o == *l {
			return false
		}
	}
	sender.outgoing = append(sender.outgoing, l)
	receiver.incoming = append(receiver.incoming, l)
	return true
}

// Disconnect removes the outgoing links of sender matching every non-empty
// criterion. Empty signal or method and nil receiver match anything.
// It returns the number of links removed.
func Disconnect(sender *Entity, signal string, receiver *Entity, method string) int {
	if sender == nil {
		return 0
	}
	si := -1
	if signal != "" {
		if si = sender.class.IndexOfSignal(signal); si < 0 {
			return 0
		}
	}

	sender.mu.Lock()
	var matched []*Link
	for _, l := range sender.outgoing {
		if si >= 0 && l.Signal != si {
			continue
		}
		if receiver != nil && l.Receiver != receiver {
			continue
		}
		if method != "" && l.Receiver.class.IndexOfMethod(method) != l.Method {
			continue
		}
		matched = append(matched, l)
	}
	sender.mu.Unlock()

	for _, l := range matched {
		unlink(l)
	}
	return len(matched)
}

func unlink(l *Link) {
	unlock := lockPair(l.Sender, l.Receiver)
	defer unlock()
	l.Sender.outgoing = removeLink(l.Sender.outgoing, l)
	l.Receiver.incoming = removeLink(l.Receiver.incoming, l)
}

func removeLink(links []*Link, l *Link) []*Link {
	for i, o := range links {
		if o == l {
			return append(links[:i], links[i+1:]...)
		}
	}
	return links
}

// lockPair locks both entities in creation order so that concurrent
// connects in opposite directions cannot deadlock.
func lockPair(a, b *Entity) func() {
	if a == b {
		a.mu.Lock()
		return a.mu.Unlock
	}
	first, second := a, b
	if second.seq < first.seq {
		first, second = second, first
	}
	first.mu.Lock()
	second.mu.Lock()
	return func() {
		second.mu.Unlock()
		first.mu.Unlock()
	}
}
