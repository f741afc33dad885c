package mp2c

// Message is an opaque byte payload, the unit of transfer.
// The carousel never looks inside it and never mutates it.
type Message []byte

// Clone returns an independently owned copy of m.
// A nil message stays nil and an empty one stays empty.
func (m Message) Clone() Message {
	if m == nil {
		return nil
	}
	c := make(Message, len(m))
	copy(c, m)
	return c
}

// String returns the payload as a string.
func (m Message) String() string {
	return string(m)
}
