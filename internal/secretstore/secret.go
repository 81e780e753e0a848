package secretstore

// Secret holds a credential value. It deliberately has no String/GoString
// that returns the raw bytes: %v and %s on a Secret print a redaction
// marker, so a handler that accidentally logs a Secret value (instead of
// calling Bytes() into a header) does not leak it — this is what backs
// spec.md §8 property 4.
type Secret struct {
	b []byte
}

// NewSecret copies b into a new Secret. The caller's slice is not
// retained.
func NewSecret(b []byte) Secret {
	cp := make([]byte, len(b))
	copy(cp, b)
	return Secret{b: cp}
}

// Bytes returns the credential bytes. Callers must not retain the
// returned slice past the request the secret was read for.
func (s Secret) Bytes() []byte {
	return s.b
}

// Empty reports whether the secret holds no bytes.
func (s Secret) Empty() bool {
	return len(s.b) == 0
}

// Wipe zeroes the underlying bytes. Call when the handler that read the
// secret is done with it, per spec.md §9's credential-lifetime guidance.
func (s Secret) Wipe() {
	for i := range s.b {
		s.b[i] = 0
	}
}

func (s Secret) String() string   { return "secretstore.Secret(redacted)" }
func (s Secret) GoString() string { return "secretstore.Secret(redacted)" }
