package domain

import "encoding/base64"

// ConversationKey is the unordered pair {A, B} of two identities.
// Lo is always the lexicographically smaller identity.
type ConversationKey struct {
	Lo Identity
	Hi Identity
}

func NewConversationKey(a, b Identity) ConversationKey {
	if b < a {
		a, b = b, a
	}
	return ConversationKey{Lo: a, Hi: b}
}

// Includes reports whether id is one of the two parties.
func (k ConversationKey) Includes(id Identity) bool {
	return k.Lo == id || k.Hi == id
}

// Other returns the party that is not id.
func (k ConversationKey) Other(id Identity) Identity {
	if k.Lo == id {
		return k.Hi
	}
	return k.Lo
}

// String encodes the pair so it can be embedded in storage keys.
// The encoding never contains ':' or '.', whatever the identities contain.
func (k ConversationKey) String() string {
	return base64.RawURLEncoding.EncodeToString([]byte(k.Lo)) + "." +
		base64.RawURLEncoding.EncodeToString([]byte(k.Hi))
}
