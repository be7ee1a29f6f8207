package core

// DirectRoomID derives the canonical room id for a two-party conversation:
// "dm:" plus the participant ids sorted lexicographically, colon separated.
// Both parties compute the same id regardless of argument order. The core
// places no structural constraint on room ids; this is a convention for
// callers.
func DirectRoomID(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return "dm:" + a + ":" + b
}
