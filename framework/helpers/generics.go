package helpers

// IfElse returns valueIfTrue or valueIfFalse depending on isTrue.
func IfElse[V any](isTrue bool, valueIfTrue, valueIfFalse V) V {
	if isTrue {
		return valueIfTrue
	}
	return valueIfFalse
}

// Plural returns "s" unless count is exactly 1.
func Plural(count int) string {
	return IfElse(count == 1, "", "s")
}
