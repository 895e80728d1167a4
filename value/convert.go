package value

import "strconv"

// StringToNum converts a string to a number, the way the macro language
// implicitly converts strings in numeric contexts.
//
// The accepted form is: optional blanks or tabs, an optional sign, decimal
// digits, optional blanks or tabs. Anything else is not a number.
// For compatibility, a string consisting of blanks only (or the empty string)
// and a lone sign are accepted and convert to 0.
// Numbers exceeding the integer range wrap around.
func StringToNum(s string) (int32, bool) {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	neg := false
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		neg = s[i] == '-'
		i++
	}
	var n int32
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		n = n*10 + int32(s[i]-'0')
		i++
	}
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	if i != len(s) {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}

// ToInt coerces a value to an integer. Integers are returned unchanged,
// strings are converted with StringToNum. Arrays and internal values do not
// convert.
func ToInt(v Value) (int32, bool) {
	switch v.tag {
	case IntTag:
		return v.n, true
	case StringTag:
		return StringToNum(v.s)
	}
	return 0, false
}

// ToString coerces a value to a string. Strings are returned unchanged,
// integers are formatted in decimal. Arrays and internal values do not
// convert.
func ToString(v Value) (string, bool) {
	switch v.tag {
	case StringTag:
		return v.s, true
	case IntTag:
		return strconv.Itoa(int(v.n)), true
	}
	return "", false
}

// IsNumeric is true for integers and for strings convertible by StringToNum.
func IsNumeric(v Value) bool {
	_, ok := ToInt(v)
	return ok
}
