package procurement

// Reports whether id is a non-empty digit string with a valid Luhn check
// digit in the last position.
func luhnValid(id string) bool {
	if len(id) < 2 {
		return false
	}

	sum := 0
	double := false
	for i := len(id) - 1; i >= 0; i-- {
		c := id[i]
		if c < '0' || c > '9' {
			return false
		}
		d := int(c - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}
