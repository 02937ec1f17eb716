package executor

// ParseCost extracts the numeric portion of a currency display string
// ("₦2,500" → 2500). Non-digit characters are discarded; a string with no
// digits yields zero.
func ParseCost(display string) int {
	cost := 0
	for _, r := range display {
		if r >= '0' && r <= '9' {
			cost = cost*10 + int(r-'0')
		}
	}
	return cost
}
