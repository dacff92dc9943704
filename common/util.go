package common

// ContainsStringSlice returns true if the search string is present in the slice
func ContainsStringSlice(slice []string, search string) bool {
	for _, v := range slice {
		if v == search {
			return true
		}
	}
	return false
}

// FilterStringSlice returns a new slice with all occurrences of remove filtered out
func FilterStringSlice(slice []string, remove string) []string {
	out := make([]string, 0, len(slice))
	for _, v := range slice {
		if v != remove {
			out = append(out, v)
		}
	}
	return out
}
