package templates

import (
	"strconv"
)

// itoa converts an int64 to a string, used for building URL paths and ids.
func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}

// optInt renders a possibly-missing number; missing values render blank.
func optInt(n *int64) string {
	if n == nil {
		return ""
	}
	return itoa(*n)
}

func paperURL(id int64, suffix string) string {
	return "/papers/" + itoa(id) + suffix
}
