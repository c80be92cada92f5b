package snapshot

import (
	"strconv"
	"strings"
)

func sanitizeErrorMessage(msg string) string {
	s := strings.Join(strings.Fields(msg), " ")
	if s == "" {
		return "error"
	}
	return s
}

// warningFor renders a page-level soft failure as one line.
func warningFor(page int, err error) string {
	return sanitizeErrorMessage("page " + strconv.Itoa(page) + ": " + err.Error())
}
