// Package period derives the key of the listing page to observe.
package period

import (
	"fmt"
	"strings"
	"time"
)

// Key returns now minus offsetDays, formatted with layout.
// The remote side publishes with a lag, so the offset makes the probe land on
// a page that should already exist.
func Key(now time.Time, offsetDays int, layout string) string {
	return now.AddDate(0, 0, -offsetDays).Format(layout)
}

// URL fills format with the base URL and the period key, in that order.
// A trailing slash on baseURL is dropped so "%s/news/%s" does not double it.
func URL(format, baseURL, key string) string {
	return fmt.Sprintf(format, strings.TrimRight(baseURL, "/"), key)
}
