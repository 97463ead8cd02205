package common

import (
	"fmt"
	"time"
)

func GetResponseTime(init time.Time) string {
	timeDiff := time.Since(init).Milliseconds()
	return fmt.Sprintf("%dms", timeDiff)
}

// ShortStationCode pulls the 3-letter station code out of a route leg label
// like "Havana (HAV)". Returns "" when the label carries no parenthesized
// code.
func ShortStationCode(leg string) string {
	open := -1
	for i, r := range leg {
		switch r {
		case '(':
			open = i
		case ')':
			if open >= 0 && i-open == 4 {
				return leg[open+1 : i]
			}
			open = -1
		}
	}
	return ""
}
