package models

import (
	"math/rand/v2"
	"strconv"
	"time"
)

// TimeLayout is the ISO-8601 form used for every createdAt value. Fixed
// millisecond precision keeps string order equal to time order.
const TimeLayout = "2006-01-02T15:04:05.000Z"

// Timestamp formats t in TimeLayout, in UTC.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ValidTimestamp reports whether s is in TimeLayout.
func ValidTimestamp(s string) bool {
	_, err := time.Parse(TimeLayout, s)
	return err == nil
}

func base36(n int64) string {
	return strconv.FormatInt(n, 36)
}

const base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// RandomBase36 returns n random characters from [0-9a-z].
func RandomBase36(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = base36Alphabet[rand.IntN(len(base36Alphabet))]
	}
	return string(b)
}
