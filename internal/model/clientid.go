package model

import (
	"math/rand/v2"
	"strconv"
	"strings"
)

// clientIDDigits is the number of random digits appended to the strategy
// prefix when generating a client order id.
const clientIDDigits = 6

// NewClientID generates a numeric client order id tagged with the strategy
// prefix. The prefix lets a strategy recognize its own orders among all
// open orders on the account, so multiple strategies can share one account.
func NewClientID(prefix string) int64 {
	var b strings.Builder
	b.WriteString(prefix)
	for i := 0; i < clientIDDigits; i++ {
		b.WriteByte(byte('0' + rand.IntN(10)))
	}
	id, err := strconv.ParseInt(b.String(), 10, 64)
	if err != nil {
		// Prefix is validated to be numeric at config load; this is
		// unreachable with a valid prefix.
		return 0
	}
	return id
}

// HasPrefix reports whether clientID was generated with the given strategy
// prefix.
func HasPrefix(clientID int64, prefix string) bool {
	return prefix != "" && strings.HasPrefix(strconv.FormatInt(clientID, 10), prefix)
}
