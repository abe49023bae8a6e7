package game

import (
	"math/rand"
	"strconv"
	"time"
)

var pinRand = rand.New(rand.NewSource(time.Now().UnixNano()))

// RandomPin returns a 6-digit session identifier in [100000, 999999].
// Uniqueness across hosts is best-effort; the hub retries on local collision
// and a PinReserver can guard against collisions between instances.
func RandomPin() string {
	return strconv.Itoa(100000 + pinRand.Intn(900000))
}
