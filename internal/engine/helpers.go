package engine

import (
	"strings"
	"time"

	"signal-trading-bot/internal/gate"
)

var ist = time.FixedZone("IST", 19800) // UTC+5:30

// midnightIST is the start of the IST trading day containing t.
func midnightIST(t time.Time) time.Time {
	z := t.In(ist)
	return time.Date(z.Year(), z.Month(), z.Day(), 0, 0, 0, 0, ist)
}

func stateLabel(a gate.Activity, d gate.Direction) string {
	return string(a) + "/" + string(d)
}

func normSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
