package domain

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	OrderNumberPrefix      = "CHG"
	orderNumberDateLayout  = "20060102"
	orderNumberSuffixLen   = 8
	maxOrderNumberAttempts = 10
)

// OrderNumberExists reports whether a candidate number is already taken.
type OrderNumberExists func(ctx context.Context, number string) (bool, error)

// OrderNumberGenerator builds CHG-YYYYMMDD-XXXXXXXX numbers. The existence check is advisory;
// storage must still enforce uniqueness.
type OrderNumberGenerator struct {
	now    func() time.Time
	random func() string
	clock  func() int64
}

// NewOrderNumberGenerator returns a generator using random UUIDs and the wall clock.
func NewOrderNumberGenerator() *OrderNumberGenerator {
	return &OrderNumberGenerator{
		now:    time.Now,
		random: randomSuffix,
		clock:  func() int64 { return time.Now().UnixNano() },
	}
}

// WithClock overrides the date source.
func (g *OrderNumberGenerator) WithClock(now func() time.Time) *OrderNumberGenerator {
	if now != nil {
		g.now = now
	}
	return g
}

// WithSuffixSource overrides the random suffix source.
func (g *OrderNumberGenerator) WithSuffixSource(random func() string) *OrderNumberGenerator {
	if random != nil {
		g.random = random
	}
	return g
}

// Generate returns a number not reported as taken by exists. After ten collisions it falls back
// to a suffix taken from a nanosecond clock reading.
func (g *OrderNumberGenerator) Generate(ctx context.Context, exists OrderNumberExists) (string, error) {
	prefix := OrderNumberPrefix + "-" + g.now().Format(orderNumberDateLayout) + "-"
	for attempt := 0; attempt < maxOrderNumberAttempts; attempt++ {
		candidate := prefix + g.random()
		if exists == nil {
			return candidate, nil
		}
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return prefix + clockSuffix(g.clock()), nil
}

func randomSuffix() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(id[:orderNumberSuffixLen])
}

func clockSuffix(nanos int64) string {
	digits := strconv.FormatInt(nanos, 10)
	if len(digits) > orderNumberSuffixLen {
		digits = digits[len(digits)-orderNumberSuffixLen:]
	}
	return digits
}
