package util

import "time"

// maxBackoff caps how far the error backoff can stretch the base rate.
const maxBackoff = 10

// RateLimiter paces requests to an external API. Callers Tick before each
// request and report the outcome through UpdateRate; consecutive errors
// stretch the interval up to maxBackoff times the base rate, successes
// shrink it back.
type RateLimiter struct {
	ticker     *time.Ticker
	errorCount int
	baseRate   time.Duration
}

func NewRateLimiter(baseRate time.Duration) RateLimiter {
	rl := RateLimiter{}
	rl.baseRate = baseRate
	rl.ticker = time.NewTicker(rl.baseRate)

	return rl
}

func (rl *RateLimiter) Tick() {
	if rl.ticker != nil {
		<-rl.ticker.C
	}
}

func (rl *RateLimiter) Close() {
	if rl.ticker != nil {
		rl.ticker.Stop()
	}
}

func (rl *RateLimiter) UpdateRate(isError bool) {
	update := false
	if isError {
		if rl.errorCount < maxBackoff {
			rl.errorCount++
			update = true
		}
	} else if rl.errorCount > 0 {
		rl.errorCount--
		update = true
	}

	if update {
		tickerRate := rl.baseRate
		if rl.errorCount > 0 {
			tickerRate = rl.baseRate * time.Duration(rl.errorCount)
		}
		rl.ticker.Reset(tickerRate)
	}
}
