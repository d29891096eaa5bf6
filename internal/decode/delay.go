package decode

import "time"

// Delay is a frame display time expressed as a ratio of milliseconds.
type Delay struct {
	Numer uint32
	Denom uint32
}

// DelayFromCentiseconds converts a GIF graphic-control delay to a Delay.
func DelayFromCentiseconds(cs uint16) Delay {
	return Delay{Numer: uint32(cs) * 10, Denom: 1}
}

// NumerDenomMs returns the numerator and denominator in milliseconds.
func (d Delay) NumerDenomMs() (uint32, uint32) {
	return d.Numer, d.Denom
}

// Nanoseconds returns numer*1_000_000/denom using integer division.
// A zero denominator yields 0.
func (d Delay) Nanoseconds() uint64 {
	if d.Denom == 0 {
		return 0
	}
	return uint64(d.Numer) * 1_000_000 / uint64(d.Denom)
}

// Duration is Nanoseconds as a time.Duration.
func (d Delay) Duration() time.Duration {
	return time.Duration(d.Nanoseconds()) // #nosec G115 -- numer*1e6 fits in int64
}
