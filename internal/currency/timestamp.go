package currency

import (
	"errors"
	"strconv"
	"time"
)

// TimestampSize is the encoded size of a Timestamp in bytes.
const TimestampSize = 8

// standardLayout is the calendar rendering used in human-readable output.
const standardLayout = "2006-01-02 15:04:05.000 UTC"

// MaxTimestamp is the last representable instant, 9999-12-31 23:59:59.999 UTC.
const MaxTimestamp Timestamp = 253402300799999

// ErrTimestampOutOfRange is returned for instants after MaxTimestamp.
var ErrTimestampOutOfRange = errors.New("timestamp out of range")

// Timestamp is a point in time in milliseconds since the Unix epoch.
type Timestamp uint64

// Now returns the current time as a Timestamp.
func Now() Timestamp {
	return FromTime(time.Now())
}

// FromTime converts t, clamping instants before the epoch to zero.
func FromTime(t time.Time) Timestamp {
	ms := t.UnixMilli()
	if ms < 0 {
		return 0
	}
	return Timestamp(ms)
}

// FromMillis validates ms as a Timestamp.
func FromMillis(ms uint64) (Timestamp, error) {
	if Timestamp(ms) > MaxTimestamp {
		return 0, ErrTimestampOutOfRange
	}
	return Timestamp(ms), nil
}

// Days returns a duration of n days as a Timestamp offset.
func Days(n uint64) Timestamp {
	return Timestamp(n * 24 * uint64(time.Hour/time.Millisecond))
}

// Millis returns the timestamp in milliseconds.
func (t Timestamp) Millis() uint64 {
	return uint64(t)
}

// Time converts the timestamp to a UTC time.
func (t Timestamp) Time() time.Time {
	return time.UnixMilli(int64(t)).UTC()
}

// Add returns t shifted by d, saturating at zero.
func (t Timestamp) Add(d time.Duration) Timestamp {
	ms := int64(t) + d.Milliseconds()
	if ms < 0 {
		return 0
	}
	return Timestamp(ms)
}

// StandardFormat renders the timestamp as a calendar string.
func (t Timestamp) StandardFormat() string {
	return t.Time().Format(standardLayout)
}

// String renders the timestamp in milliseconds.
func (t Timestamp) String() string {
	return strconv.FormatUint(uint64(t), 10)
}

// MaxStandardFormatWidth is the width of any StandardFormat rendering.
func MaxStandardFormatWidth() int {
	return len(MaxTimestamp.StandardFormat())
}

// MaxMillisWidth is the width of the longest millisecond rendering.
func MaxMillisWidth() int {
	return len(MaxTimestamp.String())
}
