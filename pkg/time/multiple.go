package time

import (
	"time"

	"github.com/JohnCGriffin/overflow" // Overflow-checked integer math.
	"github.com/pkg/errors"            // Wrap errors with context.
)

// UnixSeconds returns t as whole seconds since the Unix epoch.
// Sub-second precision is dropped.
func UnixSeconds(t time.Time) int64 {
	return t.Unix()
}

// FromUnixSeconds returns the UTC time n seconds after the Unix epoch.
func FromUnixSeconds(n int64) time.Time {
	return time.Unix(n, 0).UTC()
}

// Align returns the start of the size-long interval containing t,
// where intervals are counted from the Unix epoch:
//
//   epoch + floor((t - epoch) / size) * size
//
// Alignment is done in whole seconds. If size is less than a second,
// Align returns t normalized to UTC.
func Align(t time.Time, size time.Duration) (time.Time, error) {
	s := int64(size / time.Second)
	if s <= 0 {
		return UTC(t), nil
	}
	secs := UnixSeconds(t)
	q := secs / s
	if secs%s != 0 && secs < 0 {
		q-- // Round towards negative infinity for times before the epoch.
	}
	start, ok := overflow.Mul64(q, s)
	if !ok {
		return time.Time{}, errors.Wrapf(ErrInt64Overflow, "aligning %s to %s", t, size)
	}
	return FromUnixSeconds(start), nil
}

// NextAligned returns the start of the size-long interval after the one containing t.
func NextAligned(t time.Time, size time.Duration) (time.Time, error) {
	start, err := Align(t, size)
	if err != nil {
		return time.Time{}, err
	}
	s := int64(size / time.Second)
	if s <= 0 {
		return start, nil
	}
	next, ok := overflow.Add64(UnixSeconds(start), s)
	if !ok {
		return time.Time{}, errors.Wrapf(ErrInt64Overflow, "advancing %s by %s", start, size)
	}
	return FromUnixSeconds(next), nil
}

// IsAligned returns true if t falls exactly on an interval boundary
// (see Align). If size is less than a second, IsAligned returns false.
func IsAligned(t time.Time, size time.Duration) bool {
	if size < time.Second {
		return false
	}
	start, err := Align(t, size)
	return err == nil && start.Equal(t)
}
