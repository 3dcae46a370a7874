package booking

import (
	"context"
	"fmt"
	"time"

	wrap "github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/logger/wrapper"
)

// generateBookingRef builds the human-readable reference, e.g.
// PR-20260828-014. The sequence restarts daily.
func (s *BookingService) generateBookingRef(ctx context.Context) (string, error) {
	now := time.Now()
	datePart := now.Format("20060102")

	count, err := s.bookings.CountByDate(ctx, now)
	if err != nil {
		return "", wrap.Error(ctx, err)
	}
	nextSequence := count + 1
	return fmt.Sprintf("PR-%s-%03d", datePart, nextSequence), nil
}
