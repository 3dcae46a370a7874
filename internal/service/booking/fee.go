package booking

// fareBreakdown computes the money fields from a seat count. The service
// fee is a percentage of the total fare, truncated by integer division.
func fareBreakdown(seats int, farePerSeat int64, feePercent int) (total, fee, grand int64) {
	total = int64(seats) * farePerSeat
	fee = total * int64(feePercent) / 100
	grand = total + fee
	return total, fee, grand
}
