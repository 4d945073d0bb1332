package domain

import "time"

// CarAnalytics is a read-only summary of one car's reservations over a period.
type CarAnalytics struct {
	CarID        CarID
	Brand        string
	Model        string
	LicensePlate string
	Period       DateRange
	TotalDays    int

	TotalReservations     int
	CompletedReservations int
	CancelledReservations int
	ActiveReservations    int
	// AverageDuration is the mean length in days of the counted reservations.
	AverageDuration float64
	// CancellationRate is a percentage, 0-100.
	CancellationRate float64

	Revenue                      Money
	AverageRevenuePerReservation Money
	AverageRevenuePerDay         Money

	DaysReserved     int
	DaysAvailable    int
	UtilizationRate  float64
	AvailabilityRate float64
}

// BuildCarAnalytics summarizes the reservations of car that overlap period.
// Revenue comes from completed reservations only. Reserved days count the
// part of each non-cancelled reservation that falls inside period, so the
// utilization rate never exceeds 100.
func BuildCarAnalytics(car *Car, period DateRange) CarAnalytics {
	a := CarAnalytics{
		CarID:        car.id,
		Brand:        car.brand,
		Model:        car.model,
		LicensePlate: car.licensePlate,
		Period:       period,
		TotalDays:    period.Days(),
	}

	var durationSum int
	reserved := make(map[time.Time]struct{})
	for _, r := range car.reservations {
		if !r.period.OverlapsWith(period) {
			continue
		}
		a.TotalReservations++
		durationSum += r.period.Days()

		switch r.status {
		case ReservationCompleted:
			a.CompletedReservations++
		case ReservationCancelled:
			a.CancelledReservations++
		case ReservationActive:
			a.ActiveReservations++
		}
		if r.status == ReservationCancelled {
			continue
		}
		for _, d := range r.period.Dates() {
			if period.Contains(d) {
				reserved[d] = struct{}{}
			}
		}
	}

	if a.TotalReservations > 0 {
		a.AverageDuration = float64(durationSum) / float64(a.TotalReservations)
		a.CancellationRate = float64(a.CancelledReservations) / float64(a.TotalReservations) * 100
	}

	currency := car.pricePerDay.Currency()
	a.Revenue = car.CalculateRevenueForPeriod(period)
	a.AverageRevenuePerReservation = Money{currency: currency}
	a.AverageRevenuePerDay = Money{currency: currency}
	if a.CompletedReservations > 0 {
		a.AverageRevenuePerReservation.amount = a.Revenue.amount / int64(a.CompletedReservations)
	}
	if a.TotalDays > 0 {
		a.AverageRevenuePerDay.amount = a.Revenue.amount / int64(a.TotalDays)
	}

	a.DaysReserved = len(reserved)
	a.DaysAvailable = a.TotalDays - a.DaysReserved
	if a.TotalDays > 0 {
		a.UtilizationRate = float64(a.DaysReserved) / float64(a.TotalDays) * 100
		a.AvailabilityRate = 100 - a.UtilizationRate
	}
	return a
}
