package listview

import (
	"sort"
	"time"

	"github.com/marcus/rsv/internal/dateparse"
	"github.com/marcus/rsv/internal/models"
)

// UpcomingWindow bounds the "next hours" counter
const UpcomingWindow = 2 * time.Hour

// Summary counts the reservations of one day
type Summary struct {
	Pendientes  int `json:"pendientes"`
	Confirmadas int `json:"confirmadas"`
	Total       int `json:"total"`
	Proximas    int `json:"proximas"`
}

// Summarize counts the reservations of list that fall on the UTC day fecha.
// Proximas counts pending or confirmed ones in (now, now+2h].
func Summarize(list []models.Reservation, fecha string, now time.Time) Summary {
	var s Summary
	limit := now.Add(UpcomingWindow)
	for _, r := range list {
		if !dateparse.SameUTCDay(r.Fecha, fecha) {
			continue
		}
		s.Total++
		switch r.Estado {
		case models.StatusPending:
			s.Pendientes++
		case models.StatusConfirmed:
			s.Confirmadas++
		}
		if isLive(r.Estado) && r.Fecha.After(now) && !r.Fecha.After(limit) {
			s.Proximas++
		}
	}
	return s
}

// NextReservation returns the earliest pending or confirmed reservation
// after now.
func NextReservation(list []models.Reservation, now time.Time) (models.Reservation, bool) {
	var upcoming []models.Reservation
	for _, r := range list {
		if isLive(r.Estado) && r.Fecha.After(now) {
			upcoming = append(upcoming, r)
		}
	}
	if len(upcoming) == 0 {
		return models.Reservation{}, false
	}
	sort.SliceStable(upcoming, func(i, j int) bool { return upcoming[i].Fecha.Before(upcoming[j].Fecha) })
	return upcoming[0], true
}

func isLive(s models.ReservationStatus) bool {
	return s == models.StatusPending || s == models.StatusConfirmed
}
