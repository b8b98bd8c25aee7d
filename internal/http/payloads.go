package http

import (
	"github.com/example/room-reservations/internal/application"
	"github.com/example/room-reservations/internal/booking"
	"github.com/example/room-reservations/internal/grid"
)

// reservationPayload is the wire form of a reservation. Field names match
// the vocabulary of the booking desk's front end.
type reservationPayload struct {
	ID        int64  `json:"id"`
	Room      string `json:"sala"`
	Date      string `json:"date"`
	Start     string `json:"start"`
	End       string `json:"end"`
	Requester string `json:"persona"`
	Sector    string `json:"area"`
	Reason    string `json:"motivo"`
}

func newReservationPayload(r booking.Reservation) *reservationPayload {
	return &reservationPayload{
		ID:        r.ID,
		Room:      r.Room,
		Date:      r.Date,
		Start:     r.Start,
		End:       r.End,
		Requester: r.Requester,
		Sector:    r.Sector,
		Reason:    r.Reason,
	}
}

func reservationPayloads(reservations []booking.Reservation) []reservationPayload {
	out := make([]reservationPayload, len(reservations))
	for i, r := range reservations {
		out[i] = *newReservationPayload(r)
	}
	return out
}

// reservationRequest carries the mutable reservation fields of create and
// update requests.
type reservationRequest struct {
	Room      string `json:"sala"`
	Date      string `json:"date"`
	Start     string `json:"start"`
	End       string `json:"end"`
	Requester string `json:"persona"`
	Sector    string `json:"area"`
	Reason    string `json:"motivo"`
}

func (req reservationRequest) toInput() application.ReservationInput {
	return application.ReservationInput{
		Room:      req.Room,
		Date:      req.Date,
		Start:     req.Start,
		End:       req.End,
		Requester: req.Requester,
		Sector:    req.Sector,
		Reason:    req.Reason,
	}
}

type roomPayload struct {
	ID    string `json:"id"`
	Label string `json:"nombre"`
}

type searchResultPayload struct {
	Reservations []reservationPayload `json:"reservas"`
	Total        int                  `json:"total"`
	Page         int                  `json:"pagina"`
	TotalPages   int                  `json:"paginas"`
}

type blockPayload struct {
	Reservation reservationPayload `json:"reserva"`
	TopPx       float64            `json:"top_px"`
	HeightPx    float64            `json:"height_px"`
}

type dayPayload struct {
	Date       string         `json:"fecha"`
	Label      string         `json:"etiqueta"`
	DayOfMonth int            `json:"dia"`
	Blocks     []blockPayload `json:"bloques"`
}

type weekPayload struct {
	WeekStart string       `json:"inicio_semana"`
	Slots     []string     `json:"intervalos"`
	Days      []dayPayload `json:"dias"`
}

func newWeekPayload(week grid.Week) weekPayload {
	out := weekPayload{
		WeekStart: week.WeekStart,
		Slots:     week.Slots,
		Days:      make([]dayPayload, len(week.Days)),
	}
	for i, day := range week.Days {
		blocks := make([]blockPayload, len(day.Blocks))
		for j, block := range day.Blocks {
			blocks[j] = blockPayload{
				Reservation: *newReservationPayload(block.Reservation),
				TopPx:       block.TopPx,
				HeightPx:    block.HeightPx,
			}
		}
		out.Days[i] = dayPayload{
			Date:       day.Date,
			Label:      day.Label,
			DayOfMonth: day.DayOfMonth,
			Blocks:     blocks,
		}
	}
	return out
}
