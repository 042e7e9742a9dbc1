package listview

import (
	"context"
	"fmt"
	"time"

	"github.com/marcus/rsv/internal/api"
	"github.com/marcus/rsv/internal/models"
	"github.com/marcus/rsv/internal/validate"
)

// Outcome classifies a successful create
type Outcome int

const (
	// OutcomeReserved means the backend assigned a table
	OutcomeReserved Outcome = iota
	// OutcomeManualSuggested means manual mode with a recommended table
	OutcomeManualSuggested
	// OutcomeManualNoTable means manual mode with no table free
	OutcomeManualNoTable
	// OutcomeWaitlisted means the party went to the waitlist
	OutcomeWaitlisted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeManualSuggested:
		return "manual-suggested"
	case OutcomeManualNoTable:
		return "manual-no-table"
	case OutcomeWaitlisted:
		return "waitlisted"
	default:
		return "reserved"
	}
}

// CreateOutcome is what the success view renders
type CreateOutcome struct {
	Outcome Outcome
	Result  models.CreateResult
	Message string
	// TableLabel is the assigned or suggested table, or NoTableLabel
	TableLabel string
}

// Classify maps a create response onto an outcome, its toast text, type and
// duration.
func Classify(res models.CreateResult) (CreateOutcome, models.ToastType, time.Duration) {
	name := res.Reservation.NombreCliente
	out := CreateOutcome{Result: res, TableLabel: res.Reservation.TableName()}

	switch {
	case res.Waitlist:
		out.Outcome = OutcomeWaitlisted
		out.Message = fmt.Sprintf("¡%s agregado a la lista de espera!", name)
		return out, models.ToastSuccess, 5 * time.Second
	case res.ModoManual && res.MesaSugerida != nil:
		out.Outcome = OutcomeManualSuggested
		out.TableLabel = res.MesaSugerida.Nombre
		out.Message = fmt.Sprintf("Reserva creada para %s. Se recomienda la mesa %s (%d personas). Puedes asignarla manualmente.",
			name, res.MesaSugerida.Nombre, res.MesaSugerida.Capacidad)
		return out, models.ToastInfo, 7 * time.Second
	case res.ModoManual:
		out.Outcome = OutcomeManualNoTable
		out.TableLabel = NoTableLabel
		out.Message = fmt.Sprintf("Reserva creada para %s. No hay mesas disponibles para este horario. Puedes asignar una mesa manualmente o agregar a la lista de espera.", name)
		return out, models.ToastInfo, 7 * time.Second
	}
	out.Outcome = OutcomeReserved
	if out.TableLabel == "" {
		out.TableLabel = NoTableLabel
	}
	out.Message = fmt.Sprintf("¡Reserva creada para %s!", name)
	return out, models.ToastSuccess, 5 * time.Second
}

// Create validates and submits a new reservation. Validation failures are
// returned as validate.Errors without any request being made.
func (c *Controller) Create(ctx context.Context, in models.ReservationInput) (*CreateOutcome, error) {
	if err := validate.Reservation(in, c.opts.Now()); err != nil {
		return nil, err
	}

	res, err := c.svc.CreateReservation(ctx, in)
	if err != nil {
		c.toast(api.Message(err, "No se pudo crear la reserva"), models.ToastError, 7*time.Second)
		return nil, err
	}
	if res.Reservation.NombreCliente == "" {
		res.Reservation.NombreCliente = in.NombreCliente
	}

	out, typ, d := Classify(*res)
	c.toast(out.Message, typ, d)

	if out.Outcome != OutcomeWaitlisted {
		if err := c.Refresh(ctx); err != nil {
			c.opts.Logger.Warn("reload after create", "err", err)
		}
	}
	return &out, nil
}
