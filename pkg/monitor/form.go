package monitor

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/marcus/rsv/internal/dateparse"
	"github.com/marcus/rsv/internal/models"
	"github.com/marcus/rsv/internal/validate"
)

var (
	errNameRequired   = errors.New("el nombre debe tener al menos 2 caracteres")
	errInvalidPeople  = errors.New("número de personas no válido")
	errInvalidTableID = errors.New("id de mesa no válido")
)

// FormMode represents the mode of the form
type FormMode string

const (
	FormModeCreate FormMode = "create"
	FormModeEdit   FormMode = "edit"
)

// ReservationForm holds a huh form bound to string fields. Numbers and the
// table are parsed back by Input.
type ReservationForm struct {
	Mode          FormMode
	Form          *huh.Form
	ReservationID int64 // edit mode

	Nombre   string
	Telefono string
	Email    string
	Personas string
	Fecha    string
	Hora     string
	Mesa     string
	Notas    string
}

// NewReservationForm builds a form prefilled from in. id 0 means create.
func NewReservationForm(id int64, in models.ReservationInput) *ReservationForm {
	fs := &ReservationForm{
		Mode:          FormModeCreate,
		ReservationID: id,
		Nombre:        in.NombreCliente,
		Telefono:      in.Telefono,
		Email:         in.Email,
		Fecha:         in.Fecha,
		Hora:          in.Hora,
		Notas:         in.Notas,
	}
	if id != 0 {
		fs.Mode = FormModeEdit
	}
	if in.NumPersonas > 0 {
		fs.Personas = strconv.Itoa(in.NumPersonas)
	}
	if in.MesaID != nil {
		fs.Mesa = strconv.FormatInt(*in.MesaID, 10)
	}
	fs.buildForm()
	return fs
}

func (fs *ReservationForm) buildForm() {
	titleStr := "Nueva reserva"
	if fs.Mode == FormModeEdit {
		titleStr = fmt.Sprintf("Editar reserva #%d", fs.ReservationID)
	}

	guest := huh.NewGroup(
		huh.NewInput().
			Title("Nombre").
			Value(&fs.Nombre).
			Placeholder("Nombre del cliente").
			Validate(func(s string) error {
				if len([]rune(strings.TrimSpace(s))) < 2 {
					return errNameRequired
				}
				return nil
			}),
		huh.NewInput().
			Title("Teléfono").
			Value(&fs.Telefono).
			Placeholder("+34 600 000 000"),
		huh.NewInput().
			Title("Email").
			Value(&fs.Email).
			Placeholder("cliente@ejemplo.com").
			Validate(func(s string) error {
				if s != "" && !validate.Email(s) {
					return errors.New("email no válido")
				}
				return nil
			}),
	).Title(titleStr)

	booking := huh.NewGroup(
		huh.NewInput().
			Title("Personas").
			Value(&fs.Personas).
			Validate(func(s string) error {
				if n, err := strconv.Atoi(strings.TrimSpace(s)); err != nil || n < 1 {
					return errInvalidPeople
				}
				return nil
			}),
		huh.NewInput().
			Title("Fecha").
			Value(&fs.Fecha).
			Placeholder("YYYY-MM-DD, hoy, mañana, +2d").
			Validate(func(s string) error {
				_, err := dateparse.ParseDate(s)
				return err
			}),
		huh.NewInput().
			Title("Hora (UTC)").
			Value(&fs.Hora).
			Placeholder("HH:MM").
			Validate(func(s string) error {
				_, err := dateparse.ParseHour(s)
				return err
			}),
		huh.NewInput().
			Title("Mesa").
			Description("ID de mesa, vacío para asignación automática").
			Value(&fs.Mesa),
		huh.NewText().
			Title("Notas").
			Value(&fs.Notas).
			Placeholder("Alergias, ocasión especial...").
			Lines(3),
	).Title("Reserva")

	fs.Form = huh.NewForm(guest, booking).WithTheme(huh.ThemeDracula())
}

// Reopen returns a fresh form holding the same raw values
func (fs *ReservationForm) Reopen() *ReservationForm {
	next := *fs
	next.buildForm()
	return &next
}

// Input converts the form values back into a reservation input
func (fs *ReservationForm) Input() (models.ReservationInput, error) {
	in := models.ReservationInput{
		NombreCliente: strings.TrimSpace(fs.Nombre),
		Telefono:      strings.TrimSpace(fs.Telefono),
		Email:         strings.TrimSpace(fs.Email),
		Notas:         fs.Notas,
	}

	n, err := strconv.Atoi(strings.TrimSpace(fs.Personas))
	if err != nil || n < 1 {
		return in, errInvalidPeople
	}
	in.NumPersonas = n

	if in.Fecha, err = dateparse.ParseDate(fs.Fecha); err != nil {
		return in, err
	}
	if in.Hora, err = dateparse.ParseHour(fs.Hora); err != nil {
		return in, err
	}

	if mesa := strings.TrimPrefix(strings.TrimSpace(fs.Mesa), "#"); mesa != "" {
		id, err := strconv.ParseInt(mesa, 10, 64)
		if err != nil || id <= 0 {
			return in, errInvalidTableID
		}
		in.MesaID = &id
	} else if fs.Mode == FormModeEdit {
		in.ClearMesa = true
	}
	return in, nil
}
