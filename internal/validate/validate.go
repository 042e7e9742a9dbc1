// Package validate runs client-side form checks before anything is sent to
// the backend.
package validate

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"time"

	val "github.com/go-playground/validator/v10"
	"github.com/marcus/rsv/internal/dateparse"
	"github.com/marcus/rsv/internal/models"
)

var (
	validate *val.Validate

	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	hourRe  = regexp.MustCompile(`^([0-1][0-9]|2[0-3]):[0-5][0-9]$`)
)

const minPhoneLen = 6

type nowKey struct{}

// Errors maps a form field (its json name) to a message
type Errors map[string]string

func (e Errors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e[k]
	}
	return strings.Join(parts, "; ")
}

// AsErrors extracts field errors from err
func AsErrors(err error) (Errors, bool) {
	var fe Errors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// Email reports whether s looks like an email address
func Email(s string) bool {
	return s != "" && emailRe.MatchString(s)
}

// Phone reports whether s is a usable phone number
func Phone(s string) bool {
	return len(strings.TrimSpace(s)) >= minPhoneLen
}

// Contact reports whether at least one usable contact channel exists
func Contact(phone, email string) bool {
	return Phone(phone) || Email(email)
}

func init() {
	validate = val.New(val.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	must(validate.RegisterValidation("trimmin", func(fl val.FieldLevel) bool {
		var n int
		if _, err := fmt.Sscan(fl.Param(), &n); err != nil {
			return false
		}
		return len([]rune(strings.TrimSpace(fl.Field().String()))) >= n
	}))
	must(validate.RegisterValidation("phone", func(fl val.FieldLevel) bool {
		return Phone(fl.Field().String())
	}))
	must(validate.RegisterValidation("mail", func(fl val.FieldLevel) bool {
		return Email(fl.Field().String())
	}))
	must(validate.RegisterValidation("hhmm", func(fl val.FieldLevel) bool {
		return hourRe.MatchString(fl.Field().String())
	}))
	must(validate.RegisterValidation("ymd", func(fl val.FieldLevel) bool {
		_, err := time.Parse(dateparse.DateLayout, fl.Field().String())
		return err == nil
	}))

	validate.RegisterStructValidationCtx(reservationLevel, models.ReservationInput{})
	validate.RegisterStructValidationCtx(waitlistLevel, models.WaitlistInput{})
	validate.RegisterStructValidation(configLevel, models.ConfigInput{})
	validate.RegisterStructValidation(horarioLevel, models.HorarioInput{})
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

func nowFrom(ctx context.Context) (time.Time, bool) {
	now, ok := ctx.Value(nowKey{}).(time.Time)
	return now, ok
}

func reservationLevel(ctx context.Context, sl val.StructLevel) {
	in := sl.Current().Interface().(models.ReservationInput)
	if now, ok := nowFrom(ctx); ok && hourRe.MatchString(in.Hora) {
		if _, err := time.Parse(dateparse.DateLayout, in.Fecha); err == nil {
			switch {
			case in.Fecha < dateparse.Today(now):
				sl.ReportError(in.Fecha, "fecha", "Fecha", "notpast", "")
			case !dateparse.IsFuture(in.Fecha, in.Hora, now):
				sl.ReportError(in.Fecha, "fecha", "Fecha", "future", "")
			}
		}
	}
	if !Contact(in.Telefono, in.Email) {
		sl.ReportError(in.Telefono, "telefono", "Telefono", "contact", "")
	}
}

func waitlistLevel(ctx context.Context, sl val.StructLevel) {
	in := sl.Current().Interface().(models.WaitlistInput)
	if !Contact(in.Telefono, in.Email) {
		sl.ReportError(in.Telefono, "telefono", "Telefono", "contact", "")
	}
}

func configLevel(sl val.StructLevel) {
	in := sl.Current().Interface().(models.ConfigInput)
	if in.AforoTotal > 0 && in.MaxPersonasReserva > in.AforoTotal {
		sl.ReportError(in.MaxPersonasReserva, "maxPersonasReserva", "MaxPersonasReserva", "ltecapacity", "")
	}
}

func horarioLevel(sl val.StructLevel) {
	in := sl.Current().Interface().(models.HorarioInput)
	open, okOpen := minutes(in.HoraApertura)
	closing, okClose := minutes(in.HoraCierre)
	if okOpen && okClose && closing <= open {
		sl.ReportError(in.HoraCierre, "horaCierre", "HoraCierre", "afteropen", "")
	}
}

func minutes(hhmm string) (int, bool) {
	if !hourRe.MatchString(hhmm) {
		return 0, false
	}
	var h, m int
	fmt.Sscanf(hhmm, "%d:%d", &h, &m)
	return h*60 + m, true
}

// Reservation checks a new reservation. Dates must not be in the past
// relative to now.
func Reservation(in models.ReservationInput, now time.Time) error {
	ctx := context.WithValue(context.Background(), nowKey{}, now)
	return convert(validate.StructCtx(ctx, in))
}

// ReservationEdit checks an edit of an existing reservation. Past dates are
// allowed so old bookings stay editable.
func ReservationEdit(in models.ReservationInput) error {
	return convert(validate.Struct(in))
}

// Waitlist checks a waitlist edit
func Waitlist(in models.WaitlistInput) error {
	return convert(validate.Struct(in))
}

// Table checks a table payload
func Table(in models.TableInput) error {
	return convert(validate.Struct(in))
}

// Config checks restaurant settings
func Config(in models.ConfigInput) error {
	return convert(validate.Struct(in))
}

// Horario checks an opening range and that it does not overlap another
// range of the same day. The range being edited (same ID) is skipped.
func Horario(in models.HorarioInput, existing []models.Horario) error {
	if err := convert(validate.Struct(in)); err != nil {
		return err
	}
	open, _ := minutes(in.HoraApertura)
	closing, _ := minutes(in.HoraCierre)
	for _, h := range existing {
		if in.ID != 0 && h.ID == in.ID {
			continue
		}
		if h.DiaSemana != in.DiaSemana {
			continue
		}
		hOpen, ok1 := minutes(h.HoraApertura)
		hClose, ok2 := minutes(h.HoraCierre)
		if !ok1 || !ok2 {
			continue
		}
		if open < hClose && closing > hOpen {
			return Errors{"horaApertura": messageFor("horaApertura", "overlap", "")}
		}
	}
	return nil
}

// convert turns validator errors into field messages. Struct-level rules
// run after field rules and take precedence for the same field.
func convert(err error) error {
	if err == nil {
		return nil
	}
	var valErrors val.ValidationErrors
	if !errors.As(err, &valErrors) {
		return err
	}
	out := Errors{}
	for _, fe := range valErrors {
		field := fe.Field()
		if _, exists := out[field]; exists && !structLevelTags[fe.Tag()] {
			continue
		}
		out[field] = messageFor(field, fe.Tag(), fe.Param())
	}
	return out
}
