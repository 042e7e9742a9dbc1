package validate

import "strings"

var (
	// field-specific messages, keyed "field.tag"
	fieldMessages = map[string]string{
		"nombreCliente.trimmin":          "Introduce un nombre válido.",
		"numPersonas.min":                "Indica al menos 1 persona.",
		"fecha.required":                 "Selecciona una fecha.",
		"fecha.notpast":                  "La fecha debe ser hoy o en el futuro.",
		"fecha.future":                   "La fecha y hora de la reserva debe ser futura. No se pueden crear reservas en el pasado.",
		"hora.required":                  "Selecciona una hora.",
		"telefono.phone":                 "Introduce un teléfono válido.",
		"telefono.contact":               "Debes proporcionar al menos un teléfono o un email válido.",
		"email.mail":                     "Introduce un email válido.",
		"aforoTotal.min":                 "El aforo máximo debe estar entre 1 y 1000",
		"aforoTotal.max":                 "El aforo máximo debe estar entre 1 y 1000",
		"maxPersonasReserva.min":         "El máximo de personas por reserva debe estar entre 1 y 100",
		"maxPersonasReserva.max":         "El máximo de personas por reserva debe estar entre 1 y 100",
		"maxPersonasReserva.ltecapacity": "El máximo de personas por reserva no puede ser mayor al aforo máximo",
		"duracionReserva.min":            "La duración de reserva debe estar entre 15 y 480 minutos",
		"duracionReserva.max":            "La duración de reserva debe estar entre 15 y 480 minutos",
		"horaCierre.afteropen":           "La hora de cierre debe ser posterior a la hora de apertura",
		"horaApertura.overlap":           "El horario se solapa con otro existente para el mismo día",
	}

	messages = map[string]string{
		"required": "{field} es obligatorio",
		"trimmin":  "{field} debe tener al menos {param} caracteres",
		"min":      "{field} debe ser mayor o igual a {param}",
		"max":      "{field} debe ser menor o igual a {param}",
		"gte":      "{field} debe ser mayor o igual a {param}",
		"oneof":    "{field} debe ser uno de {param}",
		"mail":     "{field} debe tener un formato válido",
		"phone":    "{field} debe tener al menos 6 caracteres",
		"hhmm":     "{field} debe estar en formato HH:MM",
		"ymd":      "{field} debe estar en formato AAAA-MM-DD",
	}

	structLevelTags = map[string]bool{
		"contact":     true,
		"future":      true,
		"notpast":     true,
		"ltecapacity": true,
		"afteropen":   true,
	}
)

func messageFor(field, tag, param string) string {
	if msg, ok := fieldMessages[field+"."+tag]; ok {
		return msg
	}
	msg, ok := messages[tag]
	if !ok {
		return field + " no es válido"
	}
	msg = strings.ReplaceAll(msg, "{field}", field)
	return strings.ReplaceAll(msg, "{param}", param)
}
