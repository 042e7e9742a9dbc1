package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/marcus/rsv/internal/api"
	"github.com/marcus/rsv/internal/dateparse"
	"github.com/marcus/rsv/internal/listview"
	"github.com/marcus/rsv/internal/models"
	"github.com/marcus/rsv/internal/output"
	"github.com/marcus/rsv/internal/store"
	"github.com/marcus/rsv/internal/validate"
	"github.com/marcus/rsv/pkg/monitor"
	"github.com/spf13/cobra"
)

var (
	listStatus models.ReservationStatus
)

var reservationsCmd = &cobra.Command{
	Use:     "reservations",
	Aliases: []string{"res"},
	Short:   "List and manage reservations",
	GroupID: "reservations",
}

var reservationsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List reservations (today by default)",
	Example: `  rsv res list
  rsv res list --date tomorrow --status confirmada
  rsv res list --name garcía --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireApp()
		if err != nil {
			return err
		}
		jsonOut, _ := cmd.Flags().GetBool("json")
		long, _ := cmd.Flags().GetBool("long")
		name, _ := cmd.Flags().GetString("name")
		dateStr, _ := cmd.Flags().GetString("date")

		fecha, err := parseDateFlag(dateStr)
		if err != nil {
			output.Error("%v", err)
			return err
		}

		st := store.New(a.client, store.Options{Logger: slog.Default()})
		lv := listview.New(a.client, st, toastPrinter{quiet: jsonOut}, listview.Options{})
		f := models.ReservationFilter{Nombre: name, Fecha: fecha, Estado: listStatus}
		if err := lv.SetFilter(cmd.Context(), f); err != nil {
			return fail(err)
		}
		if lv.IsDefault() {
			if err := st.Reload(cmd.Context()); err != nil {
				output.Error("%s: %s", listview.LoadErrorMessage, api.Message(err, err.Error()))
				return err
			}
		}
		list := lv.Active()

		if jsonOut {
			return output.JSON(list)
		}

		active := lv.Filter()
		if len(list) == 0 {
			fmt.Printf("No reservations for %s\n", active.Fecha)
			return nil
		}
		if lv.IsDefault() {
			sum := listview.Summarize(list, active.Fecha, time.Now())
			fmt.Printf("%s  %d total, %d pendientes, %d confirmadas, %d en las próximas 2h\n\n",
				output.Title(active.Fecha), sum.Total, sum.Pendientes, sum.Confirmadas, sum.Proximas)
		}
		for _, r := range list {
			if long {
				fmt.Println(output.FormatReservationLong(r))
				continue
			}
			fmt.Println(output.ReservationLine(r))
		}
		return nil
	},
}

var reservationsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one reservation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			output.Error("%v", err)
			return err
		}
		a, err := requireApp()
		if err != nil {
			return err
		}
		r, err := a.client.GetReservation(cmd.Context(), id)
		if err != nil {
			return fail(err)
		}
		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return output.JSON(r)
		}
		fmt.Print(output.FormatReservationLong(*r))
		return nil
	},
}

// reservationFlags registers the fields shared by create and update
func reservationFlags(cmd *cobra.Command) {
	cmd.Flags().String("name", "", "Guest name")
	cmd.Flags().String("phone", "", "Guest phone")
	cmd.Flags().String("email", "", "Guest email")
	cmd.Flags().Int("people", 0, "Party size")
	cmd.Flags().String("date", "", "Date (YYYY-MM-DD, DD/MM/YYYY, today, tomorrow, +2d, viernes)")
	cmd.Flags().String("time", "", "Hour (HH:MM, UTC)")
	cmd.Flags().String("notes", "", "Notes")
	cmd.Flags().Int64("table", 0, "Table ID (0 unassigns on update)")
}

// applyReservationFlags overlays every flag the user set onto in
func applyReservationFlags(cmd *cobra.Command, in *models.ReservationInput) error {
	fl := cmd.Flags()
	if fl.Changed("name") {
		in.NombreCliente, _ = fl.GetString("name")
	}
	if fl.Changed("phone") {
		in.Telefono, _ = fl.GetString("phone")
	}
	if fl.Changed("email") {
		in.Email, _ = fl.GetString("email")
	}
	if fl.Changed("people") {
		in.NumPersonas, _ = fl.GetInt("people")
	}
	if fl.Changed("date") {
		s, _ := fl.GetString("date")
		fecha, err := dateparse.ParseDate(s)
		if err != nil {
			return err
		}
		in.Fecha = fecha
	}
	if fl.Changed("time") {
		s, _ := fl.GetString("time")
		hora, err := dateparse.ParseHour(s)
		if err != nil {
			return err
		}
		in.Hora = hora
	}
	if fl.Changed("notes") {
		in.Notas, _ = fl.GetString("notes")
	}
	if fl.Changed("table") {
		id, _ := fl.GetInt64("table")
		if id > 0 {
			in.MesaID = &id
		} else {
			in.MesaID = nil
			in.ClearMesa = true
		}
	}
	return nil
}

var reservationsCreateCmd = &cobra.Command{
	Use:     "create",
	Aliases: []string{"new", "add"},
	Short:   "Create a reservation",
	Long: `Create a reservation. The backend may assign a table, suggest one in
manual mode, or move the party to the waitlist when the restaurant is full.`,
	Example: `  rsv res create --name "Ana López" --phone 600111222 --people 4 --date tomorrow --time 21:30
  rsv res create -i`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireApp()
		if err != nil {
			return err
		}
		jsonOut, _ := cmd.Flags().GetBool("json")
		interactive, _ := cmd.Flags().GetBool("interactive")

		in := models.ReservationInput{NumPersonas: 2, Fecha: dateparse.Today(time.Now())}
		if err := applyReservationFlags(cmd, &in); err != nil {
			output.Error("%v", err)
			return err
		}
		if interactive {
			form := monitor.NewReservationForm(0, in)
			if err := form.Form.Run(); err != nil {
				return err
			}
			if in, err = form.Input(); err != nil {
				output.Error("%v", err)
				return err
			}
		}

		st := store.New(a.client, store.Options{Logger: slog.Default()})
		lv := listview.New(a.client, st, toastPrinter{quiet: jsonOut}, listview.Options{})
		out, err := lv.Create(cmd.Context(), in)
		if err != nil {
			if _, ok := validate.AsErrors(err); ok {
				return fail(err)
			}
			return err
		}

		if jsonOut {
			return output.JSON(map[string]interface{}{
				"outcome":     out.Outcome.String(),
				"message":     out.Message,
				"table":       out.TableLabel,
				"reservation": out.Result.Reservation,
			})
		}
		if out.Outcome != listview.OutcomeWaitlisted {
			fmt.Printf("Mesa: %s\n", out.TableLabel)
			if out.Result.Reservation.ID != 0 {
				fmt.Println(output.ReservationLine(out.Result.Reservation))
			}
		}
		return nil
	},
}

var reservationsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Edit a reservation",
	Long:  `Edit a reservation. Only the flags given are changed; every other field is sent unchanged.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			output.Error("%v", err)
			return err
		}
		a, err := requireApp()
		if err != nil {
			return err
		}
		current, err := a.client.GetReservation(cmd.Context(), id)
		if err != nil {
			return fail(err)
		}

		in := models.InputFromReservation(*current, dateparse.SplitDateTime)
		if err := applyReservationFlags(cmd, &in); err != nil {
			output.Error("%v", err)
			return err
		}
		if interactive, _ := cmd.Flags().GetBool("interactive"); interactive {
			form := monitor.NewReservationForm(id, in)
			if err := form.Form.Run(); err != nil {
				return err
			}
			if in, err = form.Input(); err != nil {
				output.Error("%v", err)
				return err
			}
		}

		if !validate.Contact(in.Telefono, in.Email) {
			output.Error("%s", listview.ContactToastMessage)
			return validate.Errors{"telefono": listview.ContactToastMessage}
		}
		if err := validate.ReservationEdit(in); err != nil {
			return fail(err)
		}
		updated, err := a.client.UpdateReservation(cmd.Context(), id, in)
		if err != nil {
			output.Error("%s", api.Message(err, "No se pudo actualizar la reserva"))
			return err
		}
		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return output.JSON(updated)
		}
		output.Success("%s", listview.EditSavedMessage)
		return nil
	},
}

var reservationsStatusCmd = &cobra.Command{
	Use:   "status <id> <status>",
	Short: "Change a reservation status",
	Long: `Change a reservation status. Any status may be set from any other.

Statuses: pendiente, confirmada, cancelada, completada (english names work too).`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			output.Error("%v", err)
			return err
		}
		estado, err := models.ParseReservationStatus(args[1])
		if err != nil {
			output.Error("%v", err)
			return err
		}
		a, err := requireApp()
		if err != nil {
			return err
		}
		updated, err := a.client.ChangeStatus(cmd.Context(), id, estado)
		if err != nil {
			output.Error("%s", api.Message(err, "No se pudo cambiar el estado"))
			return err
		}
		output.Success("#%d %s", updated.ID, output.StatusBadge(updated.Estado))
		return nil
	},
}

var reservationsDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a reservation",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			output.Error("%v", err)
			return err
		}
		a, err := requireApp()
		if err != nil {
			return err
		}
		r, err := a.client.GetReservation(cmd.Context(), id)
		if err != nil {
			return fail(err)
		}

		yes, _ := cmd.Flags().GetBool("yes")
		title := fmt.Sprintf("¿Eliminar la reserva de %s (%s)?", r.NombreCliente, dateparse.FormatShort(r.Fecha))
		if err := confirmAction(yes, title); err != nil {
			if errors.Is(err, errNotConfirmed) {
				fmt.Println("Cancelled")
				return nil
			}
			output.Error("%v", err)
			return err
		}

		if err := a.client.DeleteReservation(cmd.Context(), id); err != nil {
			output.Error("%s", api.Message(err, "No se pudo eliminar la reserva"))
			return err
		}
		output.Success("Deleted reservation #%d", id)
		return nil
	},
}

var reservationsAssignCmd = &cobra.Command{
	Use:   "assign <id> <table-id>",
	Short: "Assign a table to a reservation",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			output.Error("%v", err)
			return err
		}
		mesa, err := parseID(args[1])
		if err != nil {
			output.Error("%v", err)
			return err
		}
		a, err := requireApp()
		if err != nil {
			return err
		}
		r, err := a.client.AssignTable(cmd.Context(), id, mesa)
		if err != nil {
			output.Error("%s", api.Message(err, "No se pudo asignar la mesa"))
			return err
		}
		table := r.TableName()
		if table == "" {
			table = fmt.Sprintf("Mesa %d", mesa)
		}
		output.Success("#%d → %s", r.ID, strings.TrimSpace(table))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reservationsCmd)
	reservationsCmd.AddCommand(
		reservationsListCmd,
		reservationsShowCmd,
		reservationsCreateCmd,
		reservationsUpdateCmd,
		reservationsStatusCmd,
		reservationsDeleteCmd,
		reservationsAssignCmd,
	)

	reservationsListCmd.Flags().String("date", "", "Day to list (default today, UTC)")
	reservationsListCmd.Flags().String("name", "", "Filter by guest name")
	reservationsListCmd.Flags().Var(newStatusValue(&listStatus), "status", "Filter by status")
	reservationsListCmd.Flags().Bool("long", false, "Show full details")
	reservationsListCmd.Flags().Bool("json", false, "Output as JSON")

	reservationsShowCmd.Flags().Bool("json", false, "Output as JSON")

	reservationFlags(reservationsCreateCmd)
	reservationsCreateCmd.Flags().BoolP("interactive", "i", false, "Fill the reservation in a form")
	reservationsCreateCmd.Flags().Bool("json", false, "Output as JSON")

	reservationFlags(reservationsUpdateCmd)
	reservationsUpdateCmd.Flags().BoolP("interactive", "i", false, "Edit the reservation in a form")
	reservationsUpdateCmd.Flags().Bool("json", false, "Output as JSON")

	reservationsDeleteCmd.Flags().BoolP("yes", "y", false, "Skip confirmation")
}
