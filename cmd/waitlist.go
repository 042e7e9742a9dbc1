package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/marcus/rsv/internal/dateparse"
	"github.com/marcus/rsv/internal/models"
	"github.com/marcus/rsv/internal/output"
	"github.com/marcus/rsv/internal/validate"
	"github.com/marcus/rsv/internal/waitlist"
	"github.com/spf13/cobra"
)

var waitlistCmd = &cobra.Command{
	Use:     "waitlist",
	Aliases: []string{"wl"},
	Short:   "Manage the waitlist",
	GroupID: "floor",
}

// loadWaitlist builds a controller and loads the entries for --date/--name
func loadWaitlist(cmd *cobra.Command, a *app, quiet bool) (*waitlist.Controller, error) {
	c := waitlist.New(a.client, toastPrinter{quiet: quiet}, waitlist.Options{Logger: slog.Default()})

	dateStr, _ := cmd.Flags().GetString("date")
	fecha, err := parseDateFlag(dateStr)
	if err != nil {
		output.Error("%v", err)
		return nil, err
	}
	name, _ := cmd.Flags().GetString("name")
	if err := c.SetFilter(cmd.Context(), models.WaitlistFilter{FechaDeseada: fecha, Nombre: name}); err != nil {
		output.Error("%v", err)
		return nil, err
	}
	return c, nil
}

var waitlistListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List waitlist entries for a day (today by default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireApp()
		if err != nil {
			return err
		}
		jsonOut, _ := cmd.Flags().GetBool("json")
		c, err := loadWaitlist(cmd, a, jsonOut)
		if err != nil {
			return err
		}
		entries := c.Entries()

		if jsonOut {
			return output.JSON(entries)
		}
		if len(entries) == 0 {
			fmt.Printf("No waitlist entries for %s\n", c.Filter().FechaDeseada)
			return nil
		}
		fmt.Printf("%s  %d pendientes\n\n", output.Title(c.Filter().FechaDeseada), c.PendingCount())
		for _, e := range entries {
			fmt.Println(output.WaitlistLine(e))
		}
		return nil
	},
}

var waitlistUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Edit a waitlist entry",
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
		c, err := loadWaitlist(cmd, a, false)
		if err != nil {
			return err
		}
		entry, ok := c.Find(id)
		if !ok {
			err := fmt.Errorf("entry #%d not found for %s", id, c.Filter().FechaDeseada)
			output.Error("%v", err)
			return err
		}

		in := models.WaitlistInputFromEntry(entry, dateparse.SplitDateTime)
		fl := cmd.Flags()
		if fl.Changed("guest") {
			in.NombreCliente, _ = fl.GetString("guest")
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
		if fl.Changed("preferences") {
			in.Preferencias, _ = fl.GetString("preferences")
		}
		if fl.Changed("desired-date") {
			s, _ := fl.GetString("desired-date")
			if in.Fecha, err = dateparse.ParseDate(s); err != nil {
				output.Error("%v", err)
				return err
			}
		}
		if fl.Changed("time") {
			s, _ := fl.GetString("time")
			if in.HoraDeseada, err = dateparse.ParseHour(s); err != nil {
				output.Error("%v", err)
				return err
			}
		}

		if _, err := c.Edit(cmd.Context(), id, in); err != nil {
			if fields, ok := validate.AsErrors(err); ok && fields["telefono"] != waitlist.ContactToastMessage {
				return fail(err)
			}
			return err
		}
		return nil
	},
}

var waitlistDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a waitlist entry",
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
		c, err := loadWaitlist(cmd, a, false)
		if err != nil {
			return err
		}
		if err := c.RequestDelete(id); err != nil {
			output.Error("entry #%d not found for %s", id, c.Filter().FechaDeseada)
			return err
		}

		pending := c.PendingDelete()
		yes, _ := cmd.Flags().GetBool("yes")
		if err := confirmAction(yes, fmt.Sprintf("¿Eliminar a %s de la lista de espera?", pending.NombreCliente)); err != nil {
			c.CancelDelete()
			if errors.Is(err, errNotConfirmed) {
				fmt.Println("Cancelled")
				return nil
			}
			output.Error("%v", err)
			return err
		}
		if err := c.ConfirmDelete(cmd.Context()); err != nil {
			return err
		}
		output.Success("Deleted waitlist entry #%d", id)
		return nil
	},
}

var waitlistProcessCmd = &cobra.Command{
	Use:   "process",
	Short: "Seat every pending party the backend can fit",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireApp()
		if err != nil {
			return err
		}
		jsonOut, _ := cmd.Flags().GetBool("json")
		c := waitlist.New(a.client, toastPrinter{quiet: jsonOut}, waitlist.Options{Logger: slog.Default()})
		out, err := c.ProcessAll(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOut {
			return output.JSON(out)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(waitlistCmd)
	waitlistCmd.AddCommand(waitlistListCmd, waitlistUpdateCmd, waitlistDeleteCmd, waitlistProcessCmd)

	for _, c := range []*cobra.Command{waitlistListCmd, waitlistUpdateCmd, waitlistDeleteCmd} {
		c.Flags().String("date", "", "Day of the waitlist (default today, UTC)")
		c.Flags().String("name", "", "Filter by guest name")
	}
	waitlistListCmd.Flags().Bool("json", false, "Output as JSON")

	waitlistUpdateCmd.Flags().String("guest", "", "Guest name")
	waitlistUpdateCmd.Flags().String("phone", "", "Guest phone")
	waitlistUpdateCmd.Flags().String("email", "", "Guest email")
	waitlistUpdateCmd.Flags().Int("people", 0, "Party size")
	waitlistUpdateCmd.Flags().String("preferences", "", "Seating preferences")
	waitlistUpdateCmd.Flags().String("desired-date", "", "New desired date")
	waitlistUpdateCmd.Flags().String("time", "", "Desired hour (HH:MM, UTC)")

	waitlistDeleteCmd.Flags().BoolP("yes", "y", false, "Skip confirmation")
	waitlistProcessCmd.Flags().Bool("json", false, "Output as JSON")
}
