package cmd

import (
	"errors"
	"fmt"
	"sort"

	"github.com/marcus/rsv/internal/api"
	"github.com/marcus/rsv/internal/models"
	"github.com/marcus/rsv/internal/output"
	"github.com/marcus/rsv/internal/validate"
	"github.com/spf13/cobra"
)

var hoursCmd = &cobra.Command{
	Use:     "hours",
	Aliases: []string{"horarios"},
	Short:   "Opening hours",
	GroupID: "restaurant",
}

// sortHorarios orders ranges by weekday then opening time
func sortHorarios(hs []models.Horario) {
	day := make(map[string]int, len(models.Weekdays))
	for i, d := range models.Weekdays {
		day[d] = i
	}
	sort.SliceStable(hs, func(i, j int) bool {
		if hs[i].DiaSemana != hs[j].DiaSemana {
			return day[hs[i].DiaSemana] < day[hs[j].DiaSemana]
		}
		return hs[i].HoraApertura < hs[j].HoraApertura
	})
}

func findHorario(hs []models.Horario, id int64) (models.Horario, bool) {
	for _, h := range hs {
		if h.ID == id {
			return h, true
		}
	}
	return models.Horario{}, false
}

var hoursListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List opening ranges",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireApp()
		if err != nil {
			return err
		}
		hs, err := a.client.ListHorarios(cmd.Context())
		if err != nil {
			output.Error("%s", api.Message(err, "No se pudieron cargar los horarios"))
			return err
		}
		sortHorarios(hs)
		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return output.JSON(hs)
		}
		if len(hs) == 0 {
			fmt.Println("No opening hours configured")
			return nil
		}
		for _, h := range hs {
			fmt.Println(output.HorarioLine(h))
		}
		return nil
	},
}

var hoursAddCmd = &cobra.Command{
	Use:     "add <day> <open> <close>",
	Short:   "Add an opening range",
	Example: "  rsv hours add viernes 20:00 23:30",
	Args:    cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		day, err := models.NormalizeWeekday(args[0])
		if err != nil {
			output.Error("%v", err)
			return err
		}
		a, err := requireApp()
		if err != nil {
			return err
		}
		existing, err := a.client.ListHorarios(cmd.Context())
		if err != nil {
			output.Error("%s", api.Message(err, "No se pudieron cargar los horarios"))
			return err
		}

		in := models.HorarioInput{DiaSemana: day, HoraApertura: args[1], HoraCierre: args[2]}
		if err := validate.Horario(in, existing); err != nil {
			return fail(err)
		}

		// The backend replaces the whole schedule, so send every range.
		all := make([]models.HorarioInput, 0, len(existing)+1)
		for _, h := range existing {
			all = append(all, models.HorarioInput{
				ID:           h.ID,
				DiaSemana:    h.DiaSemana,
				HoraApertura: h.HoraApertura,
				HoraCierre:   h.HoraCierre,
			})
		}
		all = append(all, in)
		if _, err := a.client.ReplaceHorarios(cmd.Context(), all); err != nil {
			output.Error("%s", api.Message(err, "No se pudo guardar el horario"))
			return err
		}
		output.Success("Horario añadido: %s %s-%s", day, in.HoraApertura, in.HoraCierre)
		return nil
	},
}

var hoursUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change an opening range",
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
		existing, err := a.client.ListHorarios(cmd.Context())
		if err != nil {
			output.Error("%s", api.Message(err, "No se pudieron cargar los horarios"))
			return err
		}
		h, ok := findHorario(existing, id)
		if !ok {
			err := fmt.Errorf("opening range #%d not found", id)
			output.Error("%v", err)
			return err
		}

		in := models.HorarioInput{ID: h.ID, DiaSemana: h.DiaSemana, HoraApertura: h.HoraApertura, HoraCierre: h.HoraCierre}
		fl := cmd.Flags()
		if fl.Changed("day") {
			s, _ := fl.GetString("day")
			if in.DiaSemana, err = models.NormalizeWeekday(s); err != nil {
				output.Error("%v", err)
				return err
			}
		}
		if fl.Changed("open") {
			in.HoraApertura, _ = fl.GetString("open")
		}
		if fl.Changed("close") {
			in.HoraCierre, _ = fl.GetString("close")
		}
		if err := validate.Horario(in, existing); err != nil {
			return fail(err)
		}

		updated, err := a.client.UpdateHorario(cmd.Context(), id, in)
		if err != nil {
			output.Error("%s", api.Message(err, "No se pudo guardar el horario"))
			return err
		}
		output.Success("Horario actualizado")
		fmt.Println(output.HorarioLine(*updated))
		return nil
	},
}

var hoursDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Remove an opening range",
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
		yes, _ := cmd.Flags().GetBool("yes")
		if err := confirmAction(yes, fmt.Sprintf("¿Eliminar el horario #%d?", id)); err != nil {
			if errors.Is(err, errNotConfirmed) {
				fmt.Println("Cancelled")
				return nil
			}
			output.Error("%v", err)
			return err
		}
		if err := a.client.DeleteHorario(cmd.Context(), id); err != nil {
			output.Error("%s", api.Message(err, "No se pudo eliminar el horario"))
			return err
		}
		output.Success("Horario eliminado")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(hoursCmd)
	hoursCmd.AddCommand(hoursListCmd, hoursAddCmd, hoursUpdateCmd, hoursDeleteCmd)

	hoursListCmd.Flags().Bool("json", false, "Output as JSON")
	hoursUpdateCmd.Flags().String("day", "", "Weekday (lunes..domingo)")
	hoursUpdateCmd.Flags().String("open", "", "Opening time HH:MM")
	hoursUpdateCmd.Flags().String("close", "", "Closing time HH:MM")
	hoursDeleteCmd.Flags().BoolP("yes", "y", false, "Skip confirmation")
}
