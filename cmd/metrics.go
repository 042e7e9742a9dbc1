package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/marcus/rsv/internal/api"
	"github.com/marcus/rsv/internal/dateparse"
	"github.com/marcus/rsv/internal/listview"
	"github.com/marcus/rsv/internal/models"
	"github.com/marcus/rsv/internal/output"
	"github.com/spf13/cobra"
)

var metricsCmd = &cobra.Command{
	Use:     "metrics",
	Aliases: []string{"dashboard"},
	Short:   "Show today's occupancy and reservation counters",
	GroupID: "restaurant",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireApp()
		if err != nil {
			return err
		}
		m, err := a.client.DashboardMetrics(cmd.Context())
		if err != nil {
			output.Error("%s", api.Message(err, "No se pudieron cargar las métricas"))
			return err
		}

		now := time.Now()
		today := dateparse.Today(now)
		var summary *listview.Summary
		list, err := a.client.ListReservations(cmd.Context(), models.ReservationFilter{Fecha: today})
		if err != nil {
			slog.Warn("load today's reservations", "err", err)
		} else {
			s := listview.Summarize(list, today, now)
			summary = &s
		}

		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return output.JSON(map[string]interface{}{
				"date":    today,
				"metrics": m,
				"summary": summary,
			})
		}

		fmt.Println(output.Title(dateparse.FormatLong(now)))
		fmt.Print(output.FormatMetrics(*m))
		if summary != nil {
			fmt.Printf("Pendientes: %d  Confirmadas: %d  En las próximas 2h: %d\n",
				summary.Pendientes, summary.Confirmadas, summary.Proximas)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(metricsCmd)
	metricsCmd.Flags().Bool("json", false, "Output as JSON")
}
