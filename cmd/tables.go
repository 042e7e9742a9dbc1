package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/marcus/rsv/internal/dateparse"
	"github.com/marcus/rsv/internal/floorplan"
	"github.com/marcus/rsv/internal/models"
	"github.com/marcus/rsv/internal/output"
	"github.com/spf13/cobra"
)

var newTableShape = models.ShapeRectangular

var tablesCmd = &cobra.Command{
	Use:     "tables",
	Aliases: []string{"mesas"},
	Short:   "Floor plan and table editing",
	GroupID: "floor",
}

// loadPlan loads the zone's tables plus today's reservations so statuses
// can be derived. Editing commands pass admin.
func loadPlan(cmd *cobra.Command, a *app, admin bool) (*floorplan.Plan, error) {
	zone, _ := cmd.Flags().GetString("zone")
	if zone == "" {
		zone = a.cfg.Zone
	}
	plan := floorplan.New(a.client, floorplan.Options{
		Zone:   strings.ToUpper(zone),
		Admin:  admin,
		Logger: slog.Default(),
	})
	if err := plan.Load(cmd.Context()); err != nil {
		return nil, fail(err)
	}

	today := dateparse.Today(time.Now())
	list, err := a.client.ListReservations(cmd.Context(), models.ReservationFilter{Fecha: today})
	if err != nil {
		slog.Warn("load reservations for table status", "err", err)
	}
	plan.SetReservations(list, today)
	return plan, nil
}

// selectTable loads an editable plan and selects the table named by arg
func selectTable(cmd *cobra.Command, arg string) (*floorplan.Plan, *app, error) {
	id, err := parseID(arg)
	if err != nil {
		output.Error("%v", err)
		return nil, nil, err
	}
	a, err := requireApp()
	if err != nil {
		return nil, nil, err
	}
	plan, err := loadPlan(cmd, a, true)
	if err != nil {
		return nil, nil, err
	}
	if err := plan.Select(id); err != nil {
		output.Error("table #%d is not in zone %s", id, plan.Zone())
		return nil, nil, err
	}
	return plan, a, nil
}

func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return v, nil
}

func printTable(t *models.Table) {
	fmt.Println(output.TableLine(*t, floorplan.Style(t.Status).Render(t.Status.Label())))
}

var tablesListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List the tables of a zone with their status",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireApp()
		if err != nil {
			return err
		}
		plan, err := loadPlan(cmd, a, false)
		if err != nil {
			return err
		}
		tables := plan.Tables()
		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return output.JSON(tables)
		}
		if len(tables) == 0 {
			fmt.Printf("No tables in zone %s\n", plan.Zone())
			return nil
		}
		for i := range tables {
			printTable(&tables[i])
		}
		return nil
	},
}

var tablesPlanCmd = &cobra.Command{
	Use:   "plan",
	Short: "Draw the floor plan",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireApp()
		if err != nil {
			return err
		}
		plan, err := loadPlan(cmd, a, false)
		if err != nil {
			return err
		}

		width, _ := cmd.Flags().GetInt("width")
		if width <= 0 {
			width = output.TerminalWidth(80)
		}
		height, _ := cmd.Flags().GetInt("height")
		if height <= 0 {
			height = width / 3
		}

		m := plan.Metrics()
		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return output.JSON(map[string]interface{}{
				"zone":    plan.Zone(),
				"metrics": m,
				"tables":  plan.Tables(),
			})
		}

		fmt.Println(output.Title("Zona " + plan.Zone()))
		fmt.Println(plan.RenderStyled(width, height))
		fmt.Println()
		fmt.Println(floorplan.Legend())
		fmt.Printf("%d mesas, %d libres, %d ocupadas (%d/%d plazas)\n",
			m.Total, m.Available, m.Occupied, m.OccupiedSeats, m.TotalSeats)
		return nil
	},
}

var tablesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Add a table to the zone",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireApp()
		if err != nil {
			return err
		}
		plan, err := loadPlan(cmd, a, true)
		if err != nil {
			return err
		}
		x, _ := cmd.Flags().GetFloat64("x")
		y, _ := cmd.Flags().GetFloat64("y")
		t, err := plan.Create(cmd.Context(), newTableShape, x, y)
		if err != nil {
			return fail(err)
		}
		output.Success("Created %s (#%d)", t.Nombre, t.ID)
		return nil
	},
}

var tablesMoveCmd = &cobra.Command{
	Use:   "move <id> <x> <y>",
	Short: "Move a table",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		x, err := parseFloat(args[1])
		if err != nil {
			output.Error("%v", err)
			return err
		}
		y, err := parseFloat(args[2])
		if err != nil {
			output.Error("%v", err)
			return err
		}
		plan, _, err := selectTable(cmd, args[0])
		if err != nil {
			return err
		}
		t, err := plan.Move(cmd.Context(), x, y)
		if err != nil {
			return fail(err)
		}
		printTable(t)
		return nil
	},
}

var tablesRotateCmd = &cobra.Command{
	Use:   "rotate <id>",
	Short: "Rotate a table by 15°",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		plan, _, err := selectTable(cmd, args[0])
		if err != nil {
			return err
		}
		dir := floorplan.Right
		if left, _ := cmd.Flags().GetBool("left"); left {
			dir = floorplan.Left
		}
		steps, _ := cmd.Flags().GetInt("steps")
		if steps < 1 {
			steps = 1
		}
		var t *models.Table
		for i := 0; i < steps; i++ {
			if t, err = plan.Rotate(cmd.Context(), dir); err != nil {
				return fail(err)
			}
		}
		printTable(t)
		return nil
	},
}

var tablesResizeCmd = &cobra.Command{
	Use:   "resize <id> <width> <height>",
	Short: "Resize a table (each side at least 30)",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := parseFloat(args[1])
		if err != nil {
			output.Error("%v", err)
			return err
		}
		h, err := parseFloat(args[2])
		if err != nil {
			output.Error("%v", err)
			return err
		}
		plan, _, err := selectTable(cmd, args[0])
		if err != nil {
			return err
		}
		t, err := plan.Resize(cmd.Context(), w, h)
		if err != nil {
			return fail(err)
		}
		if seats, _ := cmd.Flags().GetInt("seats"); seats > 0 {
			if t, err = plan.SetCapacity(cmd.Context(), seats); err != nil {
				return fail(err)
			}
		}
		printTable(t)
		return nil
	},
}

var tablesDuplicateCmd = &cobra.Command{
	Use:   "duplicate <id>",
	Short: "Copy a table next to the original",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		plan, _, err := selectTable(cmd, args[0])
		if err != nil {
			return err
		}
		t, err := plan.Duplicate(cmd.Context())
		if err != nil {
			return fail(err)
		}
		output.Success("Created %s (#%d)", t.Nombre, t.ID)
		return nil
	},
}

var tablesDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a table",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		plan, _, err := selectTable(cmd, args[0])
		if err != nil {
			return err
		}
		t, _ := plan.Table(plan.Selected())
		yes, _ := cmd.Flags().GetBool("yes")
		if err := confirmAction(yes, fmt.Sprintf("¿Eliminar %s?", t.Nombre)); err != nil {
			if errors.Is(err, errNotConfirmed) {
				fmt.Println("Cancelled")
				return nil
			}
			output.Error("%v", err)
			return err
		}
		if err := plan.Delete(cmd.Context()); err != nil {
			return fail(err)
		}
		output.Success("Deleted %s", t.Nombre)
		return nil
	},
}

var tablesStatusCmd = &cobra.Command{
	Use:   "status <id>",
	Short: "Show why a table has its current status",
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
		plan, err := loadPlan(cmd, a, false)
		if err != nil {
			return err
		}
		t, ok := plan.Table(id)
		if !ok {
			output.Error("table #%d is not in zone %s", id, plan.Zone())
			return floorplan.ErrUnknownTable
		}
		printTable(&t)
		switch {
		case t.OcupadaAhora:
			fmt.Println("  marcada como ocupada ahora")
		case t.Status == models.TablePending:
			fmt.Println("  reserva confirmada para hoy")
		case !t.Disponible:
			fmt.Println("  marcada como no disponible")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tablesCmd)
	tablesCmd.AddCommand(
		tablesListCmd,
		tablesPlanCmd,
		tablesCreateCmd,
		tablesMoveCmd,
		tablesRotateCmd,
		tablesResizeCmd,
		tablesDuplicateCmd,
		tablesDeleteCmd,
		tablesStatusCmd,
	)

	tablesCmd.PersistentFlags().String("zone", "", "Zone to work on (default from config)")

	tablesListCmd.Flags().Bool("json", false, "Output as JSON")
	tablesPlanCmd.Flags().Int("width", 0, "Plan width in columns (default terminal width)")
	tablesPlanCmd.Flags().Int("height", 0, "Plan height in rows")
	tablesPlanCmd.Flags().Bool("json", false, "Output as JSON")

	tablesCreateCmd.Flags().Var(newShapeValue(&newTableShape), "shape", "rectangular or round")
	tablesCreateCmd.Flags().Float64("x", models.DefaultTableX, "X position")
	tablesCreateCmd.Flags().Float64("y", models.DefaultTableY, "Y position")

	tablesRotateCmd.Flags().Bool("left", false, "Rotate counterclockwise")
	tablesRotateCmd.Flags().Int("steps", 1, "Number of 15° steps")
	tablesResizeCmd.Flags().Int("seats", 0, "Also change the capacity")
	tablesDeleteCmd.Flags().BoolP("yes", "y", false, "Skip confirmation")
}
