package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/marcus/rsv/internal/api"
	"github.com/marcus/rsv/internal/config"
	"github.com/marcus/rsv/internal/models"
	"github.com/marcus/rsv/internal/output"
	"github.com/marcus/rsv/internal/suggest"
	"github.com/marcus/rsv/internal/validate"
	"github.com/spf13/cobra"
)

func parseBool(val string) (bool, error) {
	switch strings.ToLower(val) {
	case "true", "1", "si", "sí", "yes", "on":
		return true, nil
	case "false", "0", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid bool value %q (use true/false/1/0)", val)
	}
}

// restaurantFields maps settable keys onto the editable config. Keys are
// matched case-insensitively and accept the backend's camelCase names.
var restaurantFields = map[string]func(in *models.ConfigInput, v string) error{
	"nombre":    func(in *models.ConfigInput, v string) error { in.Nombre = v; return nil },
	"direccion": func(in *models.ConfigInput, v string) error { in.Direccion = v; return nil },
	"telefono":  func(in *models.ConfigInput, v string) error { in.Telefono = v; return nil },
	"email":     func(in *models.ConfigInput, v string) error { in.Email = v; return nil },
	"aforototal": func(in *models.ConfigInput, v string) error {
		return setInt(&in.AforoTotal, v)
	},
	"maxpersonasreserva": func(in *models.ConfigInput, v string) error {
		return setInt(&in.MaxPersonasReserva, v)
	},
	"duracionreserva": func(in *models.ConfigInput, v string) error {
		return setInt(&in.DuracionReserva, v)
	},
	"autoasignacion": func(in *models.ConfigInput, v string) error {
		b, err := parseBool(v)
		if err != nil {
			return err
		}
		in.AutoAsignacion = b
		return nil
	},
}

func setInt(dst *int, v string) error {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("invalid number %q", v)
	}
	*dst = n
	return nil
}

func restaurantFieldNames() []string {
	names := make([]string, 0, len(restaurantFields))
	for k := range restaurantFields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// applyAssignments applies key=value pairs to in
func applyAssignments(in *models.ConfigInput, pairs []string) error {
	for _, p := range pairs {
		key, val, ok := strings.Cut(p, "=")
		if !ok {
			return fmt.Errorf("expected key=value, got %q", p)
		}
		key = strings.ToLower(strings.NewReplacer("_", "", "-", "").Replace(strings.TrimSpace(key)))
		set, ok := restaurantFields[key]
		if !ok {
			if hint := suggest.Message(key, restaurantFieldNames()); hint != "" {
				return fmt.Errorf("unknown setting %q, %s", p, hint)
			}
			return fmt.Errorf("unknown setting %q", p)
		}
		if err := set(in, val); err != nil {
			return err
		}
	}
	return nil
}

func printRestaurantConfig(c *models.RestaurantConfig) {
	fmt.Println(output.Title(c.Nombre))
	if c.Direccion != "" {
		fmt.Printf("Dirección:        %s\n", c.Direccion)
	}
	if c.Telefono != "" {
		fmt.Printf("Teléfono:         %s\n", c.Telefono)
	}
	if c.Email != "" {
		fmt.Printf("Email:            %s\n", c.Email)
	}
	fmt.Printf("Aforo total:      %d\n", c.AforoTotal)
	if c.MaxPersonasReserva != nil {
		fmt.Printf("Máx. por reserva: %d\n", *c.MaxPersonasReserva)
	}
	fmt.Printf("Duración reserva: %d min\n", c.DuracionReserva)
	auto := "no"
	if c.AutoAsignacion {
		auto = "sí"
	}
	fmt.Printf("Auto-asignación:  %s\n", auto)
}

var restaurantCmd = &cobra.Command{
	Use:     "restaurant",
	Aliases: []string{"settings"},
	Short:   "Restaurant settings",
	GroupID: "restaurant",
}

var restaurantShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the restaurant settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireApp()
		if err != nil {
			return err
		}
		c, err := a.client.GetConfig(cmd.Context())
		if err != nil {
			output.Error("%s", api.Message(err, "No se pudo cargar la configuración"))
			return err
		}
		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return output.JSON(c)
		}
		printRestaurantConfig(c)
		return nil
	},
}

var restaurantSetCmd = &cobra.Command{
	Use:   "set <key=value>...",
	Short: "Change restaurant settings",
	Long: `Change one or more restaurant settings. Keys: nombre, direccion,
telefono, email, aforoTotal, maxPersonasReserva, duracionReserva,
autoAsignacion. An empty value clears a text field.`,
	Example: "  rsv restaurant set aforoTotal=80 duracionReserva=120",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireApp()
		if err != nil {
			return err
		}
		current, err := a.client.GetConfig(cmd.Context())
		if err != nil {
			output.Error("%s", api.Message(err, "No se pudo cargar la configuración"))
			return err
		}

		prev := models.ConfigInputFrom(*current)
		next := prev
		if err := applyAssignments(&next, args); err != nil {
			output.Error("%v", err)
			return err
		}
		if err := validate.Config(next); err != nil {
			return fail(err)
		}

		patch := models.ConfigPatch(prev, next)
		if len(patch) == 0 {
			fmt.Println("No changes")
			return nil
		}
		updated, err := a.client.UpdateConfig(cmd.Context(), patch)
		if err != nil {
			output.Error("%s", api.Message(err, "No se pudo guardar la configuración"))
			return err
		}
		output.Success("Configuración guardada")
		printRestaurantConfig(updated)
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:     "config",
	Short:   "Manage local rsv configuration",
	GroupID: "system",
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a local config value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := config.Dir()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		if err := config.Set(dir, args[0], args[1]); err != nil {
			output.Error("%v", err)
			return err
		}
		output.Success("%s = %s", args[0], args[1])
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:     "show",
	Aliases: []string{"list"},
	Short:   "Show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		secret := ""
		if cfg.WebhookSecret != "" {
			secret = "(set)"
		}
		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return output.JSON(map[string]interface{}{
				"dir":               cfg.Dir,
				"api_url":           cfg.APIURL,
				"poll_interval":     cfg.PollInterval.String(),
				"waitlist_interval": cfg.WaitlistInterval.String(),
				"metrics_interval":  cfg.MetricsInterval.String(),
				"toast_duration":    cfg.ToastDuration.String(),
				"close_delay":       cfg.CloseDelay.String(),
				"request_timeout":   cfg.RequestTimeout.String(),
				"push_url":          cfg.PushURL,
				"zone":              cfg.Zone,
				"webhook.url":       cfg.WebhookURL,
				"webhook.secret":    secret,
				"log.level":         cfg.LogLevel,
				"log.format":        cfg.LogFormat,
			})
		}
		rows := [][2]string{
			{"dir", cfg.Dir},
			{"api_url", cfg.APIURL},
			{"poll_interval", cfg.PollInterval.String()},
			{"waitlist_interval", cfg.WaitlistInterval.String()},
			{"metrics_interval", cfg.MetricsInterval.String()},
			{"toast_duration", cfg.ToastDuration.String()},
			{"close_delay", cfg.CloseDelay.String()},
			{"request_timeout", cfg.RequestTimeout.String()},
			{"push_url", cfg.PushURL},
			{"zone", cfg.Zone},
			{"webhook.url", cfg.WebhookURL},
			{"webhook.secret", secret},
			{"log.level", cfg.LogLevel},
			{"log.format", cfg.LogFormat},
		}
		for _, r := range rows {
			v := r[1]
			if v == "" {
				v = output.Subtle("-")
			}
			fmt.Printf("%-18s %s\n", r[0], v)
		}
		return nil
	},
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List settable config keys",
	Run: func(cmd *cobra.Command, args []string) {
		for _, k := range config.Keys() {
			fmt.Println(k)
		}
	},
}

func init() {
	rootCmd.AddCommand(restaurantCmd, configCmd)
	restaurantCmd.AddCommand(restaurantShowCmd, restaurantSetCmd)
	configCmd.AddCommand(configSetCmd, configShowCmd, configKeysCmd)

	restaurantShowCmd.Flags().Bool("json", false, "Output as JSON")
	configShowCmd.Flags().Bool("json", false, "Output as JSON")
}
