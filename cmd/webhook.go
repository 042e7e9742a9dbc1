package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/marcus/rsv/internal/config"
	"github.com/marcus/rsv/internal/models"
	"github.com/marcus/rsv/internal/output"
	"github.com/marcus/rsv/internal/webhook"
	"github.com/spf13/cobra"
)

var webhookCmd = &cobra.Command{
	Use:     "webhook",
	Short:   "Manage the new-reservation webhook",
	GroupID: "system",
}

var webhookSetCmd = &cobra.Command{
	Use:   "set <url>",
	Short: "Set the webhook URL (and optional --secret)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := config.Dir()
		if err != nil {
			return fmt.Errorf("config dir: %w", err)
		}
		if err := config.Set(dir, "webhook.url", args[0]); err != nil {
			output.Error("%v", err)
			return err
		}
		if cmd.Flags().Changed("secret") {
			secret, _ := cmd.Flags().GetString("secret")
			if err := config.Set(dir, "webhook.secret", secret); err != nil {
				output.Error("%v", err)
				return err
			}
		}
		fmt.Printf("Webhook URL set: %s\n", args[0])
		if f, err := config.ReadFile(dir); err == nil && f.Webhook.Secret != "" {
			fmt.Println("HMAC secret: configured")
		}
		return nil
	},
}

var webhookRemoveCmd = &cobra.Command{
	Use:     "remove",
	Aliases: []string{"rm"},
	Short:   "Remove webhook configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := config.Dir()
		if err != nil {
			return fmt.Errorf("config dir: %w", err)
		}
		err = config.WithLock(dir, func() error {
			f, err := config.ReadFile(dir)
			if err != nil {
				return err
			}
			f.Webhook = config.WebhookConfig{}
			return config.WriteFile(dir, f)
		})
		if err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		fmt.Println("Webhook configuration removed.")
		return nil
	},
}

var webhookStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current webhook configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if cfg.WebhookURL == "" {
			fmt.Println("Webhook: not configured")
			return nil
		}
		fmt.Printf("Webhook URL: %s\n", cfg.WebhookURL)
		if cfg.WebhookSecret != "" {
			fmt.Println("HMAC secret: configured")
		} else {
			fmt.Println("HMAC secret: not set")
		}
		return nil
	},
}

var webhookTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a test webhook payload (synchronous)",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		if a.cfg.WebhookURL == "" {
			return fmt.Errorf("no webhook URL configured (use: rsv webhook set <url>)")
		}

		now := time.Now()
		batch := []models.Notification{{
			ID:            "test-ping",
			ReservationID: 0,
			Reservation: models.Reservation{
				NombreCliente: "Webhook test",
				NumPersonas:   2,
				Fecha:         now,
				Estado:        models.StatusPending,
			},
			CreatedAt: now,
		}}
		payload := webhook.BuildPayload(a.sess.RestaurantName, batch, now)

		fmt.Printf("Sending test webhook to %s ... ", a.cfg.WebhookURL)
		client := &http.Client{Timeout: 10 * time.Second}
		if err := webhook.Dispatch(cmd.Context(), client, a.cfg.WebhookURL, a.cfg.WebhookSecret, payload); err != nil {
			fmt.Println("FAILED")
			return fmt.Errorf("webhook delivery failed: %w", err)
		}
		fmt.Println("OK")
		return nil
	},
}

func init() {
	webhookSetCmd.Flags().String("secret", "", "HMAC-SHA256 signing secret")
	webhookCmd.AddCommand(webhookSetCmd, webhookRemoveCmd, webhookStatusCmd, webhookTestCmd)
	rootCmd.AddCommand(webhookCmd)
}
