package cmd

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/marcus/rsv/internal/inbox"
	"github.com/marcus/rsv/internal/models"
	"github.com/marcus/rsv/internal/notify"
	"github.com/marcus/rsv/internal/output"
	"github.com/marcus/rsv/internal/webhook"
	"github.com/spf13/cobra"
)

// openCenter opens the local inbox and restores a notification center
// from it. The caller closes both through the returned func.
func openCenter(a *app) (*notify.Center, func(), error) {
	ib, err := inbox.OpenDriver(a.cfg.InboxDriver, filepath.Join(a.cfg.Dir, inbox.FileName))
	if err != nil {
		return nil, nil, fmt.Errorf("open inbox: %w", err)
	}
	center, err := notify.New(notify.Options{
		ToastDuration: a.cfg.ToastDuration,
		Persist:       ib,
		Logger:        slog.Default(),
	})
	if err != nil {
		ib.Close()
		return nil, nil, fmt.Errorf("load inbox: %w", err)
	}
	return center, func() {
		center.Close()
		ib.Close()
	}, nil
}

// resolveNotification finds the inbox entry whose ID starts with prefix
func resolveNotification(list []models.Notification, prefix string) (models.Notification, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return models.Notification{}, fmt.Errorf("notification id required")
	}
	var matches []models.Notification
	for _, n := range list {
		if n.ID == prefix {
			return n, nil
		}
		if strings.HasPrefix(n.ID, prefix) {
			matches = append(matches, n)
		}
	}
	switch len(matches) {
	case 0:
		return models.Notification{}, fmt.Errorf("notification %s not found", prefix)
	case 1:
		return matches[0], nil
	default:
		return models.Notification{}, fmt.Errorf("notification id %s is ambiguous (%d matches)", prefix, len(matches))
	}
}

var notificationsCmd = &cobra.Command{
	Use:     "notifications",
	Aliases: []string{"inbox", "notif"},
	Short:   "New-reservation inbox",
	GroupID: "reservations",
}

var notificationsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List inbox notifications, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		center, closeFn, err := openCenter(a)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer closeFn()

		list := center.Notifications()
		if unread, _ := cmd.Flags().GetBool("unread"); unread {
			filtered := list[:0:0]
			for _, n := range list {
				if !n.Read {
					filtered = append(filtered, n)
				}
			}
			list = filtered
		}
		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return output.JSON(list)
		}
		if len(list) == 0 {
			fmt.Println("No notifications")
			return nil
		}
		fmt.Printf("%s %s\n\n", output.Title("Notificaciones"), output.UnreadBadge(center.UnreadCount()))
		now := time.Now()
		for _, n := range list {
			fmt.Println(output.NotificationLine(n, now))
		}
		return nil
	},
}

var notificationsReadCmd = &cobra.Command{
	Use:   "read <id>",
	Short: "Mark a notification as read and show its reservation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		center, closeFn, err := openCenter(a)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer closeFn()

		n, err := resolveNotification(center.Notifications(), args[0])
		if err != nil {
			output.Error("%v", err)
			return err
		}
		center.MarkAsRead(n.ID)
		fmt.Println(output.FormatReservationLong(n.Reservation))
		return nil
	},
}

var notificationsReadAllCmd = &cobra.Command{
	Use:   "read-all",
	Short: "Mark every notification as read",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		center, closeFn, err := openCenter(a)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer closeFn()

		count := center.UnreadCount()
		center.MarkAllAsRead()
		output.Success("Marked %d notifications as read", count)
		return nil
	},
}

var notificationsRemoveCmd = &cobra.Command{
	Use:     "remove <id>",
	Aliases: []string{"rm"},
	Short:   "Remove a notification from the inbox",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		center, closeFn, err := openCenter(a)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer closeFn()

		n, err := resolveNotification(center.Notifications(), args[0])
		if err != nil {
			output.Error("%v", err)
			return err
		}
		center.RemoveNotification(n.ID)
		output.Success("Removed %s", output.ShortID(n.ID))
		return nil
	},
}

var notificationsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Fetch reservations once and record any new ones",
	Long: `Fetch today's reservations and compare them with the last seen
reservation. The first check only records where to start. New reservations
are added to the inbox and sent to the configured webhook.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireApp()
		if err != nil {
			return err
		}
		center, closeFn, err := openCenter(a)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer closeFn()

		list, err := a.client.ListReservations(cmd.Context(), models.ReservationFilter{})
		if err != nil {
			return fail(err)
		}
		batch := center.Observe(list)
		if len(batch) == 0 {
			fmt.Println("No new reservations")
			return nil
		}

		output.Success("%s (%d)", notify.NewReservationMessage, len(batch))
		now := time.Now()
		for _, n := range batch {
			fmt.Println(output.NotificationLine(n, now))
		}

		// Delivered inline so the process does not exit first.
		sender := webhook.NewSender(a.cfg.WebhookURL, a.cfg.WebhookSecret, func() string { return a.sess.RestaurantName })
		if sender != nil {
			if err := sender.Deliver(cmd.Context(), batch); err != nil {
				output.Warning("webhook: %v", err)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(notificationsCmd)
	notificationsCmd.AddCommand(
		notificationsListCmd,
		notificationsReadCmd,
		notificationsReadAllCmd,
		notificationsRemoveCmd,
		notificationsCheckCmd,
	)

	notificationsListCmd.Flags().Bool("json", false, "Output as JSON")
	notificationsListCmd.Flags().Bool("unread", false, "Only unread notifications")
}
