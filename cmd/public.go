package cmd

import (
	"fmt"

	"github.com/marcus/rsv/internal/api"
	"github.com/marcus/rsv/internal/output"
	"github.com/spf13/cobra"
)

// publicLinkCmd builds a guest-link command. These endpoints need no
// session, so only the config is loaded.
func publicLinkCmd(use, short, failMsg string, follow func(cmd *cobra.Command, c *api.Client, id int64, token string) (*api.PublicResult, error)) *cobra.Command {
	c := &cobra.Command{
		Use:     use + " <id> <token>",
		Short:   short,
		GroupID: "reservations",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				output.Error("%v", err)
				return err
			}
			a, err := loadApp()
			if err != nil {
				output.Error("%v", err)
				return err
			}
			jsonOut, _ := cmd.Flags().GetBool("json")

			res, err := follow(cmd, a.client, id, args[1])
			if err != nil {
				msg := api.Message(err, failMsg)
				if jsonOut {
					output.JSONError(output.ErrCodeInvalidInput, msg)
				} else {
					output.Error("%s", msg)
				}
				return err
			}

			if jsonOut {
				return output.JSON(map[string]interface{}{
					"message":           res.Message,
					"already_confirmed": res.AlreadyConfirmed,
					"reservation":       res.Reservation,
				})
			}
			if res.AlreadyConfirmed {
				output.Info("%s", res.Message)
			} else {
				output.Success("%s", res.Message)
			}
			if res.Reservation != nil {
				fmt.Println(output.ReservationLine(*res.Reservation))
			}
			return nil
		},
	}
	c.Flags().Bool("json", false, "Output as JSON")
	return c
}

var confirmCmd = publicLinkCmd("confirm", "Follow a guest confirmation link", "Error al confirmar la reserva",
	func(cmd *cobra.Command, c *api.Client, id int64, token string) (*api.PublicResult, error) {
		return c.ConfirmReservation(cmd.Context(), id, token)
	})

var cancelCmd = publicLinkCmd("cancel", "Follow a guest cancellation link", "Error al cancelar la reserva",
	func(cmd *cobra.Command, c *api.Client, id int64, token string) (*api.PublicResult, error) {
		return c.CancelReservation(cmd.Context(), id, token)
	})

func init() {
	rootCmd.AddCommand(confirmCmd, cancelCmd)
}
