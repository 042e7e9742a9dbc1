package cmd

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/marcus/rsv/internal/api"
	"github.com/marcus/rsv/internal/output"
	"github.com/marcus/rsv/internal/session"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var authCmd = &cobra.Command{
	Use:     "auth",
	Short:   "Manage the staff session",
	GroupID: "session",
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the reservations backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			output.Error("%v", err)
			return err
		}

		reader := bufio.NewReader(os.Stdin)
		email, _ := cmd.Flags().GetString("email")
		if email == "" {
			fmt.Print("Email: ")
			line, err := reader.ReadString('\n')
			if err != nil && err != io.EOF {
				return fmt.Errorf("read email: %w", err)
			}
			email = line
		}
		email = strings.TrimSpace(email)
		if email == "" {
			output.Error("email required")
			return fmt.Errorf("email required")
		}

		password, err := readPassword(reader)
		if err != nil {
			output.Error("%v", err)
			return err
		}

		res, err := a.client.Login(cmd.Context(), email, password)
		if err != nil {
			return fail(err)
		}

		sess := session.New(a.cfg.Dir, res.Token, res.Email, a.cfg.APIURL)
		if !sess.SetRestaurantName(res.RestaurantName) {
			refreshRestaurantName(cmd, api.New(a.cfg.APIURL, res.Token), sess)
		}
		if err := sess.Save(); err != nil {
			output.Error("save session: %v", err)
			return err
		}

		output.Success("Logged in as %s", sess.Email)
		if sess.RestaurantName != "" {
			fmt.Printf("Restaurant: %s\n", sess.RestaurantName)
		}
		if !sess.ExpiresAt.IsZero() {
			fmt.Printf("Session expires %s\n", sess.ExpiresAt.Local().Format(time.RFC822))
		}
		return nil
	},
}

// readPassword reads without echo on a terminal, or one line otherwise
func readPassword(reader *bufio.Reader) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Print("Password: ")
		b, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}
	line, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// refreshRestaurantName fetches the profile and caches the restaurant name.
// A failed fetch keeps whatever name was cached.
func refreshRestaurantName(cmd *cobra.Command, client *api.Client, sess *session.Session) bool {
	profile, err := client.Me(cmd.Context())
	if err != nil {
		slog.Warn("fetch profile", "err", err)
		return false
	}
	if profile.Email != "" && sess.Email == "" {
		sess.Email = profile.Email
	}
	return sess.SetRestaurantName(profile.RestaurantName)
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		if !a.sess.LoggedIn() {
			fmt.Println("Not logged in")
			return nil
		}
		if err := a.sess.Clear(); err != nil {
			output.Error("clear session: %v", err)
			return err
		}
		output.Success("Logged out")
		return nil
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		jsonOut, _ := cmd.Flags().GetBool("json")
		sess := a.sess
		now := time.Now()

		if jsonOut {
			return output.JSON(map[string]interface{}{
				"logged_in":  sess.LoggedIn(),
				"expired":    sess.Expired(now),
				"email":      sess.Email,
				"server":     a.cfg.APIURL,
				"restaurant": sess.RestaurantName,
				"expires_at": sess.ExpiresAt,
			})
		}

		if !sess.LoggedIn() {
			fmt.Println("Not logged in. Run 'rsv auth login'.")
			return nil
		}
		fmt.Printf("Email:      %s\n", sess.Email)
		fmt.Printf("Server:     %s\n", a.cfg.APIURL)
		if sess.RestaurantName != "" {
			fmt.Printf("Restaurant: %s\n", sess.RestaurantName)
		}
		switch {
		case sess.ExpiresAt.IsZero():
			fmt.Println("Expires:    unknown")
		case sess.Expired(now):
			output.Warning("session expired %s", output.FormatTimeAgoFrom(sess.ExpiresAt, now))
		default:
			fmt.Printf("Expires:    %s\n", sess.ExpiresAt.Local().Format(time.RFC822))
		}
		return nil
	},
}

var authWhoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the account and refresh the restaurant name",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireApp()
		if err != nil {
			return err
		}
		if refreshRestaurantName(cmd, a.client, a.sess) {
			if err := a.sess.Save(); err != nil {
				slog.Warn("save session", "err", err)
			}
		}

		email := a.sess.Email
		if email == "" {
			email = session.TokenSubject(a.sess.Token)
		}
		fmt.Println(email)
		if a.sess.RestaurantName != "" {
			fmt.Println(output.Subtle(a.sess.RestaurantName))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authLoginCmd, authLogoutCmd, authStatusCmd, authWhoamiCmd)

	authLoginCmd.Flags().String("email", "", "Account email (prompted when omitted)")
	authStatusCmd.Flags().Bool("json", false, "Output as JSON")
}
