package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/marcus/rsv/internal/inbox"
	"github.com/marcus/rsv/internal/output"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:     "version",
	Short:   "Show version information",
	GroupID: "system",
	Run: func(cmd *cobra.Command, args []string) {
		v := version
		if v == "" {
			v = "dev"
		}
		fmt.Printf("rsv %s\n", v)
	},
}

var infoCmd = &cobra.Command{
	Use:     "info",
	Aliases: []string{"doctor"},
	Short:   "Show local state and check the backend",
	GroupID: "system",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		now := time.Now()

		info := map[string]interface{}{
			"version":    version,
			"config_dir": a.cfg.Dir,
			"api_url":    a.cfg.APIURL,
			"logged_in":  a.sess.LoggedIn(),
			"expired":    a.sess.Expired(now),
		}

		unread := -1
		if center, closeFn, err := openCenter(a); err == nil {
			unread = center.UnreadCount()
			info["notifications"] = len(center.Notifications())
			info["unread"] = unread
			if cur, ok := center.Cursor(); ok {
				info["last_seen_reservation"] = cur
			}
			closeFn()
		} else {
			info["inbox_error"] = err.Error()
		}

		backendErr := ""
		if a.sess.LoggedIn() && !a.sess.Expired(now) {
			if _, err := a.client.Me(cmd.Context()); err != nil {
				backendErr = err.Error()
			}
			info["backend_ok"] = backendErr == ""
		}

		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return output.JSON(info)
		}

		fmt.Println(output.SectionHeader("rsv"))
		fmt.Printf("Version:   %s\n", version)
		fmt.Printf("Config:    %s\n", a.cfg.Dir)
		fmt.Printf("Inbox:     %s\n", filepath.Join(a.cfg.Dir, inbox.FileName))
		fmt.Printf("Backend:   %s\n", a.cfg.APIURL)
		switch {
		case !a.sess.LoggedIn():
			fmt.Println("Session:   not logged in")
		case a.sess.Expired(now):
			output.Warning("session expired")
		default:
			fmt.Printf("Session:   %s\n", a.sess.Email)
		}
		if unread >= 0 {
			fmt.Printf("Unread:    %d\n", unread)
		}
		if _, ok := info["backend_ok"]; ok {
			if backendErr != "" {
				output.Error("backend unreachable: %s", backendErr)
			} else {
				output.Success("backend reachable")
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd, infoCmd)
	infoCmd.Flags().Bool("json", false, "Output as JSON")
}
