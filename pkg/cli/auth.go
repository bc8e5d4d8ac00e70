package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"todoctl/pkg/gate"
	"todoctl/pkg/logger"
)

const maxLoginAttempts = 3

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the session locally",
	Args:  cobra.NoArgs,
	RunE:  runLogin,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and log in",
	Args:  cobra.NoArgs,
	RunE:  runRegister,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Erase the stored session",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the profile of the current session",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
}

func runLogin(cmd *cobra.Command, _ []string) error {
	app := getApp()
	ctx := logger.WithTrace(cmd.Context())

	nav, _ := app.enter(ctx, gate.GroupAuth)
	if nav.Current() == gate.GroupTabs {
		// The gate already moved us to the authenticated area.
		fmt.Printf("already logged in as %s\n", app.session.State().User.Email)
		return nil
	}

	if !app.loginScreen(ctx) {
		return errors.New("login failed")
	}
	return nil
}

func runRegister(cmd *cobra.Command, _ []string) error {
	app := getApp()
	ctx := logger.WithTrace(cmd.Context())

	nav, _ := app.enter(ctx, gate.GroupAuth)
	if nav.Current() == gate.GroupTabs {
		fmt.Printf("already logged in as %s\n", app.session.State().User.Email)
		return nil
	}

	if !app.registerScreen(ctx) {
		return errors.New("registration failed")
	}
	return nil
}

func runLogout(cmd *cobra.Command, _ []string) error {
	app := getApp()
	ctx := logger.WithTrace(cmd.Context())

	if _, err := app.enter(ctx, gate.GroupTabs); err != nil {
		return err
	}
	app.session.Logout(ctx)
	fmt.Println("logged out")
	return nil
}

func runWhoami(cmd *cobra.Command, _ []string) error {
	app := getApp()
	ctx := logger.WithTrace(cmd.Context())

	if _, err := app.enter(ctx, gate.GroupTabs); err != nil {
		return err
	}

	// Fresh profile from the backend, not the stored snapshot: this is also
	// how a stale token gets noticed.
	u, err := app.client.Me(ctx)
	if err != nil {
		return fmt.Errorf("can't fetch profile: %w", err)
	}
	fmt.Printf("%s <%s> (id %d)\n", u.Name, u.Email, u.ID)
	return nil
}

// loginScreen is the terminal rendition of the login screen: prompts for
// credentials, a few attempts before giving up. Returns whether the session
// ended up authenticated.
func (a *app) loginScreen(ctx context.Context) bool {
	fmt.Println("Log in to your todo account")
	for attempt := 0; attempt < maxLoginAttempts; attempt++ {
		email, err := readLine("email: ")
		if err != nil {
			return false
		}
		password, err := readPassword("password: ")
		if err != nil {
			return false
		}

		if a.session.Login(ctx, email, password) {
			fmt.Printf("logged in as %s\n", a.session.State().User.Name)
			return true
		}
		printErr("login failed, try again")
	}
	return false
}

func (a *app) registerScreen(ctx context.Context) bool {
	fmt.Println("Create your todo account")
	name, err := readLine("name: ")
	if err != nil {
		return false
	}
	email, err := readLine("email: ")
	if err != nil {
		return false
	}

	for attempt := 0; attempt < maxLoginAttempts; attempt++ {
		password, err := readPassword("password: ")
		if err != nil {
			return false
		}
		confirm, err := readPassword("confirm password: ")
		if err != nil {
			return false
		}
		if password != confirm {
			printErr("passwords don't match, try again")
			continue
		}

		if a.session.Register(ctx, name, email, password) {
			fmt.Printf("welcome, %s\n", a.session.State().User.Name)
			return true
		}
		printErr("registration failed, try again")
	}
	return false
}
