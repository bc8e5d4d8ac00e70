package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"todoctl/pkg/config"
	"todoctl/pkg/credstore"
	"todoctl/pkg/gate"
	"todoctl/pkg/logger"
	"todoctl/pkg/session"
	"todoctl/pkg/todo"
	"todoctl/pkg/xano"
)

var (
	cfgFile string
	a       *app
)

var rootCmd = &cobra.Command{
	Use:   "todoctl",
	Short: "Terminal client for the hosted todo backend",
	Long: `todoctl talks to the hosted todo API. Log in once; the session is
stored locally and attached to every call until the backend rejects it or
you log out.

Examples:
  todoctl login
  todoctl list
  todoctl add "buy milk" --desc "the lactose-free one"
  todoctl done 3
  todoctl logout`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.todoctl.yaml)")
	rootCmd.PersistentFlags().String("auth-api", "", "auth API base URL")
	rootCmd.PersistentFlags().String("todos-api", "", "todos API base URL")
	rootCmd.PersistentFlags().String("state-dir", "", "directory holding the stored session")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")

	_ = viper.BindPFlag("auth_api", rootCmd.PersistentFlags().Lookup("auth-api"))
	_ = viper.BindPFlag("todos_api", rootCmd.PersistentFlags().Lookup("todos-api"))
	_ = viper.BindPFlag("state_dir", rootCmd.PersistentFlags().Lookup("state-dir"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".todoctl")
	}

	viper.SetEnvPrefix("todoctl")
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()
}

// app wires the client, store, session manager and todo service together.
// Built once per invocation, after cobra has parsed flags.
type app struct {
	cfg     *config.Config
	store   credstore.Store
	client  *xano.Client
	session *session.Manager
	todos   *todo.Service
}

func getApp() *app {
	if a != nil {
		return a
	}

	cfg := config.Parse()
	if v := viper.GetString("auth_api"); v != `` {
		cfg.AuthAPIBase = v
	}
	if v := viper.GetString("todos_api"); v != `` {
		cfg.TodosAPIBase = v
	}
	if v := viper.GetString("state_dir"); v != `` {
		cfg.StateDir = v
	}
	if v := viper.GetString("log_level"); v != `` {
		cfg.LogLevel = v
	}
	logger.Run(cfg.LogLevel)

	store := credstore.NewFileStore(afero.NewOsFs(), cfg.StateDir)
	client := xano.NewClient(cfg.AuthAPIBase, cfg.TodosAPIBase, store)
	mgr := session.NewManager(store, client)
	client.OnUnauthorized(func() {
		mgr.Invalidate(context.Background())
	})

	a = &app{
		cfg:     cfg,
		store:   store,
		client:  client,
		session: mgr,
		todos:   todo.NewService(client),
	}
	return a
}

var errAuthRequired = errors.New("authentication required")

// termNav maps gate screens onto terminal flows. Current is the group of
// whatever is on screen: the invoked command, or the login flow after a
// redirect.
type termNav struct {
	a       *app
	ctx     context.Context
	current gate.Group
}

func (n *termNav) Current() gate.Group {
	return n.current
}

func (n *termNav) Replace(s gate.Screen) {
	if s.Group() == n.current {
		return
	}
	n.current = s.Group()
	switch s {
	case gate.ScreenLogin, gate.ScreenRegister:
		n.a.loginScreen(n.ctx)
	case gate.ScreenHome:
		// The command body renders the authenticated area.
	}
}

// enter hydrates the session and lets the navigation gate settle the
// displayed screen group before the command body runs. A tabs-group command
// invoked without a session goes through the interactive login flow first;
// if that flow does not end authenticated, the command is refused.
func (a *app) enter(ctx context.Context, group gate.Group) (*termNav, error) {
	nav := &termNav{a: a, ctx: ctx, current: group}
	gate.New(nav).Attach(a.session)
	a.session.Hydrate(ctx)

	if group == gate.GroupTabs && nav.current != gate.GroupTabs {
		return nav, errAuthRequired
	}
	return nav, nil
}

func printErr(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}
