package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"todoctl/pkg/gate"
	"todoctl/pkg/logger"
	"todoctl/pkg/xano"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List your todos",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create a todo",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAdd,
}

var doneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Mark a todo as completed",
	Args:  cobra.ExactArgs(1),
	RunE:  runDone,
}

var undoneCmd = &cobra.Command{
	Use:   "undone <id>",
	Short: "Mark a todo as not completed",
	Args:  cobra.ExactArgs(1),
	RunE:  runUndone,
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change a todo's title or description",
	Args:  cobra.ExactArgs(1),
	RunE:  runEdit,
}

var rmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a todo",
	Args:  cobra.ExactArgs(1),
	RunE:  runRm,
}

func init() {
	addCmd.Flags().StringP("desc", "d", "", "description")
	editCmd.Flags().String("title", "", "new title")
	editCmd.Flags().String("desc", "", "new description")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(undoneCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(rmCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	app := getApp()
	ctx := logger.WithTrace(cmd.Context())
	if _, err := app.enter(ctx, gate.GroupTabs); err != nil {
		return err
	}

	todos, err := app.todos.List(ctx)
	if err != nil {
		return fmt.Errorf("can't fetch todos: %w", err)
	}
	if len(todos) == 0 {
		fmt.Println("no todos yet")
		return nil
	}
	printTodos(todos)
	return nil
}

func runAdd(cmd *cobra.Command, args []string) error {
	app := getApp()
	ctx := logger.WithTrace(cmd.Context())
	if _, err := app.enter(ctx, gate.GroupTabs); err != nil {
		return err
	}

	desc, _ := cmd.Flags().GetString("desc")
	t, err := app.todos.Add(ctx, strings.Join(args, " "), desc)
	if err != nil {
		return fmt.Errorf("can't create todo: %w", err)
	}
	fmt.Printf("created todo %d: %s\n", t.ID, t.Title)
	return nil
}

func runDone(cmd *cobra.Command, args []string) error {
	return setCompleted(cmd, args[0], true)
}

func runUndone(cmd *cobra.Command, args []string) error {
	return setCompleted(cmd, args[0], false)
}

func setCompleted(cmd *cobra.Command, rawID string, completed bool) error {
	app := getApp()
	ctx := logger.WithTrace(cmd.Context())
	if _, err := app.enter(ctx, gate.GroupTabs); err != nil {
		return err
	}

	id, err := strconv.Atoi(rawID)
	if err != nil {
		return fmt.Errorf("bad todo id %q", rawID)
	}
	t, err := app.todos.SetCompleted(ctx, id, completed)
	if err != nil {
		return fmt.Errorf("can't update todo %d: %w", id, err)
	}

	state := "open"
	if t.Completed {
		state = "done"
	}
	fmt.Printf("todo %d is now %s\n", t.ID, state)
	return nil
}

func runEdit(cmd *cobra.Command, args []string) error {
	app := getApp()
	ctx := logger.WithTrace(cmd.Context())
	if _, err := app.enter(ctx, gate.GroupTabs); err != nil {
		return err
	}

	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("bad todo id %q", args[0])
	}
	title, _ := cmd.Flags().GetString("title")
	desc, _ := cmd.Flags().GetString("desc")

	t, err := app.todos.Edit(ctx, id, title, desc)
	if err != nil {
		return fmt.Errorf("can't update todo %d: %w", id, err)
	}
	fmt.Printf("updated todo %d: %s\n", t.ID, t.Title)
	return nil
}

func runRm(cmd *cobra.Command, args []string) error {
	app := getApp()
	ctx := logger.WithTrace(cmd.Context())
	if _, err := app.enter(ctx, gate.GroupTabs); err != nil {
		return err
	}

	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("bad todo id %q", args[0])
	}
	if err := app.todos.Remove(ctx, id); err != nil {
		return fmt.Errorf("can't delete todo %d: %w", id, err)
	}
	fmt.Printf("deleted todo %d\n", id)
	return nil
}

func printTodos(todos []*xano.Todo) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\t \tTITLE\tDESCRIPTION")
	for _, t := range todos {
		mark := " "
		if t.Completed {
			mark = "x"
		}
		fmt.Fprintf(w, "%d\t[%s]\t%s\t%s\n", t.ID, mark, t.Title, t.Description)
	}
	_ = w.Flush()
}
