package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage learners",
}

var userAddCmd = &cobra.Command{
	Use:   "add <email> <name>",
	Short: "Register a learner and assign the starter quiz",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		svc, err := openService(cmd, st)
		if err != nil {
			return err
		}
		u, qz, err := svc.Register(cmd.Context(), strings.ToLower(args[0]), strings.Join(args[1:], " "))
		if err != nil {
			return fmt.Errorf("register: %w", err)
		}
		fmt.Printf("Registered %s (id %d) with starter quiz %d of %d questions.\n",
			u.Email, u.ID, qz.ID, len(qz.QuestionIDs))
		return nil
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List learners",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		users, err := st.Users().List(cmd.Context())
		if err != nil {
			return fmt.Errorf("list users: %w", err)
		}
		if len(users) == 0 {
			fmt.Println("No learners yet.")
			return nil
		}

		fmt.Printf("%-5s  %-32s  %-24s  %s\n", "ID", "Email", "Name", "Joined")
		fmt.Println(strings.Repeat("─", 80))
		for _, u := range users {
			fmt.Printf("%-5d  %-32s  %-24s  %s\n",
				u.ID, truncate(u.Email, 32), truncate(u.Name, 24), u.CreatedAt.Local().Format("2006-01-02"))
		}
		return nil
	},
}

var userDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a learner with their quizzes and attempts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Users().Delete(cmd.Context(), id); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		fmt.Printf("Deleted learner %d.\n", id)
		return nil
	},
}

func init() {
	userCmd.AddCommand(userAddCmd)
	userCmd.AddCommand(userListCmd)
	userCmd.AddCommand(userDeleteCmd)
}
