package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/frackdev/frack/internal/db"
	"github.com/frackdev/frack/internal/service"
)

func init() {
	userCmd.AddCommand(userCreateCmd)
	userCmd.AddCommand(userLookupCmd)
	rootCmd.AddCommand(userCmd)
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user accounts",
}

var userCreateCmd = &cobra.Command{
	Use:   "create <email> [username]",
	Short: "Create a user account bound to an email address",
	Long: `Create a user account. The username defaults to the email address
when not given.

Examples:
  frack user create alice@example.com alice
  frack user create bob@example.com`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runUserCreate,
}

var userLookupCmd = &cobra.Command{
	Use:   "lookup <email>",
	Short: "Look up the username bound to an email address",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserLookup,
}

func openAuthService() (*service.AuthService, *db.DB, error) {
	database, err := db.Open(GetDBPath())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	return service.NewAuthService(database.DB), database, nil
}

func runUserCreate(cmd *cobra.Command, args []string) error {
	email := args[0]
	username := ""
	if len(args) > 1 {
		username = args[1]
	}

	svc, database, err := openAuthService()
	if err != nil {
		return err
	}
	defer database.Close()

	created, err := svc.CreateUser(context.Background(), email, username)
	if err != nil {
		return err
	}

	if IsJSON() {
		data, _ := json.MarshalIndent(map[string]string{"username": created}, "", "  ")
		fmt.Println(string(data))
		return nil
	}
	OutputLine("Created user %s for %s", created, email)
	return nil
}

func runUserLookup(cmd *cobra.Command, args []string) error {
	svc, database, err := openAuthService()
	if err != nil {
		return err
	}
	defer database.Close()

	username, err := svc.UsernameFromEmail(context.Background(), args[0])
	if err != nil {
		return err
	}

	if IsJSON() {
		data, _ := json.MarshalIndent(map[string]string{"username": username}, "", "  ")
		fmt.Println(string(data))
		return nil
	}
	OutputLine("%s", username)
	return nil
}
