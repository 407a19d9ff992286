/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
)

// newPasswordEnv is read when --new-password is not given
const newPasswordEnv = "STOCKROOM_NEW_PASSWORD"

// userCmd represents the user command group
var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user accounts",
}

var userRegisterCmd = &cobra.Command{
	Use:   "register <username>",
	Short: "Register a new user account",
	Long: `Register a new user account. The password must meet
security.min_password_length from the config file.

Example:
  stockroom user register alice --new-password secret1`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		password, _ := cmd.Flags().GetString("new-password")
		if password == "" {
			password = os.Getenv(newPasswordEnv)
		}

		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer func() {
			err = errors.Join(err, closeSession(s))
		}()

		if err := s.Register(args[0], password); err != nil {
			return err
		}
		cmd.Printf("User %s registered successfully\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userRegisterCmd)

	userRegisterCmd.Flags().String("new-password", "", "Password for the new account (or "+newPasswordEnv+")")
}
