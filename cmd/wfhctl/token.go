package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/wfh-backend-go/internal/pkg/jwt"
	"github.com/spf13/cobra"
)

func tokenCmd() *cobra.Command {
	var (
		employeeID string
		userID     string
		role       string
		secret     string
		expiration string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an access token for an employee",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !user.Role(role).Valid() {
				return fmt.Errorf("unknown role %q", role)
			}
			if secret == "" {
				secret = os.Getenv("JWT_SECRET_KEY")
			}
			if secret == "" {
				return errors.New("--secret or JWT_SECRET_KEY is required")
			}
			if userID == "" {
				userID = employeeID
			}

			token, _, err := jwt.NewJWTService(secret, expiration).GenerateAccessToken(userID, employeeID, user.Role(role))
			if err != nil {
				return fmt.Errorf("generate token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&employeeID, "employee-id", "", "Employee the token acts as")
	cmd.Flags().StringVar(&userID, "user-id", "", "User id claim (defaults to the employee id)")
	cmd.Flags().StringVar(&role, "role", string(user.RoleStaff), "Role claim (staff, manager, director, hr)")
	cmd.Flags().StringVar(&secret, "secret", "", "Signing secret (defaults to JWT_SECRET_KEY)")
	cmd.Flags().StringVar(&expiration, "expires-in", "1h", "Token lifetime")
	_ = cmd.MarkFlagRequired("employee-id")
	return cmd
}
