package main

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"medflow-backend/internal/workflow"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()
			fmt.Println("Schema is up to date.")
			return nil
		},
	}

	statusesCmd := &cobra.Command{
		Use:   "statuses",
		Short: "Rewrite legacy patient status labels onto the current set",
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()

			report, err := workflow.MigrateStatuses(cmd.Context(), a.store, time.Now(), dryRun)
			if err != nil {
				return fmt.Errorf("status migration failed: %w", err)
			}

			verb := "Rewrote"
			if dryRun {
				verb = "Would rewrite"
			}
			fmt.Printf("Scanned %d patient(s). %s %d, locking %d.\n", report.Scanned, verb, report.Rewritten, report.Locked)
			labels := make([]string, 0, len(report.Unknown))
			for label := range report.Unknown {
				labels = append(labels, label)
			}
			sort.Strings(labels)
			for _, label := range labels {
				fmt.Printf("  unknown status %q left untouched on %d patient(s)\n", label, report.Unknown[label])
			}
			return nil
		},
	}
	statusesCmd.Flags().Bool("dry-run", false, "Report changes without writing them")
	cmd.AddCommand(statusesCmd)

	return cmd
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the default guarantors and admin account when missing",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()
			return seed(cmd.Context(), a)
		},
	}
}

func seed(ctx context.Context, a *app) error {
	n, err := a.svc.EnsureDefaultGuarantors(ctx)
	if err != nil {
		return fmt.Errorf("seed guarantors: %w", err)
	}
	if n > 0 {
		a.log.WithField("count", n).Info("seeded default guarantors")
	}
	if _, err := a.accounts.EnsureAdmin(ctx, a.cfg.DefaultAdminPassword); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	return nil
}

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage staff accounts",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a staff account",
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("username")
			password, _ := cmd.Flags().GetString("password")
			role, _ := cmd.Flags().GetString("role")
			email, _ := cmd.Flags().GetString("email")
			if username == "" || password == "" {
				return fmt.Errorf("--username and --password are required")
			}

			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()

			var emailPtr *string
			if email != "" {
				emailPtr = &email
			}
			u, err := a.accounts.CreateUser(cmd.Context(), username, password, role, emailPtr)
			if err != nil {
				return err
			}
			fmt.Printf("Created user %s (id %d, role %s).\n", u.Username, u.ID, u.Role)
			return nil
		},
	}
	createCmd.Flags().String("username", "", "Login name")
	createCmd.Flags().String("password", "", "Initial password")
	createCmd.Flags().String("role", "employee", "Role: admin or employee")
	createCmd.Flags().String("email", "", "Optional email address")
	cmd.AddCommand(createCmd)

	return cmd
}
