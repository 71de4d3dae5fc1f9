package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"bursary-portal-backend/config"
	"bursary-portal-backend/db"
	"bursary-portal-backend/db/models"
	"bursary-portal-backend/users/repositories"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

type dbOpener func() (*gorm.DB, error)

func newRootCmd(open dbOpener, settings config.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "portal-admin",
		Short:        "Bursary portal administration",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		migrateCmd(open),
		grantCmd(open),
		revokeCmd(open),
		listCmd(open),
		seedCmd(open),
		backupCmd(settings),
	)
	return rootCmd
}

func migrateCmd(open dbOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the portal tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := open()
			if err != nil {
				return err
			}
			if err := config.Migrate(conn); err != nil {
				return fmt.Errorf("failed to migrate tables: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Tables migrated")
			return nil
		},
	}
}

// resolveUser accepts a user id or a registered email.
func resolveUser(ctx context.Context, users repositories.UserRepository, ref string) (*models.User, error) {
	if id, err := uuid.Parse(ref); err == nil {
		user, err := users.GetUserByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("user %s: %w", ref, err)
		}
		return user, nil
	}
	user, err := users.GetUserByEmail(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", ref, err)
	}
	return user, nil
}

func grantCmd(open dbOpener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grant <user-id|email>",
		Short: "Add an account to the admin allow-list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			role, _ := cmd.Flags().GetString("role")
			by, _ := cmd.Flags().GetString("by")

			conn, err := open()
			if err != nil {
				return err
			}
			users := repositories.NewUserRepository(conn)
			user, err := resolveUser(cmd.Context(), users, args[0])
			if err != nil {
				return err
			}
			admin, err := users.GrantAdmin(cmd.Context(), user.ID, role, by)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Granted %s to %s\n", admin.Role, user.Email)
			return nil
		},
	}
	cmd.Flags().String("role", models.DefaultAdminRole, "Admin role to record")
	cmd.Flags().String("by", "portal-admin", "Who granted the access")
	return cmd
}

func revokeCmd(open dbOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "revoke <user-id|email>",
		Short: "Remove an account from the admin allow-list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := open()
			if err != nil {
				return err
			}
			users := repositories.NewUserRepository(conn)
			user, err := resolveUser(cmd.Context(), users, args[0])
			if err != nil {
				return err
			}
			if err := users.RevokeAdmin(cmd.Context(), user.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Revoked admin access for %s\n", user.Email)
			return nil
		},
	}
}

func listCmd(open dbOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the admin allow-list",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := open()
			if err != nil {
				return err
			}
			admins, err := repositories.NewUserRepository(conn).ListAdmins(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "USER ID\tEMAIL\tROLE\tGRANTED BY\tGRANTED AT")
			for _, a := range admins {
				email := ""
				if a.User != nil {
					email = a.User.Email
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", a.UserID, email, a.Role, a.CreatedBy, a.CreatedAt.Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}
}

func seedCmd(open dbOpener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load demo applicants and applications",
		RunE: func(cmd *cobra.Command, args []string) error {
			adminEmail, _ := cmd.Flags().GetString("admin")

			conn, err := open()
			if err != nil {
				return err
			}
			n, err := db.SeedDemoData(conn)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d demo applications\n", n)

			if adminEmail = strings.TrimSpace(adminEmail); adminEmail != "" {
				if err := config.SeedInitialAdmin(conn, adminEmail); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().String("admin", "", "Email of a registered account to put on the allow-list")
	return cmd
}

func backupCmd(settings config.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Dump the database with pg_dump",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			file, err := config.BackupDatabase(settings, dir)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), file)
			return nil
		},
	}
	cmd.Flags().String("dir", "backups", "Directory for the dump file")
	return cmd
}
