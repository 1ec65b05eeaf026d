package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/clothify/storefront/internal/core/ports"
	"github.com/clothify/storefront/internal/core/service"
	"github.com/clothify/storefront/pkg/logger"
)

func seedAdminCmd() *cobra.Command {
	var in ports.RegisterInput

	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create an administrator account",
		Long: `Create an administrator account. This is the only way to obtain the
admin role; the HTTP API always registers plain users.

The password may be passed with --password or STOREFRONT_ADMIN_PASSWORD.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if in.Password == "" {
				in.Password = os.Getenv("STOREFRONT_ADMIN_PASSWORD")
			}
			return seedAdmin(cmd.Context(), in)
		},
	}

	cmd.Flags().StringVar(&in.Email, "email", "", "Administrator email")
	cmd.Flags().StringVar(&in.Password, "password", "", "Administrator password")
	cmd.Flags().StringVar(&in.Name, "name", "", "Display name")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func seedAdmin(ctx context.Context, in ports.RegisterInput) error {
	cfg, _, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.close(context.Background()) }()

	gate, err := newGate(cfg, st.users, service.WithLogger(logger.Component("auth")))
	if err != nil {
		return err
	}

	user, err := gate.ProvisionAdmin(ctx, in)
	if err != nil {
		return err
	}
	fmt.Printf("admin %s created (id %s)\n", user.Email, user.ID)
	return nil
}
