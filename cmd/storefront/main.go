// @title           Storefront API
// @version         1.0
// @description     Authentication gate and product catalog for the clothing storefront.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "storefront",
		Short: "Storefront auth gate and product API",
		Long: `Storefront serves the clothing shop backend: registration, login,
session tokens and the admin-gated product catalog.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		seedAdminCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
