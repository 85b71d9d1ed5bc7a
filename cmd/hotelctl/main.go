package main

import (
	"fmt"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"os"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:          "hotelctl",
		Short:        "Hotel reservation operations",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		MigrateCmd(),
		ReconcileCmd(),
		CalendarCmd(),
		FindRoomCmd(),
		AddRoomTypeCmd(),
		AddRoomCmd(),
		MaintenanceCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
