package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rhony-martinez/proyecto-ac/internal/config"
	"github.com/rhony-martinez/proyecto-ac/internal/repository"
	"github.com/rhony-martinez/proyecto-ac/internal/repository/db"
	"github.com/rhony-martinez/proyecto-ac/internal/service"
)

var rootCmd = &cobra.Command{
	Use:   "proyecto-ac",
	Short: "Indoor thermal comfort controller",
	Long: "proyecto-ac supervises one climatized room: keypad authentication,\n" +
		"RFID tag registration, periodic Fanger PMV evaluation, and the fan,\n" +
		"louvre, indicator, and buzzer actions each comfort state commands.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDaemon(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "configs", "directory holding config.yml")
	rootCmd.Flags().Bool("sim", false, "override sim.enabled from the config file")

	rootCmd.AddCommand(pmvCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig resolves the --config directory and loads config.yml over the
// built-in defaults.
func loadConfig(cmd *cobra.Command) (config.Config, bool, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return config.Config{}, false, err
	}
	return config.Load(path)
}

// openServices builds the persistence stack for the one-shot subcommands.
// The caller is responsible for the returned close function.
func openServices(cmd *cobra.Command) (*service.Service, func() error, error) {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	conn, err := db.InitDB(cfg.DB.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("init sqlite: %w", err)
	}
	repos := repository.NewRepository(conn)
	return service.NewService(repos), conn.Close, nil
}

// closeQuietly is the defer shape for subcommands that only read.
func closeQuietly(closer func() error) {
	_ = closer()
}
