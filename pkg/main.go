package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	pkg "github.com/novolabs/spotlight/pkg/internal"
	localCache "github.com/novolabs/spotlight/pkg/internal/cache"
	"github.com/novolabs/spotlight/pkg/internal/config"
	"github.com/novolabs/spotlight/pkg/internal/database"
	"github.com/novolabs/spotlight/pkg/internal/http"
	"github.com/novolabs/spotlight/pkg/internal/platform"
	"github.com/novolabs/spotlight/pkg/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
}

func main() {
	// Booting screen
	fmt.Println(color.YellowString(" ____              _   _ _       _     _\n/ ___| _ __   ___ | |_| (_) __ _| |__ | |_\n\\___ \\| '_ \\ / _ \\| __| | |/ _` | '_ \\| __|\n ___) | |_) | (_) | |_| | | (_| | | | | |_\n|____/| .__/ \\___/ \\__|_|_|\\__, |_| |_|\\__|\n      |_|                  |___/"))
	fmt.Printf("%s v%s\n", color.New(color.FgHiYellow).Add(color.Bold).Sprintf("Spotlight"), pkg.AppVersion)
	fmt.Printf("The community media feed and highlight service\n")
	color.HiBlack("=====================================================\n")

	// Configure settings
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.SetConfigName("settings")
	viper.SetConfigType("toml")

	// Load settings
	if err := viper.ReadInConfig(); err != nil {
		log.Panic().Err(err).Msg("An error occurred when loading settings.")
	}

	// Configure cache
	if err := localCache.NewStore(); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when initializing cache.")
	}

	// Connect to database
	if err := database.NewGorm(); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when connect to database.")
	} else if err := database.RunMigration(database.C); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when running database auto migration.")
	}

	// Build the engagement engine
	gateway := platform.NewGatewayClient(
		viper.GetString("gateway.endpoint"),
		viper.GetString("gateway.token"),
	)
	engine := services.NewEngine(config.NewViperProvider(), gateway)

	// Configure timed tasks
	quartz := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(&log.Logger)))
	quartz.AddFunc("@every 60m", engine.DoAutoDatabaseCleanup)
	quartz.Start()

	// Server
	go http.NewServer(engine).Listen()

	// Messages
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	quartz.Stop()
}
