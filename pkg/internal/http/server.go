package http

import (
	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	pkg "github.com/novolabs/spotlight/pkg/internal"
	"github.com/novolabs/spotlight/pkg/internal/http/api"
	"github.com/novolabs/spotlight/pkg/internal/services"
)

type App struct {
	app *fiber.App
}

func NewServer(engine *services.Engine) *App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		EnableIPValidation:    true,
		ServerHeader:          "Spotlight",
		AppName:               "Spotlight v" + pkg.AppVersion,
		JSONEncoder:           jsoniter.ConfigCompatibleWithStandardLibrary.Marshal,
		JSONDecoder:           jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal,
	})

	api.MapAPIs(app, engine)

	return &App{app}
}

func (v *App) Listen() {
	if err := v.app.Listen(viper.GetString("bind")); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when starting server...")
	}
}
