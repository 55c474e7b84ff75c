package main

import (
	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/http"

	"github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/config"
	"github.com/iWorld-y/competitor_radar/app/display/internal/conf"
	"github.com/iWorld-y/competitor_radar/app/display/internal/server"
	"github.com/iWorld-y/competitor_radar/app/display/internal/service"
)

// initApp init kratos application.
func initApp(c *conf.Server, radar *config.Config, logger log.Logger) (*kratos.App, func(), error) {
	uc, cleanup, err := server.NewRadarUseCase(radar, logger)
	if err != nil {
		return nil, nil, err
	}
	svc := service.NewAnalysisService(uc, logger)
	hs := server.NewHTTPServer(c, svc, logger)
	return newApp(logger, hs), cleanup, nil
}

func newApp(logger log.Logger, hs *http.Server) *kratos.App {
	return kratos.New(
		kratos.ID(id),
		kratos.Name(Name),
		kratos.Version(Version),
		kratos.Metadata(map[string]string{}),
		kratos.Logger(logger),
		kratos.Server(hs),
	)
}
