package conf

import (
	"github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/config"
)

type Bootstrap struct {
	Server *Server        `json:"server"`
	Radar  *config.Config `json:"radar"`
}

type Server struct {
	Http *HTTP `json:"http"`
}

type HTTP struct {
	Addr    string `json:"addr"`
	Timeout string `json:"timeout"`
}
