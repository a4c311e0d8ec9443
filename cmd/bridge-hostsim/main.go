// Command bridge-hostsim runs a development host simulator that bridge
// clients can connect to over websocket.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/webviewkit/bridge/catalog"
	"github.com/webviewkit/bridge/internal/config"
	"github.com/webviewkit/bridge/internal/hostsim"
	"github.com/webviewkit/bridge/internal/logx"
)

func main() {
	var cfg config.HostsimConfig
	cfg.BindFlags()
	flag.Parse()
	logx.Configure(cfg.LogLevel)

	cat := catalog.Default()
	if cfg.CatalogPath != "" {
		var err error
		cat, err = catalog.LoadFile(cfg.CatalogPath)
		if err != nil {
			logx.Log.Fatal().Err(err).Str("path", cfg.CatalogPath).Msg("load catalogue")
		}
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

	name := strings.SplitN(cfg.UserName, " ", 2)
	first, last := name[0], ""
	if len(name) == 2 {
		last = name[1]
	}
	srv := hostsim.New(hostsim.Config{
		ClientKey: cfg.ClientKey,
		Kind:      cfg.Kind,
		Platform:  cfg.Platform,
		User:      hostsim.Profile{ID: cfg.UserID, FirstName: first, LastName: last},
	}, cat, rdb, logx.Log)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logx.Log.Info().Str("addr", addr).Str("platform", cfg.Platform).Msg("host simulator listening")
	if err := http.ListenAndServe(addr, srv.Router()); err != nil {
		logx.Log.Fatal().Err(err).Msg("serve")
	}
}
