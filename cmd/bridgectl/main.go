// Command bridgectl pokes at a bridge host: it sends one method call and
// can stay subscribed to dump pushed events.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/webviewkit/bridge"
	"github.com/webviewkit/bridge/internal/config"
	"github.com/webviewkit/bridge/internal/logx"
	"github.com/webviewkit/bridge/transport/wstransport"
	"github.com/webviewkit/bridge/wire"
)

func main() {
	var cfg config.ClientConfig
	cfg.BindFlags()
	method := flag.String("method", "VKWebAppGetUserInfo", "method to invoke")
	props := flag.String("props", "", "props object as JSON")
	timeout := flag.Duration("timeout", 10*time.Second, "how long to wait for the result")
	listen := flag.Duration("listen", 0, "keep dumping inbound events for this long after the call")
	flag.Parse()
	logx.Configure(cfg.LogLevel)
	bridge.RegisterMetrics(prometheus.DefaultRegisterer)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	t, err := wstransport.Dial(ctx, wstransport.Config{
		URL:        cfg.URL,
		ClientName: cfg.ClientName,
		ClientKey:  cfg.ClientKey,
		Logger:     &logx.Log,
	})
	if err != nil {
		logx.Log.Fatal().Err(err).Msg("connect")
	}
	defer func() { _ = t.Close() }()

	b := bridge.New(t, bridge.Options{Logger: &logx.Log})
	logx.Log.Info().Str("platform", b.Platform()).Bool("webview", b.IsWebView()).Msg("connected")

	l := bridge.ListenerFunc(func(e wire.Envelope) {
		logx.Log.Info().Str("type", e.Type).RawJSON("data", orEmpty(e.Data)).Msg("event")
	})
	b.Subscribe(&l)
	defer b.Unsubscribe(&l)

	var rawProps json.RawMessage
	if *props != "" {
		rawProps = json.RawMessage(*props)
	}
	data, err := b.Send(ctx, *method, rawProps)
	if err != nil {
		logx.Log.Error().Err(err).Str("method", *method).Msg("call failed")
		os.Exit(1)
	}
	fmt.Println(string(orEmpty(data)))

	if *listen > 0 {
		time.Sleep(*listen)
	}
}

func orEmpty(data json.RawMessage) json.RawMessage {
	if len(data) == 0 {
		return json.RawMessage(`{}`)
	}
	return data
}
