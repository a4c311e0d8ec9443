// Package config binds the commands' settings from environment variables
// and command line flags. Environment provides the defaults; flags win.
package config

import (
	"flag"
	"os"
	"strconv"
)

// HostsimConfig holds configuration for the host simulator.
type HostsimConfig struct {
	Port        int
	ClientKey   string
	RedisAddr   string
	Kind        string
	Platform    string
	CatalogPath string
	UserID      int64
	UserName    string
	LogLevel    string
}

// BindFlags populates defaults from the environment and binds flags so main
// can call flag.Parse().
func (c *HostsimConfig) BindFlags() {
	port, _ := strconv.Atoi(getEnv("PORT", "8080"))
	c.Port = port
	c.ClientKey = getEnv("CLIENT_KEY", "")
	c.RedisAddr = getEnv("REDIS_ADDR", "localhost:6379")
	c.Kind = getEnv("HOST_KIND", "native")
	c.Platform = getEnv("HOST_PLATFORM", "ios")
	c.CatalogPath = getEnv("CATALOG_PATH", "")
	uid, _ := strconv.ParseInt(getEnv("USER_ID", "42"), 10, 64)
	c.UserID = uid
	c.UserName = getEnv("USER_NAME", "Test User")
	c.LogLevel = getEnv("LOG_LEVEL", "info")

	flag.IntVar(&c.Port, "port", c.Port, "HTTP listen port")
	flag.StringVar(&c.ClientKey, "client-key", c.ClientKey, "key bridge clients must present when registering; empty disables auth")
	flag.StringVar(&c.RedisAddr, "redis-addr", c.RedisAddr, "redis address backing the storage methods")
	flag.StringVar(&c.Kind, "kind", c.Kind, "host kind announced to clients: native or web")
	flag.StringVar(&c.Platform, "platform", c.Platform, "platform identity announced to clients")
	flag.StringVar(&c.CatalogPath, "catalog", c.CatalogPath, "YAML method catalogue; empty uses the built-in one")
	flag.Int64Var(&c.UserID, "user-id", c.UserID, "canned user id for user info requests")
	flag.StringVar(&c.UserName, "user-name", c.UserName, "canned user name for user info requests")
	flag.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level")
}

// ClientConfig holds configuration for the bridgectl client.
type ClientConfig struct {
	URL        string
	ClientKey  string
	ClientName string
	LogLevel   string
}

func (c *ClientConfig) BindFlags() {
	c.URL = getEnv("BRIDGE_URL", "ws://localhost:8080/bridge/connect")
	c.ClientKey = getEnv("CLIENT_KEY", "")
	c.ClientName = getEnv("CLIENT_NAME", "bridgectl")
	c.LogLevel = getEnv("LOG_LEVEL", "info")

	flag.StringVar(&c.URL, "url", c.URL, "host endpoint to connect to")
	flag.StringVar(&c.ClientKey, "client-key", c.ClientKey, "key presented to the host when registering")
	flag.StringVar(&c.ClientName, "client-name", c.ClientName, "client name reported to the host")
	flag.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level")
}

func getEnv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
