package main

import (
	"log"
	"os"

	"go-markdown-view/internal/config"
	"go-markdown-view/internal/host"
	"go-markdown-view/internal/logging"

	"github.com/neovim/go-client/nvim/plugin"
)

// configEnv names a config file or config name for the plugin host.
const configEnv = "GO_MARKDOWN_VIEW_CONFIG"

// Set up the connection to Neovim
// Take the plugin object we register commands
// Keep the connection alive and listen for request
func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("[go-markdown-view] %v", err)
	}
	if err := logging.Setup(cfg.Trace); err != nil {
		log.Fatalf("[go-markdown-view] %v", err)
	}

	plugin.Main(func(p *plugin.Plugin) error {
		log.Println("[go-markdown-view] registering handlers")
		return host.Register(p, cfg)
	})
}

func loadConfig() (*config.Config, error) {
	name := os.Getenv(configEnv)
	if name == "" {
		return config.DefaultConfig(), nil
	}
	return config.LoadConfig(name)
}
