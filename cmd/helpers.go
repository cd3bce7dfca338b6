package cmd

import (
	"os"

	"github.com/pipeboot/pipeboot/internal/config"
	"github.com/pipeboot/pipeboot/internal/confirm"
	"github.com/pipeboot/pipeboot/internal/engine"
	"github.com/pipeboot/pipeboot/internal/system"
)

func loadConfig() (*config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	return config.LoadFile(configPath)
}

func newEngine(conf confirm.Confirmer) (*engine.Engine, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	wd, _ := os.Getwd()
	return engine.New(cfg, &system.Host{}, conf, wd), nil
}
