package main

import (
	"strings"
	"sync"

	"slidecast/internal/api"
	"slidecast/internal/config"
)

type commandContext struct {
	addrFlag   *string
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(addrFlag, configFlag *string) *commandContext {
	return &commandContext{
		addrFlag:   addrFlag,
		configFlag: configFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// apiClient resolves the daemon address from the --addr flag, falling back
// to the configured bind address.
func (c *commandContext) apiClient() (*api.Client, error) {
	if c.addrFlag != nil && strings.TrimSpace(*c.addrFlag) != "" {
		return api.NewClient(*c.addrFlag), nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return api.NewClient(cfg.Paths.APIBind), nil
}
