package main

import (
	"context"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"reelvault/internal/apiclient"
	"reelvault/internal/config"
	"reelvault/internal/queue"
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
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) apiAddr() string {
	if c.addrFlag != nil && strings.TrimSpace(*c.addrFlag) != "" {
		return strings.TrimSpace(*c.addrFlag)
	}
	if cfg, err := c.ensureConfig(); err == nil && cfg != nil {
		return strings.TrimSpace(cfg.Paths.APIBind)
	}
	return ""
}

func (c *commandContext) dialClient(ctx context.Context) *apiclient.Client {
	addr := c.apiAddr()
	if addr == "" {
		return nil
	}
	var token string
	if cfg, err := c.ensureConfig(); err == nil && cfg != nil {
		token = cfg.Paths.APIToken
	}
	client := apiclient.New(addr, token)
	if !client.Ping(ctx) {
		return nil
	}
	return client
}

// withQueue runs fn with the daemon client when the daemon is reachable, or
// with direct store access otherwise. Exactly one of the two is non-nil.
func (c *commandContext) withQueue(ctx context.Context, fn func(client *apiclient.Client, store *queue.Store) error) error {
	if client := c.dialClient(ctx); client != nil {
		return fn(client, nil)
	}

	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := queue.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(nil, store)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
