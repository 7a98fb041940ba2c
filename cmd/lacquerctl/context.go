package main

import (
	"fmt"
	"strings"
	"sync"

	"github.com/fr0stylo/lacquer/internal/adapters/sqlite"
	"github.com/fr0stylo/lacquer/internal/app/services"
	"github.com/fr0stylo/lacquer/internal/config"
	"github.com/fr0stylo/lacquer/internal/db"
)

type commandContext struct {
	dbFlag   *string
	jsonFlag *bool

	configOnce sync.Once
	config     config.Config
	configErr  error
}

func newCommandContext(dbFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{dbFlag: dbFlag, jsonFlag: jsonFlag}
}

func (c *commandContext) ensureConfig() (config.Config, error) {
	c.configOnce.Do(func() {
		cfg, err := config.LoadForTool()
		if err != nil {
			c.configErr = err
			return
		}
		if c.dbFlag != nil && strings.TrimSpace(*c.dbFlag) != "" {
			cfg.Database.Path = strings.TrimSpace(*c.dbFlag)
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// withStore opens the database for the duration of fn.
func (c *commandContext) withStore(fn func(cfg config.Config, store *sqlite.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	database, err := db.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database %s: %w", cfg.Database.Path, err)
	}
	defer func() {
		_ = database.Close()
	}()
	return fn(cfg, sqlite.NewStore(database))
}

func (c *commandContext) withJobs(fn func(jobs *services.JobService, store *sqlite.Store) error) error {
	return c.withStore(func(cfg config.Config, store *sqlite.Store) error {
		return fn(services.NewJobService(store, store, cfg.Worker.QueueName), store)
	})
}
