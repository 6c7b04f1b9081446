package config

import (
	"testing"
	"time"

	utils "github.com/minaorangina/war/internal"
	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Run("defaults when nothing is set", func(t *testing.T) {
		cfg, err := Load()
		utils.AssertNoError(t, err)
		utils.AssertEqual(t, cfg, Default())
		utils.AssertEqual(t, cfg.Addr(), "127.0.0.1:4444")
	})

	t.Run("environment overrides defaults", func(t *testing.T) {
		t.Setenv("WAR_HOST", "0.0.0.0")
		t.Setenv("WAR_PORT", "5555")
		t.Setenv("WAR_IO_TIMEOUT", "5s")
		t.Setenv("WAR_HTTP_ADDR", ":8000")

		cfg, err := Load()
		utils.AssertNoError(t, err)
		utils.AssertEqual(t, cfg.Addr(), "0.0.0.0:5555")
		utils.AssertEqual(t, cfg.IOTimeout, 5*time.Second)
		utils.AssertEqual(t, cfg.HTTPAddr, ":8000")
		utils.AssertEqual(t, cfg.Concurrency, 1000)
	})

	t.Run("rejects values that do not parse", func(t *testing.T) {
		cases := map[string]string{
			"WAR_PORT":        "not-a-port",
			"WAR_IO_TIMEOUT":  "forever",
			"WAR_CONCURRENCY": "lots",
		}

		for name, value := range cases {
			t.Run(name, func(t *testing.T) {
				t.Setenv(name, value)

				cfg, err := Load()
				utils.AssertErrored(t, err)
				utils.AssertEqual(t, cfg, Config{})
			})
		}
	})

	t.Run("rejects values out of range", func(t *testing.T) {
		t.Setenv("WAR_CONCURRENCY", "0")

		_, err := Load()
		assert.Error(t, err)
	})
}
