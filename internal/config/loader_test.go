package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/spadl/internal/config"
)

var configEnvVars = []string{
	"SPADL_CONFIG", "SPADL_ADDR", "SPADL_QUEUE_SIZE", "SPADL_WORKER_COUNT",
	"SPADL_FIELD_LENGTH", "SPADL_ADD_DRIBBLES", "SPADL_LOG_LEVEL", "SPADL_DEFAULT_BODYPART",
}

func clearConfigEnvVars() {
	for _, name := range configEnvVars {
		_ = os.Unsetenv(name)
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "spadl.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New())
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("SPADL_ADDR", ":8080")
			_ = os.Setenv("SPADL_QUEUE_SIZE", "64")
			_ = os.Setenv("SPADL_FIELD_LENGTH", "100")
			_ = os.Setenv("SPADL_ADD_DRIBBLES", "false")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 64)
				convey.So(cfg.FieldLength, convey.ShouldEqual, 100.0)
				convey.So(cfg.AddDribbles, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			path := createTempConfigFile(t, `
addr: ":9090"
queue_size: 300
worker_count: 24
default_bodypart: head
`)
			_ = os.Setenv("SPADL_CONFIG", path)
			_ = os.Setenv("SPADL_WORKER_COUNT", "32")

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 300)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 32)
				convey.So(cfg.DefaultBodyPart, convey.ShouldEqual, "head")
				convey.So(cfg.FieldWidth, convey.ShouldEqual, 68.0)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			_ = os.Setenv("SPADL_CONFIG", createTempConfigFile(t, `invalid: yaml: content: [`))

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("SPADL_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with an invalid value", func() {
			_ = os.Setenv("SPADL_LOG_LEVEL", "loud")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with an empty addr", func() {
			_ = os.Setenv("SPADL_ADDR", "")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}
