package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/csg33k/paperdesk/internal/config"
)

var configEnvVars = []string{
	"PAPERDESK_CONFIG",
	"PAPERDESK_ADDR",
	"PAPERDESK_STORAGE_BACKEND",
	"PAPERDESK_GCS_BUCKET",
	"PAPERDESK_REF_TTL",
	"PAPERDESK_MAX_UPLOAD_MB",
}

func clearConfigEnvVars(t *testing.T) {
	for _, k := range configEnvVars {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		clearConfigEnvVars(t)

		convey.Convey("When loading with defaults only", func() {
			cfg, err := config.Load()

			convey.Convey("Then the built-in settings apply", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.StorageBackend, convey.ShouldEqual, config.BackendDisk)
				convey.So(cfg.UploadDir, convey.ShouldEqual, "uploads")
				convey.So(cfg.RefTTL, convey.ShouldEqual, 30*time.Minute)
				convey.So(cfg.MaxUploadMB, convey.ShouldEqual, 25)
			})
		})

		convey.Convey("When environment variables are set", func() {
			t.Setenv("PAPERDESK_ADDR", ":9090")
			t.Setenv("PAPERDESK_REF_TTL", "5m")
			t.Setenv("PAPERDESK_MAX_UPLOAD_MB", "4")

			cfg, err := config.Load()

			convey.Convey("Then they override the defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.RefTTL, convey.ShouldEqual, 5*time.Minute)
				convey.So(cfg.MaxUploadMB, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When a YAML file is given", func() {
			path := filepath.Join(t.TempDir(), "paperdesk.yaml")
			yaml := "addr: \":7070\"\nstorage_backend: gcs\ngcs_bucket: papers-test\n"
			convey.So(os.WriteFile(path, []byte(yaml), 0o600), convey.ShouldBeNil)
			t.Setenv("PAPERDESK_CONFIG", path)

			cfg, err := config.Load()

			convey.Convey("Then its values are used", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.StorageBackend, convey.ShouldEqual, config.BackendGCS)
				convey.So(cfg.GCSBucket, convey.ShouldEqual, "papers-test")
			})

			convey.Convey("And env still wins over the file", func() {
				t.Setenv("PAPERDESK_ADDR", ":6060")
				cfg, err := config.Load()
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":6060")
			})
		})

		convey.Convey("When the gcs backend has no bucket", func() {
			t.Setenv("PAPERDESK_STORAGE_BACKEND", "gcs")

			_, err := config.Load()

			convey.Convey("Then loading fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "gcs_bucket")
			})
		})

		convey.Convey("When the config file is missing", func() {
			t.Setenv("PAPERDESK_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))

			_, err := config.Load()

			convey.Convey("Then loading fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestValidate(t *testing.T) {
	convey.Convey("Given the default config", t, func() {
		cfg := config.Default()

		convey.Convey("It is valid", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("An unknown backend is rejected", func() {
			cfg.StorageBackend = "ftp"
			convey.So(cfg.Validate(), convey.ShouldNotBeNil)
		})

		convey.Convey("Non-positive limits are rejected", func() {
			cfg.RefTTL = 0
			cfg.MaxUploadMB = -1
			err := cfg.Validate()
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(err.Error(), convey.ShouldContainSubstring, "ref_ttl")
			convey.So(err.Error(), convey.ShouldContainSubstring, "max_upload_mb")
		})

		convey.Convey("A sub-second ref_ttl is rejected", func() {
			cfg.RefTTL = time.Nanosecond
			err := cfg.Validate()
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(err.Error(), convey.ShouldContainSubstring, "ref_ttl")

			cfg.RefTTL = time.Second
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Logger honours the level", func() {
			cfg.LogLevel = "debug"
			cfg.LogFormat = "json"
			convey.So(cfg.Logger(), convey.ShouldNotBeNil)
		})
	})
}
