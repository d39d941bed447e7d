package config_test

import (
	"errors"
	"testing"

	"github.com/okian/platformer/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.APIPath, convey.ShouldEqual, "/api")
			convey.So(cfg.Store, convey.ShouldEqual, config.StoreMongo)
			convey.So(cfg.TokenCookie, convey.ShouldEqual, "platformer-token")
			convey.So(cfg.TokenExpireDays, convey.ShouldEqual, 30)
			convey.So(cfg.LeaderboardCapacity, convey.ShouldEqual, 20)
			convey.So(cfg.MergeRetries, convey.ShouldEqual, 5)
			convey.So(cfg.AllowedOrigins, convey.ShouldContain, "http://localhost:5500")
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a valid config", t, func() {
		cfg := config.New()

		cases := []struct {
			msg    string
			mutate func(c *config.Config)
		}{
			{"addr must not be empty", func(c *config.Config) { c.Addr = "" }},
			{"token_secret must not be empty", func(c *config.Config) { c.TokenSecret = "" }},
			{"leaderboard_capacity must be at least", func(c *config.Config) { c.LeaderboardCapacity = 0 }},
			{"merge_retries must be at least", func(c *config.Config) { c.MergeRetries = 0 }},
			{"unknown store", func(c *config.Config) { c.Store = "redis" }},
			{"required for the mongo store", func(c *config.Config) { c.MongoURI = "" }},
		}
		for _, tc := range cases {
			convey.Convey("When "+tc.msg, func() {
				tc.mutate(cfg)
				err := cfg.Validate()

				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, tc.msg)
			})
		}

		convey.Convey("When the memory store is selected without mongo settings", func() {
			cfg.Store = config.StoreMemory
			cfg.MongoURI = ""
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}
