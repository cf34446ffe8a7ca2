package config

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"vidconv/internal/dirs"
)

// Keys understood by Viper. Env vars are VIDCONV_<KEY>.
const (
	KeyFFmpeg         = "ffmpeg"
	KeyFFprobe        = "ffprobe"
	KeyLogLevel       = "log_level"
	KeyVerbose        = "verbose"
	KeyListenAddr     = "listen_addr"
	KeyRateLimitRPM   = "rate_limit_rpm"
	KeyDefaultQuality = "default_quality"
)

// Settings is the resolved configuration.
type Settings struct {
	FFmpeg         string `mapstructure:"ffmpeg"`
	FFprobe        string `mapstructure:"ffprobe"`
	LogLevel       string `mapstructure:"log_level"`
	Verbose        bool   `mapstructure:"verbose"`
	ListenAddr     string `mapstructure:"listen_addr"`
	RateLimitRPM   int    `mapstructure:"rate_limit_rpm"`
	DefaultQuality string `mapstructure:"default_quality"`
}

// SetDefaults registers the built-in defaults on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyFFmpeg, "")
	v.SetDefault(KeyFFprobe, "")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyVerbose, false)
	v.SetDefault(KeyListenAddr, ":8080")
	v.SetDefault(KeyRateLimitRPM, 60)
	v.SetDefault(KeyDefaultQuality, "")
}

// Init wires Viper with config paths, env, defaults, and flag bindings.
// It is non-fatal: a missing config file is ignored, a malformed one is returned.
func Init(root *cobra.Command) error {
	v := viper.GetViper()
	SetDefaults(v)

	if cfgDir, err := dirs.ConfigDir(); err == nil {
		v.AddConfigPath(cfgDir)
	}
	v.SetConfigName("config") // supports config.{yaml|yml|json|toml}

	v.SetEnvPrefix("VIDCONV")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	pf := root.PersistentFlags()
	_ = v.BindPFlag(KeyFFmpeg, pf.Lookup("ffmpeg"))
	_ = v.BindPFlag(KeyFFprobe, pf.Lookup("ffprobe"))
	_ = v.BindPFlag(KeyLogLevel, pf.Lookup("log-level"))
	_ = v.BindPFlag(KeyVerbose, pf.Lookup("verbose"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}
	return nil
}

// Load resolves Settings from v. Verbose forces the debug level.
func Load(v *viper.Viper) (Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, err
	}
	if s.Verbose {
		s.LogLevel = "debug"
	}
	return s, nil
}

// Current is Load over the global Viper instance.
func Current() (Settings, error) {
	return Load(viper.GetViper())
}
