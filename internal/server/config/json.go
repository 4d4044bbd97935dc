package config

import (
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/avoronova/kinkeeper/internal/flagx"
	"github.com/avoronova/kinkeeper/internal/timex"
)

// JsonConfig is the intermediate DTO used only for reading JSON configuration
// files. It uses timex.Duration for interval fields, which allows parsing
// both string values such as "15m" and integer nanoseconds. After
// unmarshalling, its fields are copied into the runtime Config struct.
type JsonConfig struct {
	EndpointAddrHTTP            string         `json:"endpoint_addr_http"`
	DatabaseDSN                 string         `json:"database_dsn"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
}

// jsonConfigFlags extracts the config file path provided via -c or -config.
// Only these flags are parsed; other arguments are ignored, so the rest of
// the flag surface stays with parseFlags.
func jsonConfigFlags() string {
	var config string

	args := flagx.FilterArgs(os.Args[1:], []string{"-c", "-config"})

	fs := flag.NewFlagSet("json", flag.ContinueOnError)
	fs.StringVar(&config, "config", "", "Path to config file")
	fs.StringVar(&config, "c", "", "Path to config file (short)")
	_ = fs.Parse(args)

	return config
}

// parseJson loads configuration values from a JSON file into the provided
// Config. If no -c/-config flag is present, nothing is loaded. An unreadable
// or invalid file panics: a config file named explicitly on the command line
// must not be silently skipped.
func parseJson(config *Config) {
	jsonConfigFile := jsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.EndpointAddrHTTP != "" {
		config.EndpointAddrHTTP = c.EndpointAddrHTTP
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.AccessTokenValidityDuration.Duration != 0 {
		config.AccessTokenValidityDuration = time.Duration(c.AccessTokenValidityDuration.Duration)
	}
}
