package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

// Config targets a running messenger. Scenarios skip when GRPCAddr is empty.
type Config struct {
	GRPCAddr  string `envconfig:"MESSENGER_GRPC_ADDR"`
	DebugJSON bool   `envconfig:"E2E_DEBUG_JSON" default:"false"`
	Colours   bool   `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return Config{}, err
	}
	return config, nil
}
