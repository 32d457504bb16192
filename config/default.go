package config

import (
	yaml3 "gopkg.in/yaml.v3"
)

// defaultConfig is the baseline configuration document. Flags bound through
// viper override individual fields at run time.
var defaultConfig = `
scriptsPath: "scripts"
personasPath: "personas.yaml"
env: "local"
baseUrl: ""
graphqlPath: "/graphql"
registerPath: "/auth/register"
loginPath: "/auth/login"
category: ""
suite: ""
persona: ""
verbose: false
debug: false
disableANSI: false
parallel: false
failFast: false
dryRun: false
retries: 0
timeout: 30
rps: 0
output: ""
format: "console"
configPath: ""
`

func GetDefaultConfig() string {
	return defaultConfig
}

func New() *Config {
	cfg := &Config{}
	if err := yaml3.Unmarshal([]byte(defaultConfig), cfg); err != nil {
		panic(err)
	}
	return cfg
}
