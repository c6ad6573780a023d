package main

import (
	"flag"
)

type AppFlags struct {
	GlobalConfigFile string
	EnvFile          string
}

func ParseFlags() AppFlags {
	globalConfigFile := flag.String("config", "", "Path to the global YAML/JSON configuration file. If not set, searches default locations.")
	globalConfigFileAlias := flag.String("c", "", "Alias for -config")

	envFile := flag.String("env-file", "", "Path to the .env file carrying the API token and workflow ID. Defaults to .env in the working directory.")
	envFileAlias := flag.String("e", "", "Alias for -env-file")

	flag.Parse()

	flags := AppFlags{}

	if *globalConfigFile != "" {
		flags.GlobalConfigFile = *globalConfigFile
	} else if *globalConfigFileAlias != "" {
		flags.GlobalConfigFile = *globalConfigFileAlias
	}

	if *envFile != "" {
		flags.EnvFile = *envFile
	} else if *envFileAlias != "" {
		flags.EnvFile = *envFileAlias
	}

	return flags
}
