package config

import (
	"flag"
	"fmt"
)

const HelpMessage = `
PahadiRaah seat-inventory and booking service.

Usage:
  pahadiraah [flags]

Flags:
  -config-path  path to the yaml config file (default "config.yaml")
  -help         print this message

Configuration is read from the yaml file, overridable by environment
variables (DATABASE_*, RABBITMQ_*, SERVER_PORT, AUTH_JWT_SECRET,
LOCATIONIQ_API_KEY, BOOKING_*).
`

func PrintHelp() {
	if HelpMessage != "" {
		fmt.Printf("%s", HelpMessage)
	} else {
		flag.Usage()
	}
}
