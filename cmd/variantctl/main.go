// Command variantctl resolves and audits variant catalogs stored in JSON or
// YAML snapshot files, without a database. It also seeds admin accounts.
//
// Usage:
//
//	variantctl resolve --file tee.yaml --select 1=11 --select 2=22
//	variantctl estimate --file tee.yaml --select 1=12
//	variantctl audit --file tee.yaml
//	variantctl create-admin --email ops@gtd.co.id --name Ops < password.txt
package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger().Level(zerolog.WarnLevel)

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
