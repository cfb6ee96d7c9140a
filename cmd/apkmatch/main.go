// Command apkmatch prints the APKs of an archive manifest that should be
// installed on a device described by a device-spec file.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"

	"github.com/google/bundletool-sub016/internal/config"
	"github.com/google/bundletool-sub016/internal/engine"
	"github.com/google/bundletool-sub016/internal/storage"
)

type options struct {
	manifest      string
	device        string
	modules       []string
	instant       bool
	includeAssets bool
	strict        bool
	jsonOut       bool
	logLevel      string
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	o := &options{}
	fs := flag.NewFlagSet("apkmatch", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.manifest, "manifest", "", "archive manifest (YAML or JSON)")
	fs.StringVar(&o.device, "device", "", "device spec (YAML or JSON)")
	fs.StringSliceVar(&o.modules, "modules", nil, "modules to match; "+engine.AllModules+" selects every module")
	fs.BoolVar(&o.instant, "instant", false, "match instant variants and modules only")
	fs.BoolVar(&o.includeAssets, "include-asset-modules", false, "include install-time asset modules")
	fs.BoolVar(&o.strict, "strict", false, "fail when a module has no ABI or density split for the device")
	fs.BoolVar(&o.jsonOut, "json", false, "print matched APKs as JSON")
	fs.StringVar(&o.logLevel, "log-level", "warn", "log level")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if o.manifest == "" || o.device == "" {
		return nil, errors.New("--manifest and --device are required")
	}
	return o, nil
}

func run(args []string, stdout, stderr io.Writer) int {
	o, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, err)
		return 2
	}
	config.SetupLogging(o.logLevel)
	logger := zerolog.New(zerolog.ConsoleWriter{Out: stderr}).Level(zerolog.GlobalLevel()).With().Timestamp().Logger()

	archive, err := storage.ReadManifest(o.manifest)
	if err != nil {
		logger.Error().Err(err).Msg("read manifest")
		return 1
	}
	spec, err := storage.ReadDeviceSpec(o.device)
	if err != nil {
		logger.Error().Err(err).Msg("read device spec")
		return 1
	}
	device, err := engine.ParseDevice(spec)
	if err != nil {
		logger.Error().Err(err).Msg("parse device spec")
		return 1
	}

	apks, err := engine.Match(archive, device, engine.Options{
		Modules:                        o.modules,
		InstantOnly:                    o.instant,
		IncludeInstallTimeAssetModules: o.includeAssets,
		StrictConsistency:              o.strict,
		Logger:                         &logger,
	})
	if err != nil {
		logger.Error().Err(err).Msg("match")
		if errors.Is(err, engine.ErrIncompatibleDevice) {
			return 3
		}
		return 1
	}

	if o.jsonOut {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if apks == nil {
			apks = []engine.MatchedApk{}
		}
		_ = enc.Encode(apks)
		return 0
	}
	for _, a := range apks {
		fmt.Fprintln(stdout, a.Path)
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
