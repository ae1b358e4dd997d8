package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/peterbourgon/ff/v3"
	"github.com/sirupsen/logrus"

	"github.com/darkit/deviceinfo"
)

const serviceName = "Device"

func main() {
	if err := runMain(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, deviceinfo.ErrNotHandled) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func runMain(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("deviceinfo", flag.ContinueOnError)
	var (
		configFile = fs.String("config", "", "config file (.json, .yaml or .yml)")
		prefsDir   = fs.String("prefs-dir", "", "directory holding the persisted identifier")
		rulesFile  = fs.String("rules", "", "emulator rules file (.json, .yaml or .yml)")
		format     = fs.String("format", "", "response keys: legacy or clean")
		action     = fs.String("action", deviceinfo.ActionGetDeviceInfo, "bridge action to invoke")
		cpuTimeout = fs.String("cpuinfo-timeout", "", "timeout for the cpuinfo read, e.g. 3s, or off")
		logLevel   = fs.String("log-level", "", "log level (debug, info, warn, ...)")
		indent     = fs.Bool("indent", false, "indent the JSON output")
		watch      = fs.Bool("watch", false, "keep running and print again when the stored identifier is cleared")
	)
	if err := ff.Parse(fs, args, ff.WithEnvVarPrefix("DEVICEINFO")); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return err
	}
	override(&cfg.PreferencesDir, *prefsDir)
	override(&cfg.RulesFile, *rulesFile)
	override(&cfg.WireFormat, *format)
	override(&cfg.CPUInfoTimeout, *cpuTimeout)
	override(&cfg.LogLevel, *logLevel)

	if err := cfg.Validate(); err != nil {
		return err
	}
	log := cfg.Logger()
	log.SetOutput(os.Stderr)
	deviceinfo.SetLogger(log)

	opts, err := cfg.Options(log)
	if err != nil {
		return err
	}
	wire, _ := deviceinfo.ParseWireFormat(cfg.WireFormat)

	provider := deviceinfo.New(deviceinfo.SystemHost(cfg.PreferencesDir), opts)
	bridge := deviceinfo.NewBridge()
	bridge.Register(serviceName, deviceinfo.NewPlugin(provider, wire))

	emit := func() error {
		var failure string
		cb := deviceinfo.CallbackFuncs{
			OnSuccess: func(payload json.RawMessage) {
				printPayload(stdout, payload, *indent)
			},
			OnError: func(msg string) { failure = msg },
		}
		if err := bridge.Dispatch(ctx, serviceName, *action, nil, cb); err != nil {
			return err
		}
		if failure != "" {
			return errors.New(failure)
		}
		return nil
	}

	if err := emit(); err != nil {
		return err
	}
	if !*watch {
		return nil
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	resets := make(chan struct{}, 1)
	err = provider.WatchStore(ctx, func() {
		select {
		case resets <- struct{}{}:
		default:
		}
	})
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"dir": cfg.PreferencesDir}).Info("watching for identifier reset")
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-resets:
			if err := emit(); err != nil {
				return err
			}
		}
	}
}

func loadConfig(path string) (*deviceinfo.Config, error) {
	if path != "" {
		return deviceinfo.LoadConfigFile(path)
	}
	return deviceinfo.NewConfigLoader().LoadConfig()
}

func override(dst *string, v string) {
	if strings.TrimSpace(v) != "" {
		*dst = v
	}
}

func printPayload(w io.Writer, payload json.RawMessage, indent bool) {
	if indent {
		var buf bytes.Buffer
		if err := json.Indent(&buf, payload, "", "  "); err == nil {
			fmt.Fprintln(w, buf.String())
			return
		}
	}
	fmt.Fprintln(w, string(payload))
}
