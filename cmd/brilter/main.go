// Command brilter bridges two Ethernet interfaces through a pluggable
// per-direction packet filter, per spec §4.J. Four shapes of
// invocation are supported, dispatched on argument shape:
//
//	brilter [-d] lan-iface wan-iface                     hard-coded default policy
//	brilter [-I inbound] [-O outbound] [-d] lan wan       BPF-expression filters
//	brilter -policy policy.json [-d] lan wan              declarative JSON policy
//	brilter [-d] script-path                              script-driven
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/caladri/brilter/bpfproc"
	"github.com/caladri/brilter/dir"
	"github.com/caladri/brilter/internal/buildinfo"
	"github.com/caladri/brilter/nic"
	"github.com/caladri/brilter/pipeline"
	"github.com/caladri/brilter/policy"
	"github.com/caladri/brilter/script"
)

const daemonizedEnvVar = "BRILTER_DAEMONIZED"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("brilter", flag.ContinueOnError)
	inboundFilter := fs.String("I", "", "inbound BPF filter expression")
	outboundFilter := fs.String("O", "", "outbound BPF filter expression")
	policyPath := fs.String("policy", "", "declarative JSON policy file")
	daemonize := fs.Bool("d", false, "detach from the controlling terminal")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [-d] lan-iface wan-iface\n", fs.Name())
		fmt.Fprintf(os.Stderr, "       %s [-I inbound] [-O outbound] [-d] lan-iface wan-iface\n", fs.Name())
		fmt.Fprintf(os.Stderr, "       %s -policy policy.json [-d] lan-iface wan-iface\n", fs.Name())
		fmt.Fprintf(os.Stderr, "       %s [-d] script-path\n", fs.Name())
	}
	if err := fs.Parse(args); err != nil {
		return 1
	}

	if *daemonize && os.Getenv(daemonizedEnvVar) == "" {
		if err := reexecDaemonized(); err != nil {
			fmt.Fprintf(os.Stderr, "brilter: daemonize: %s\n", err)
			return 1
		}
		return 0
	}

	logger := log.With().Str("version", buildinfo.Version()).Logger()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	switch fs.NArg() {
	case 1:
		return runScript(ctx, fs.Arg(0), &logger)
	case 2:
		return runBridge(ctx, fs.Arg(0), fs.Arg(1), *inboundFilter, *outboundFilter, *policyPath, &logger)
	default:
		fs.Usage()
		return 1
	}
}

func runScript(ctx context.Context, path string, logger *zerolog.Logger) int {
	if err := script.Execute(ctx, path, logger); err != nil {
		logger.Error().Err(err).Msg("script execution failed")
		return 1
	}
	return 0
}

func runBridge(ctx context.Context, lanName, wanName, inboundFilter, outboundFilter, policyPath string, logger *zerolog.Logger) int {
	inboundProc, outboundProc, err := buildProcessors(inboundFilter, outboundFilter, policyPath)
	if err != nil {
		logger.Error().Err(err).Msg("failed to build filters")
		return 1
	}

	lan, err := nic.Open(nic.QualifyName(lanName))
	if err != nil {
		logger.Error().Err(err).Str("iface", lanName).Msg("failed to open lan interface")
		return 1
	}
	wan, err := nic.Open(nic.QualifyName(wanName))
	if err != nil {
		logger.Error().Err(err).Str("iface", wanName).Msg("failed to open wan interface")
		return 1
	}

	// A private, cancellable child of ctx: if either direction stops
	// (cleanly or with an error) the other must stop too, rather than
	// leaving half the bridge running unattended. A sync/poll ioctl
	// failure itself is process-fatal (nic.Handle.fatal); this covers
	// every other way a pipeline can end.
	bridgeCtx, cancelBridge := context.WithCancel(ctx)
	defer cancelBridge()

	outbound, err := pipeline.Start(bridgeCtx, lan.Producer(), outboundProc, wan.Consumer(), logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to start outbound pipeline")
		return 1
	}
	inbound, err := pipeline.Start(bridgeCtx, wan.Producer(), inboundProc, lan.Consumer(), logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to start inbound pipeline")
		return 1
	}

	select {
	case <-outbound.Done():
	case <-inbound.Done():
	}
	cancelBridge()

	var failed bool
	if err := outbound.Wait(); err != nil {
		logger.Error().Err(err).Msg("outbound pipeline stopped")
		failed = true
	}
	if err := inbound.Wait(); err != nil {
		logger.Error().Err(err).Msg("inbound pipeline stopped")
		failed = true
	}
	if failed {
		return 1
	}
	return 0
}

// buildProcessors picks the filter source per spec §4.J: operator-
// supplied -I/-O strings, a declarative JSON policy file, or (absent
// both) the hard-coded default directional policy.
func buildProcessors(inboundFilter, outboundFilter, policyPath string) (inbound, outbound pipeline.Processor, err error) {
	switch {
	case policyPath != "":
		data, err := os.ReadFile(policyPath)
		if err != nil {
			return nil, nil, fmt.Errorf("reading policy file: %w", err)
		}
		in, out, err := policy.LoadJSON(data)
		if err != nil {
			return nil, nil, err
		}
		inboundFilter, outboundFilter = in, out
		fallthrough
	case inboundFilter != "" || outboundFilter != "":
		if inboundFilter == "" {
			inboundFilter = policy.DefaultInboundFilter
		}
		if outboundFilter == "" {
			outboundFilter = policy.DefaultOutboundFilter
		}
		inboundProc, err := bpfproc.New(inboundFilter)
		if err != nil {
			return nil, nil, fmt.Errorf("compiling inbound filter: %w", err)
		}
		outboundProc, err := bpfproc.New(outboundFilter)
		if err != nil {
			return nil, nil, fmt.Errorf("compiling outbound filter: %w", err)
		}
		return inboundProc, outboundProc, nil
	default:
		return policy.Default(dir.DirectionInbound), policy.Default(dir.DirectionOutbound), nil
	}
}

// reexecDaemonized re-executes the current process detached from its
// controlling terminal: stdio redirected to /dev/null and a new session
// via SysProcAttr.Setsid. Go has no daemon(3) equivalent in the
// standard library; this is the idiomatic Unix substitute.
func reexecDaemonized() error {
	devnull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return err
	}
	defer devnull.Close()

	cmd := exec.Command(os.Args[0], os.Args[1:]...)
	cmd.Env = append(os.Environ(), daemonizedEnvVar+"=1")
	cmd.Stdin = devnull
	cmd.Stdout = devnull
	cmd.Stderr = devnull
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	return cmd.Start()
}
