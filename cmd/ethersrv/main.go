// Command ethersrv serves host directories to MS-DOS clients as virtual
// drives over raw Ethernet (EtherType 0xEDF5).
//
// usage: ethersrv [-f] [-v] [-h] [-config file] <interface> <path> [<path>...]
//
// Each path is assigned to the next drive letter starting at C:. Running
// requires the ability to open raw sockets (CAP_NET_RAW, plus
// CAP_NET_ADMIN for promiscuous mode).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"

	"github.com/etherdfs/ethersrv/internal/config"
	"github.com/etherdfs/ethersrv/internal/drivetable"
	"github.com/etherdfs/ethersrv/internal/fsops"
	"github.com/etherdfs/ethersrv/internal/journal"
	"github.com/etherdfs/ethersrv/internal/lockfile"
	"github.com/etherdfs/ethersrv/internal/logger"
	"github.com/etherdfs/ethersrv/internal/rawsock"
	"github.com/etherdfs/ethersrv/internal/server"
)

func usage() {
	fmt.Fprintf(os.Stderr, `EtherDFS server for Linux

usage: ethersrv [options] interface rootpath1 [rootpath2] ... [rootpathN]

Options:
  -f             Keep in foreground (accepted for compatibility; the
                 process always stays in the foreground and is meant to be
                 supervised by the init system)
  -v             Verbose / debug logging
  -h             Display this information
  -config FILE   Optional YAML/TOML configuration file
`)
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		foreground = flag.Bool("f", false, "keep in foreground")
		verbose    = flag.Bool("v", false, "verbose / debug logging")
		help       = flag.Bool("h", false, "display usage")
		configPath = flag.String("config", "", "optional configuration file")
	)
	flag.Usage = usage
	flag.Parse()

	if *help {
		usage()
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) < 2 {
		usage()
		return fmt.Errorf("an interface and at least one root path are required")
	}
	ifName, paths := args[0], args[1:]

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	if *verbose {
		logger.SetLevel("DEBUG")
	} else {
		logger.SetLevel(cfg.Logging.Level)
	}
	if !*foreground {
		logger.Info("running in the foreground; daemonization is left to the service manager")
	}

	fsys := afero.NewOsFs()

	probe := func(root string) (bool, error) {
		if v, ok := cfg.FATOverrides[root]; ok {
			return v, nil
		}
		fat, err := drivetable.ProbeFAT(root)
		if err != nil {
			logger.Debug("fat probe %s: %v", root, err)
			return false, nil
		}
		return fat, nil
	}

	table, err := drivetable.New(fsys, paths, probe)
	if err != nil {
		return err
	}

	sock, err := rawsock.Open(ifName)
	if err != nil {
		return fmt.Errorf("%w (are you root?)", err)
	}
	defer sock.Close()

	lock, err := lockfile.Acquire(cfg.LockFilePath)
	if err != nil {
		return err
	}
	defer lock.Release()

	var store *journal.Store
	if cfg.Journal.Enabled {
		store, err = journal.Open(cfg.Journal.Path, cfg.Journal.TTL)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	mac := sock.LocalMAC()
	fmt.Printf("Listening on '%s' [%s]\n", ifName, formatMAC(mac))
	for drive := byte(drivetable.FirstDrive); drive <= drivetable.LastDrive; drive++ {
		entry := table.Lookup(drive)
		if entry == nil {
			break
		}
		free := "unknown"
		if du, err := fsops.Statvfs(fsys, entry.Root); err == nil {
			free = humanize.IBytes(du.FreeBytes) + " free"
		}
		fat := ""
		if entry.FATBacked {
			fat = ", FAT-backed"
		}
		fmt.Printf("Drive %c: mapped to %s (%s%s)\n", 'A'+drive, entry.Root, free, fat)
	}

	srv, err := server.New(server.Options{
		Socket:  sock,
		FS:      fsys,
		Drives:  table,
		Journal: store,
		Watch:   cfg.Watch.Enabled,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		return err
	}
	logger.Info("shutting down")
	return nil
}

func formatMAC(mac [6]byte) string {
	parts := make([]string, len(mac))
	for i, b := range mac {
		parts[i] = fmt.Sprintf("%02X", b)
	}
	return strings.Join(parts, ":")
}
