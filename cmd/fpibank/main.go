package main

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/inconshreveable/log15"
	"gopkg.in/urfave/cli.v1"
)

// fpibank is the command-line shell around the ledger core. It plays the
// role of the UI collaborator: it invokes the core's operations and
// displays their results.

var (
	log = log15.New("module", "fpibank/main")

	app = cli.NewApp()

	dataDirFlag = cli.StringFlag{
		Name:  "datadir",
		Usage: "data directory for the ledger database",
	}
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "JSON config file path",
	}
	lvlFlag = cli.StringFlag{
		Name:  "lvl",
		Usage: "log level (debug|info|warn|error)",
	}
)

func init() {
	app.Name = "fpibank"
	app.Usage = "FPI Bank ledger node"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{dataDirFlag, configFlag, lvlFlag}
	app.Commands = []cli.Command{
		statsCommand,
		validateCommand,
		assetsCommand,
		historyCommand,
		demoCommand,
		serveCommand,
	}
	sort.Sort(cli.CommandsByName(app.Commands))
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServe(ctx *cli.Context) error {
	n, err := newNode(ctx)
	if err != nil {
		return err
	}
	defer n.close()

	n.startPriceRefresh()
	log.Info("node started", "datadir", n.cfg.DataDir, "refresh", n.cfg.Exchange.RefreshSpec)

	go n.watchEvents()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, syscall.SIGINT, syscall.SIGTERM)
	<-interrupt
	log.Info("node stopping")
	return nil
}

var serveCommand = cli.Command{
	Name:   "serve",
	Usage:  "run the node with periodic price refresh",
	Action: runServe,
}
