package main

import (
	"path/filepath"

	"github.com/inconshreveable/log15"
	"github.com/olebedev/emitter"
	"github.com/robfig/cron"
	"gopkg.in/urfave/cli.v1"

	"github.com/fpibank/go-fpibank/bank"
	"github.com/fpibank/go-fpibank/chain"
	"github.com/fpibank/go-fpibank/config"
	"github.com/fpibank/go-fpibank/exchange"
	"github.com/fpibank/go-fpibank/ledger"
	"github.com/fpibank/go-fpibank/store"
)

// node wires the core components together. The cron scheduler is owned
// here, not by the registry: the core only exposes the refresh mutation.
type node struct {
	cfg      *config.Config
	st       store.Store
	chain    *chain.Chain
	bank     *bank.Book
	exchange *exchange.Registry
	bus      *emitter.Emitter
	cron     *cron.Cron
}

func newNode(ctx *cli.Context) (*node, error) {
	cfg, err := config.Load(ctx.GlobalString(configFlag.Name))
	if err != nil {
		return nil, err
	}
	if dir := ctx.GlobalString(dataDirFlag.Name); dir != "" {
		cfg.DataDir = dir
	}
	if lvl := ctx.GlobalString(lvlFlag.Name); lvl != "" {
		cfg.LogLvl = lvl
	}
	logLevel, err := log15.LvlFromString(cfg.LogLvl)
	if err != nil {
		logLevel = log15.LvlInfo
	}
	log15.Root().SetHandler(log15.LvlFilterHandler(logLevel, log15.StderrHandler))

	st, err := store.NewLevelDB(filepath.Join(cfg.DataDir, "ledgerdb"))
	if err != nil {
		return nil, err
	}

	bus := emitter.New(16)
	c := chain.New(st, chain.WithEmitter(bus))
	return &node{
		cfg:      cfg,
		st:       st,
		chain:    c,
		bank:     bank.New(st, cfg.Bank),
		exchange: exchange.New(st, c, exchange.WithEmitter(bus)),
		bus:      bus,
	}, nil
}

func (n *node) startPriceRefresh() {
	n.cron = cron.New()
	n.cron.AddFunc(n.cfg.Exchange.RefreshSpec, func() {
		if err := n.exchange.RefreshPrices(); err != nil {
			log.Error("price refresh failed", "err", err)
		}
	})
	n.cron.Start()
}

// watchEvents mirrors core events to the log, standing in for a UI feed.
func (n *node) watchEvents() {
	blocks := n.bus.On(chain.TopicBlock)
	prices := n.bus.On(exchange.TopicPrices)
	for {
		select {
		case event := <-blocks:
			if block, ok := event.Args[0].(*ledger.Block); ok {
				log.Info("new block", "index", block.Index, "hash", block.Hash)
			}
		case <-prices:
			log.Info("prices refreshed")
		}
	}
}

func (n *node) close() {
	if n.cron != nil {
		n.cron.Stop()
	}
	if err := n.st.Close(); err != nil {
		log.Error("store close failed", "err", err)
	}
}
