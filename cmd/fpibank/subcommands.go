package main

import (
	"fmt"
	"time"

	"gopkg.in/urfave/cli.v1"

	"github.com/fpibank/go-fpibank/bank"
)

var statsCommand = cli.Command{
	Name:  "stats",
	Usage: "print chain statistics",
	Action: func(ctx *cli.Context) error {
		n, err := newNode(ctx)
		if err != nil {
			return err
		}
		defer n.close()

		stats, err := n.chain.Stats()
		if err != nil {
			return err
		}
		fmt.Printf("blocks:       %d\n", stats.BlockCount)
		fmt.Printf("transactions: %d\n", stats.TransactionCount)
		fmt.Printf("valid:        %v\n", stats.IsValid)
		fmt.Printf("last block:   %s\n", time.Unix(stats.LastBlockTime, 0).Format(time.RFC3339))
		return nil
	},
}

var validateCommand = cli.Command{
	Name:  "validate",
	Usage: "verify the integrity of the whole chain",
	Action: func(ctx *cli.Context) error {
		n, err := newNode(ctx)
		if err != nil {
			return err
		}
		defer n.close()

		if !n.chain.Validate() {
			return cli.NewExitError("chain is CORRUPTED", 2)
		}
		fmt.Println("chain is valid")
		return nil
	},
}

var assetsCommand = cli.Command{
	Name:  "assets",
	Usage: "list tradable assets with current prices",
	Action: func(ctx *cli.Context) error {
		n, err := newNode(ctx)
		if err != nil {
			return err
		}
		defer n.close()

		for _, asset := range n.exchange.List() {
			fmt.Printf("%-5s %-14s %14.2f %+6.2f%%\n", asset.Symbol, asset.Name, asset.CurrentPrice, asset.PriceChange24h)
		}
		return nil
	},
}

var historyCommand = cli.Command{
	Name:      "history",
	Usage:     "show ledger transactions for a wallet address",
	ArgsUsage: "<address>",
	Action: func(ctx *cli.Context) error {
		address := ctx.Args().First()
		if address == "" {
			return cli.NewExitError("usage: fpibank history <address>", 1)
		}
		n, err := newNode(ctx)
		if err != nil {
			return err
		}
		defer n.close()

		txs, err := n.chain.TransactionsFor(address)
		if err != nil {
			return err
		}
		for _, tx := range txs {
			fmt.Printf("%s  %-8s %12.6f %-5s %s -> %s\n",
				time.Unix(tx.Timestamp, 0).Format("2006-01-02 15:04:05"),
				tx.Type, tx.Amount, tx.Symbol, tx.From, tx.To)
		}
		return nil
	},
}

// demoCommand runs a scripted end to end flow against a fresh node.
var demoCommand = cli.Command{
	Name:  "demo",
	Usage: "register a demo user, transfer fiat and trade crypto",
	Action: func(ctx *cli.Context) error {
		n, err := newNode(ctx)
		if err != nil {
			return err
		}
		defer n.close()

		user, err := n.bank.RegisterUser("demo@fpibank.ru", "Demo", "User", "+79990000000")
		if err == bank.ErrEmailTaken {
			return cli.NewExitError("demo user already exists, remove the datadir to rerun", 1)
		}
		if err != nil {
			return err
		}
		checking, err := n.bank.OpenAccount(user.Id, bank.Checking)
		if err != nil {
			return err
		}
		savings, err := n.bank.OpenAccount(user.Id, bank.Savings)
		if err != nil {
			return err
		}
		if _, err := n.bank.Transfer(checking.Id, savings.Id, 400, "rainy day"); err != nil {
			return err
		}

		buy, err := n.exchange.Buy(user.Wallet.Address, "BTC", 500)
		if err != nil {
			return err
		}
		if err := n.bank.CreditHolding(user.Id, buy.Symbol, buy.Amount); err != nil {
			return err
		}

		stats, err := n.chain.Stats()
		if err != nil {
			return err
		}
		fmt.Printf("user %s, wallet %s\n", user.Id, user.Wallet.Address)
		fmt.Printf("bought %.8f BTC, chain now %d blocks, valid=%v\n", buy.Amount, stats.BlockCount, stats.IsValid)
		return nil
	},
}
