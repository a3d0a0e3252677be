package config

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
)

type Config struct {
	Bank     Bank     `json:"Bank"`
	Exchange Exchange `json:"Exchange"`

	// global keys
	DataDir string `json:"DataDir"`
	LogLvl  string `json:"LogLvl"`
}

// Bank holds the account and card policy constants. They are products of
// policy, not derived business rules.
type Bank struct {
	Currency       string  `json:"Currency"`
	OpeningBalance float64 `json:"OpeningBalance"`
	SavingsRate    float64 `json:"SavingsRate"`
	DepositRate    float64 `json:"DepositRate"`
	CreditLimit    float64 `json:"CreditLimit"`
	CashbackRate   float64 `json:"CashbackRate"`
	CardValidYears int     `json:"CardValidYears"`
}

type Exchange struct {
	// cron spec driving the price refresh, owned by the composition root
	RefreshSpec string `json:"RefreshSpec"`
}

func Default() *Config {
	return &Config{
		Bank: Bank{
			Currency:       "RUB",
			OpeningBalance: 1000,
			SavingsRate:    5.5,
			DepositRate:    8.0,
			CreditLimit:    300000,
			CashbackRate:   3.0,
			CardValidYears: 4,
		},
		Exchange: Exchange{
			RefreshSpec: "@every 30s",
		},
		DataDir: defaultDataDir(),
		LogLvl:  "info",
	}
}

// Load reads a JSON config file over the defaults. A missing file is not an
// error; a present but unreadable one is.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); err != nil {
		return cfg, nil
	}
	text, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(text, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "fpibank"
	}
	return filepath.Join(home, ".fpibank")
}
