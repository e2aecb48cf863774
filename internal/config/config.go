// Package config loads node configuration from defaults, <home>/config/app.toml,
// WAGER_* environment variables and command-line flags, in increasing
// precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"onchainwager/internal/escrow"
	"onchainwager/internal/ledger"
	"onchainwager/internal/logging"
	"onchainwager/internal/vault"
)

const (
	EnvPrefix   = "WAGER"
	DefaultHome = ".wager"
	fileName    = "app.toml"
)

type Config struct {
	Home      string  `mapstructure:"home"`
	LogLevel  string  `mapstructure:"log_level"`
	LogFormat string  `mapstructure:"log_format"`
	ABCI      ABCI    `mapstructure:"abci"`
	DB        DB      `mapstructure:"db"`
	Genesis   Genesis `mapstructure:"genesis"`
}

type ABCI struct {
	Addr      string `mapstructure:"addr"`
	Transport string `mapstructure:"transport"` // socket|grpc
}

type DB struct {
	Backend string `mapstructure:"backend"` // goleveldb|memdb
}

// Genesis seeds the ledger on InitChain. CometBFT's app_state, when
// present, takes precedence over the file values.
type Genesis struct {
	Owner             string            `mapstructure:"owner" json:"owner"`
	Relayer           string            `mapstructure:"relayer" json:"relayer,omitempty"`
	FeeBps            uint32            `mapstructure:"fee_bps" json:"feeBps"`
	FeeRecipient      string            `mapstructure:"fee_recipient" json:"feeRecipient,omitempty"`
	FeeSplitBps       uint32            `mapstructure:"fee_split_bps" json:"feeSplitBps"`
	MaxExposureCapBps uint32            `mapstructure:"max_exposure_cap_bps" json:"maxExposureCapBps"`
	MinDeposit        uint64            `mapstructure:"min_deposit" json:"minDeposit"`
	MinBonusClaim     uint64            `mapstructure:"min_bonus_claim" json:"minBonusClaim"`
	LpWhitelist       []string          `mapstructure:"lp_whitelist" json:"lpWhitelist,omitempty"`
	Games             []string          `mapstructure:"games" json:"games,omitempty"`
	Faucet            map[string]uint64 `mapstructure:"faucet" json:"faucet,omitempty"`
}

func DefaultGenesis() Genesis {
	return Genesis{
		FeeBps:            escrow.DefaultFeeBps,
		FeeSplitBps:       vault.DefaultFeeSplitBps,
		MaxExposureCapBps: vault.DefaultExposureCapBps,
		Games:             []string{"roulette"},
		Faucet:            map[string]uint64{},
	}
}

// SetDefaults registers every key so that env and flag overrides resolve.
func SetDefaults(v *viper.Viper) {
	g := DefaultGenesis()
	v.SetDefault("home", DefaultHome)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", logging.FormatPlain)
	v.SetDefault("abci.addr", "tcp://127.0.0.1:26658")
	v.SetDefault("abci.transport", "socket")
	v.SetDefault("db.backend", "goleveldb")
	v.SetDefault("genesis.owner", g.Owner)
	v.SetDefault("genesis.relayer", g.Relayer)
	v.SetDefault("genesis.fee_bps", g.FeeBps)
	v.SetDefault("genesis.fee_recipient", g.FeeRecipient)
	v.SetDefault("genesis.fee_split_bps", g.FeeSplitBps)
	v.SetDefault("genesis.max_exposure_cap_bps", g.MaxExposureCapBps)
	v.SetDefault("genesis.min_deposit", g.MinDeposit)
	v.SetDefault("genesis.min_bonus_claim", g.MinBonusClaim)
	v.SetDefault("genesis.lp_whitelist", []string{})
	v.SetDefault("genesis.games", g.Games)
	v.SetDefault("genesis.faucet", g.Faucet)
}

// FilePath is where init writes and start reads the config file.
func FilePath(home string) string {
	return filepath.Join(home, "config", fileName)
}

// Load resolves the configuration for home. A missing file is not an error.
func Load(v *viper.Viper, home string) (Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path := FilePath(home)
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("stat %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.Home = home
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// WriteDefault writes a config file populated with defaults plus genesis
// overrides. An existing file is left untouched.
func WriteDefault(home string, g Genesis) (string, error) {
	path := FilePath(home)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("mkdir config: %w", err)
	}
	v := viper.New()
	SetDefaults(v)
	v.Set("home", home)
	if g.Owner != "" {
		v.Set("genesis.owner", g.Owner)
	}
	if g.Relayer != "" {
		v.Set("genesis.relayer", g.Relayer)
	}
	if g.FeeRecipient != "" {
		v.Set("genesis.fee_recipient", g.FeeRecipient)
	}
	if err := v.SafeWriteConfigAs(path); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

func (c Config) Validate() error {
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	switch c.LogFormat {
	case logging.FormatPlain, logging.FormatJSON:
	default:
		return fmt.Errorf("log_format must be %s or %s, got %q", logging.FormatPlain, logging.FormatJSON, c.LogFormat)
	}
	switch c.ABCI.Transport {
	case "socket", "grpc":
	default:
		return fmt.Errorf("abci.transport must be socket or grpc, got %q", c.ABCI.Transport)
	}
	switch c.DB.Backend {
	case "goleveldb", "memdb":
	default:
		return fmt.Errorf("db.backend must be goleveldb or memdb, got %q", c.DB.Backend)
	}
	return c.Genesis.Validate()
}

func (g Genesis) Validate() error {
	if _, err := parseAddress("genesis.owner", g.Owner, false); err != nil {
		return err
	}
	if _, err := parseAddress("genesis.relayer", g.Relayer, true); err != nil {
		return err
	}
	if _, err := parseAddress("genesis.fee_recipient", g.FeeRecipient, true); err != nil {
		return err
	}
	if g.FeeBps > escrow.MaxFeeBps {
		return fmt.Errorf("genesis.fee_bps %d exceeds %d", g.FeeBps, escrow.MaxFeeBps)
	}
	if g.FeeSplitBps > ledger.BpsDenominator {
		return fmt.Errorf("genesis.fee_split_bps %d exceeds %d", g.FeeSplitBps, ledger.BpsDenominator)
	}
	if g.MaxExposureCapBps < vault.MinExposureCapBps || g.MaxExposureCapBps > vault.MaxExposureCapBps {
		return fmt.Errorf("genesis.max_exposure_cap_bps %d outside [%d,%d]",
			g.MaxExposureCapBps, vault.MinExposureCapBps, vault.MaxExposureCapBps)
	}
	for _, lp := range g.LpWhitelist {
		if _, err := parseAddress("genesis.lp_whitelist", lp, false); err != nil {
			return err
		}
	}
	for addr, amount := range g.Faucet {
		if _, err := parseAddress("genesis.faucet", addr, false); err != nil {
			return err
		}
		if amount == 0 {
			return fmt.Errorf("genesis.faucet[%s] is zero", addr)
		}
	}
	for _, handle := range g.Games {
		if strings.TrimSpace(handle) == "" {
			return fmt.Errorf("genesis.games contains an empty handle")
		}
	}
	return nil
}

// Address parses a validated genesis address field; empty yields zero.
func Address(s string) common.Address {
	if s == "" {
		return common.Address{}
	}
	return common.HexToAddress(s)
}

func parseAddress(field, s string, optional bool) (common.Address, error) {
	if s == "" {
		if optional {
			return common.Address{}, nil
		}
		return common.Address{}, fmt.Errorf("%s is required", field)
	}
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%s: %q is not a hex address", field, s)
	}
	a := common.HexToAddress(s)
	if a == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%s is the zero address", field)
	}
	return a, nil
}
