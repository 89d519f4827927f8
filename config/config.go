package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	configFileEnvName = "AGGREGATOR_CONFIG_FILE"
	envPrefix         = "AGGREGATOR"
)

// Historical names of the SerpApi key, read when
// AGGREGATOR_VENDORS_HOME_DEPOT_API_KEY is unset.
var serpAPIKeyEnvNames = []string{"SERPAPI_KEY", "NEXT_PUBLIC_SERPAPI_KEY"}

type httpServer struct {
	Addr           string        `mapstructure:"addr"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	CORSOrigins    []string      `mapstructure:"cors_origins"`
}

type search struct {
	VendorTimeout  time.Duration `mapstructure:"vendor_timeout"`
	DefaultVendors []string      `mapstructure:"default_vendors"`
	DefaultSort    string        `mapstructure:"default_sort"`
}

type homeDepot struct {
	APIKey   string        `mapstructure:"api_key"`
	Endpoint string        `mapstructure:"endpoint"`
	Country  string        `mapstructure:"country"`
	PageSize int           `mapstructure:"page_size"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Attempts int           `mapstructure:"attempts"`
}

type apiKeyVendor struct {
	APIKey string `mapstructure:"api_key"`
}

type localSuppliers struct {
	Suppliers []string `mapstructure:"suppliers"`
}

type vendors struct {
	HomeDepot homeDepot      `mapstructure:"home_depot"`
	Lowes     apiKeyVendor   `mapstructure:"lowes"`
	Menards   apiKeyVendor   `mapstructure:"menards"`
	Local     localSuppliers `mapstructure:"local"`
}

type topics struct {
	SearchEvents      string `mapstructure:"search_events"`
	Partitions        int    `mapstructure:"partitions"`
	ReplicationFactor int    `mapstructure:"replication_factor"`
}

type tlsFiles struct {
	CA   string `mapstructure:"ca"`
	Cert string `mapstructure:"cert"`
	Key  string `mapstructure:"key"`
}

func (t tlsFiles) Enabled() bool {
	return t.CA != "" && t.Cert != "" && t.Key != ""
}

type broker struct {
	SeedBrokers        []string `mapstructure:"seed_brokers"`
	SchemaRegistryURLs []string `mapstructure:"schema_registry_urls"`
	Topics             topics   `mapstructure:"topics"`
	TLS                tlsFiles `mapstructure:"tls"`
}

// Enabled reports whether search events should be published.
func (b broker) Enabled() bool {
	return len(b.SeedBrokers) != 0
}

type Config struct {
	LogLevel string     `mapstructure:"log_level"`
	HTTP     httpServer `mapstructure:"http"`
	Search   search     `mapstructure:"search"`
	Vendors  vendors    `mapstructure:"vendors"`
	Broker   broker     `mapstructure:"broker"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")

	v.SetDefault("http.addr", ":3000")
	v.SetDefault("http.request_timeout", 30*time.Second)
	v.SetDefault("http.cors_origins", []string{"*"})

	v.SetDefault("search.vendor_timeout", 15*time.Second)
	v.SetDefault("search.default_vendors", []string{"home-depot"})
	v.SetDefault("search.default_sort", "price_low_to_high")

	v.SetDefault("vendors.home_depot.api_key", "")
	v.SetDefault("vendors.home_depot.endpoint", "https://serpapi.com/search")
	v.SetDefault("vendors.home_depot.country", "us")
	v.SetDefault("vendors.home_depot.page_size", 24)
	v.SetDefault("vendors.home_depot.timeout", 10*time.Second)
	v.SetDefault("vendors.home_depot.attempts", 2)
	v.SetDefault("vendors.lowes.api_key", "")
	v.SetDefault("vendors.menards.api_key", "")
	v.SetDefault("vendors.local.suppliers", []string{})

	v.SetDefault("broker.seed_brokers", []string{})
	v.SetDefault("broker.schema_registry_urls", []string{})
	v.SetDefault("broker.topics.search_events", "search-events")
	v.SetDefault("broker.topics.partitions", 3)
	v.SetDefault("broker.topics.replication_factor", 3)
	v.SetDefault("broker.tls.ca", "")
	v.SetDefault("broker.tls.cert", "")
	v.SetDefault("broker.tls.key", "")
}

// Load reads an optional .env file, the config file named by
// AGGREGATOR_CONFIG_FILE or --config, and AGGREGATOR_ prefixed env
// overrides. It exits the process on failure.
func Load() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		die(err)
	}

	cfg, err := load(getConfigFilepath(os.Args[1:]))
	if err != nil {
		die(err)
	}
	return cfg
}

func load(path string) (Config, error) {
	const op = "config.load"

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	var cfg Config
	if err := v.UnmarshalExact(&cfg); err != nil {
		return Config{}, fmt.Errorf("%s: %w", op, err)
	}

	if cfg.Vendors.HomeDepot.APIKey == "" {
		cfg.Vendors.HomeDepot.APIKey = lookupFirst(serpAPIKeyEnvNames...)
	}

	if _, err := cfg.SlogLevel(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", op, err)
	}
	return cfg, nil
}

// SlogLevel parses LogLevel ("debug", "info", "warn", "error").
func (c Config) SlogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return l, nil
}

func lookupFirst(names ...string) string {
	for _, name := range names {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v
		}
	}
	return ""
}

func getConfigFilepath(args []string) string {
	cmdLine := pflag.NewFlagSet(os.Args[0], pflag.ContinueOnError)
	cmdLine.ParseErrorsWhitelist.UnknownFlags = true
	arg := cmdLine.String("config", "", "config file")
	_ = cmdLine.Parse(args)
	env, ok := os.LookupEnv(configFileEnvName)
	if ok {
		return env
	}
	return *arg
}

func die(err error) {
	fmt.Printf("failed to load config: %v\n", err)
	os.Exit(2)
}

func (c Config) Print() {
	tamplate := `
	General:
	LogLevel=%q

	HTTP:
	Addr=%q
	RequestTimeout=%s
	CORSOrigins=%q

	Search:
	VendorTimeout=%s
	DefaultVendors=%q
	DefaultSort=%q

	Vendors:
	HomeDepot:
		APIKey=%q
		Endpoint=%q
		Country=%q
		PageSize=%d
		Timeout=%s
		Attempts=%d
	Lowes:
		APIKey=%q
	Menards:
		APIKey=%q
	Local:
		Suppliers=%q

	BrokerConfig:
	SeedBrokers=%q
	SchemaRegistryURLs=%q
	TLS=%t
	Topics:
		SearchEvents=%q
		Partitions=%d
		ReplicationFactor=%d

`
	fmt.Println("Loaded config:")
	fmt.Printf(
		strings.TrimLeft(tamplate, "\n"),
		c.LogLevel,
		c.HTTP.Addr,
		c.HTTP.RequestTimeout,
		c.HTTP.CORSOrigins,
		c.Search.VendorTimeout,
		c.Search.DefaultVendors,
		c.Search.DefaultSort,
		mask(c.Vendors.HomeDepot.APIKey),
		c.Vendors.HomeDepot.Endpoint,
		c.Vendors.HomeDepot.Country,
		c.Vendors.HomeDepot.PageSize,
		c.Vendors.HomeDepot.Timeout,
		c.Vendors.HomeDepot.Attempts,
		mask(c.Vendors.Lowes.APIKey),
		mask(c.Vendors.Menards.APIKey),
		c.Vendors.Local.Suppliers,
		c.Broker.SeedBrokers,
		c.Broker.SchemaRegistryURLs,
		c.Broker.TLS.Enabled(),
		c.Broker.Topics.SearchEvents,
		c.Broker.Topics.Partitions,
		c.Broker.Topics.ReplicationFactor,
	)
}

// mask keeps the last four characters of long secrets.
func mask(secret string) string {
	switch {
	case secret == "":
		return ""
	case len(secret) <= 8:
		return "****"
	default:
		return "****" + secret[len(secret)-4:]
	}
}
