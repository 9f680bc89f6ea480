// Package config loads the network configuration: RPC endpoints, chain IDs,
// address books and deployed contract addresses, keyed by network name.
//
// Example gelato.yaml:
//
//	default_network: kovan
//	networks:
//	  kovan:
//	    url: https://kovan.infura.io/v3/${INFURA_ID}
//	    chain_id: 42
//	    address_book:
//	      erc20:
//	        DAI: "0xC4375B7De8af5a38a93548eb8453a498222C4fF2"
//	    contracts: [GelatoCore, GelatoUserProxyFactory]
//	    deployments:
//	      GelatoCore: "0x40134bf777a126B0E6208e8BdD6C567F2Ce648d2"
//
// ${VAR} references are expanded before parsing, from the process environment
// first and then from a .env file next to the config file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultFileName is looked up in the working directory when no path is given.
const DefaultFileName = "gelato.yaml"

var (
	// ErrUnknownNetwork is returned when a network name is not configured.
	ErrUnknownNetwork = errors.New("unknown network")

	// ErrUnresolved is returned when an address reference has no entry.
	ErrUnresolved = errors.New("unresolved address reference")
)

// Reference prefixes understood by Network.Resolve.
const (
	AddressBookPrefix = "addressbook:"
	DeploymentPrefix  = "deployment:"
)

// Config is the parsed configuration file.
type Config struct {
	DefaultNetwork string              `yaml:"default_network" validate:"required"`
	Networks       map[string]*Network `yaml:"networks" validate:"required,min=1,dive,required"`

	// Path is the file the config was loaded from.
	Path string `yaml:"-"`
}

// Network describes one chain the CLI can target.
type Network struct {
	Name        string                       `yaml:"-"`
	URL         string                       `yaml:"url" validate:"required,url"`
	ChainID     uint64                       `yaml:"chain_id" validate:"gt=0"`
	AddressBook map[string]map[string]string `yaml:"address_book" validate:"dive,dive,eth_addr"`
	Contracts   []string                     `yaml:"contracts" validate:"dive,required"`
	Deployments map[string]string            `yaml:"deployments" validate:"dive,eth_addr"`
}

// Load reads, expands and validates the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	env, err := readDotEnv(filepath.Dir(path))
	if err != nil {
		return nil, err
	}

	cfg, err := Parse(data, env)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

// Parse decodes config bytes. env supplies values for ${VAR} references not
// set in the process environment; it may be nil.
func Parse(data []byte, env map[string]string) (*Config, error) {
	expanded := os.Expand(string(data), func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return env[key]
	})

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	for name, n := range cfg.Networks {
		if n != nil {
			n.Name = name
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field formats and cross references.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return formatValidationErrors(err)
	}
	if _, ok := c.Networks[c.DefaultNetwork]; !ok {
		return fmt.Errorf("default_network %q: %w", c.DefaultNetwork, ErrUnknownNetwork)
	}
	return nil
}

// Network returns the named network, or the default network when name is empty.
func (c *Config) Network(name string) (*Network, error) {
	if name == "" {
		name = c.DefaultNetwork
	}
	n, ok := c.Networks[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w (configured: %s)", name, ErrUnknownNetwork,
			strings.Join(c.NetworkNames(), ", "))
	}
	return n, nil
}

// NetworkNames returns the configured network names in sorted order.
func (c *Config) NetworkNames() []string {
	names := make([]string, 0, len(c.Networks))
	for name := range c.Networks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve turns an address reference into an address.
//
//	addressbook:<category>.<entry>  looks up the address book
//	deployment:<Contract>           looks up the deployments map
//
// Anything else is returned unchanged. A nil Network passes plain addresses
// through and fails on references.
func (n *Network) Resolve(ref string) (string, error) {
	if n == nil {
		if IsReference(ref) {
			return "", fmt.Errorf("%q: no network configured: %w", ref, ErrUnresolved)
		}
		return ref, nil
	}

	switch {
	case strings.HasPrefix(ref, AddressBookPrefix):
		key := strings.TrimPrefix(ref, AddressBookPrefix)
		category, entry, ok := strings.Cut(key, ".")
		if !ok || category == "" || entry == "" {
			return "", fmt.Errorf("%q: address book references take the form %scategory.entry",
				ref, AddressBookPrefix)
		}
		if addr, ok := n.AddressBook[category][entry]; ok {
			return addr, nil
		}
		return "", fmt.Errorf("%q on network %s: %w", ref, n.Name, ErrUnresolved)

	case strings.HasPrefix(ref, DeploymentPrefix):
		name := strings.TrimPrefix(ref, DeploymentPrefix)
		if addr, ok := n.Deployments[name]; ok {
			return addr, nil
		}
		return "", fmt.Errorf("%q on network %s: %w", ref, n.Name, ErrUnresolved)
	}
	return ref, nil
}

// IsReference reports whether s uses one of the reference prefixes.
func IsReference(s string) bool {
	return strings.HasPrefix(s, AddressBookPrefix) || strings.HasPrefix(s, DeploymentPrefix)
}

// NameOf returns a human-readable name for addr: the deployed contract name,
// or "category.entry" from the address book. Comparison ignores case.
func (n *Network) NameOf(addr string) (string, bool) {
	for _, name := range sortedKeys(n.Deployments) {
		if strings.EqualFold(n.Deployments[name], addr) {
			return name, true
		}
	}
	categories := make([]string, 0, len(n.AddressBook))
	for category := range n.AddressBook {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	for _, category := range categories {
		entries := n.AddressBook[category]
		for _, entry := range sortedKeys(entries) {
			if strings.EqualFold(entries[entry], addr) {
				return category + "." + entry, true
			}
		}
	}
	return "", false
}

func readDotEnv(dir string) (map[string]string, error) {
	env, err := godotenv.Read(filepath.Join(dir, ".env"))
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}
	return env, nil
}

func formatValidationErrors(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q check (value %v)",
			strings.TrimPrefix(fe.Namespace(), "Config."), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
