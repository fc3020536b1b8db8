package source

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Format identifies the encoding of an import file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// RawDocument is the top level of an import file in any format.
type RawDocument struct {
	Subscriptions []RawSubscription `json:"subscriptions" yaml:"subscriptions" toml:"subscriptions"`
}

// RawSubscription is one subscription as written in an import file.
type RawSubscription struct {
	ID            string `json:"id,omitempty" yaml:"id,omitempty" toml:"id,omitempty"`
	Name          string `json:"name" yaml:"name" toml:"name"`
	Amount        Amount `json:"amount" yaml:"amount" toml:"amount"`
	Category      string `json:"category" yaml:"category" toml:"category"`
	NextBilling   string `json:"next_billing" yaml:"next_billing" toml:"next_billing"`
	Status        string `json:"status,omitempty" yaml:"status,omitempty" toml:"status,omitempty"`
	PaymentMethod string `json:"payment_method,omitempty" yaml:"payment_method,omitempty" toml:"payment_method,omitempty"`
	Logo          string `json:"logo,omitempty" yaml:"logo,omitempty" toml:"logo,omitempty"`
}

// Amount accepts either a number or a decimal string ("15.99") in every
// supported format.
type Amount struct {
	decimal.Decimal
}

func (a *Amount) set(s string) error {
	d, err := decimal.NewFromString(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$")))
	if err != nil {
		return fmt.Errorf("amount %q: %w", s, err)
	}
	a.Decimal = d
	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		return a.set(s)
	}
	return a.set(string(b))
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (a *Amount) UnmarshalYAML(node *yaml.Node) error {
	return a.set(node.Value)
}

// UnmarshalTOML implements toml.Unmarshaler.
func (a *Amount) UnmarshalTOML(v any) error {
	switch x := v.(type) {
	case string:
		return a.set(x)
	case int64:
		a.Decimal = decimal.NewFromInt(x)
		return nil
	case float64:
		a.Decimal = decimal.NewFromFloat(x)
		return nil
	default:
		return fmt.Errorf("amount: unsupported type %T", v)
	}
}

// DiscoveredFile represents an import file found during directory scanning.
type DiscoveredFile struct {
	Path   string
	Format Format
}
