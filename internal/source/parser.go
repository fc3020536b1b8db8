package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/theirongolddev/subtrackr/internal/model"
)

const dateLayout = "2006-01-02"

// importNamespace seeds deterministic IDs for records that omit one, so
// re-importing a file updates rows instead of duplicating them.
var importNamespace = uuid.MustParse("6f1d8a52-3b0e-4c55-9a8e-2f3c1b7d9e40")

// ParseResult holds the output of parsing a single import file.
type ParseResult struct {
	Path          string
	Subscriptions []model.Subscription
	ParseErrors   []string // per-record conversion problems; the record is dropped
	Err           error    // the file could not be read or decoded at all
}

// ParseFile reads and decodes an import file.
func ParseFile(df DiscoveredFile, now time.Time) ParseResult {
	data, err := os.ReadFile(df.Path)
	if err != nil {
		return ParseResult{Path: df.Path, Err: err}
	}
	res := Parse(data, df.Format, now)
	res.Path = df.Path
	return res
}

// Parse decodes an import document of the given format.
func Parse(data []byte, format Format, now time.Time) ParseResult {
	var doc RawDocument
	if err := decode(data, format, &doc); err != nil {
		return ParseResult{Err: fmt.Errorf("decoding %s: %w", format, err)}
	}

	var res ParseResult
	for i, raw := range doc.Subscriptions {
		sub, err := raw.toModel(now)
		if err != nil {
			res.ParseErrors = append(res.ParseErrors, fmt.Sprintf("entry %d (%s): %v", i, raw.Name, err))
			continue
		}
		res.Subscriptions = append(res.Subscriptions, sub)
	}
	return res
}

func decode(data []byte, format Format, doc *RawDocument) error {
	switch format {
	case FormatJSON:
		trimmed := bytes.TrimSpace(data)
		if len(trimmed) > 0 && trimmed[0] == '[' {
			return json.Unmarshal(trimmed, &doc.Subscriptions)
		}
		return json.Unmarshal(trimmed, doc)
	case FormatYAML:
		return yaml.Unmarshal(data, doc)
	case FormatTOML:
		_, err := toml.Decode(string(data), doc)
		return err
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

func (r RawSubscription) toModel(now time.Time) (model.Subscription, error) {
	next, err := time.Parse(dateLayout, strings.TrimSpace(r.NextBilling))
	if err != nil {
		return model.Subscription{}, fmt.Errorf("next_billing %q: want YYYY-MM-DD", r.NextBilling)
	}

	status := model.StatusActive
	if r.Status != "" {
		status, err = model.ParseStatus(strings.ToLower(strings.TrimSpace(r.Status)))
		if err != nil {
			return model.Subscription{}, err
		}
	}

	id := strings.TrimSpace(r.ID)
	if id == "" {
		key := strings.ToLower(strings.TrimSpace(r.Name)) + "|" + strings.ToLower(strings.TrimSpace(r.Category))
		id = uuid.NewSHA1(importNamespace, []byte(key)).String()
	}

	return model.Subscription{
		ID:              id,
		Name:            strings.TrimSpace(r.Name),
		Amount:          r.Amount.Round(2),
		Category:        strings.TrimSpace(r.Category),
		NextBillingDate: next,
		Status:          status,
		PaymentMethod:   r.PaymentMethod,
		Logo:            r.Logo,
		CreatedAt:       now,
	}, nil
}
