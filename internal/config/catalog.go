package config

import (
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

// ServiceInfo holds the defaults used when adding a well-known service.
type ServiceInfo struct {
	Name     string
	Category string
	Logo     string
	Monthly  decimal.Decimal
}

type servicePriceVersion struct {
	EffectiveFrom time.Time
	Monthly       decimal.Decimal
}

type catalogEntry struct {
	name, category, logo string
	prices               []servicePriceVersion // sorted by EffectiveFrom ascending
}

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func since(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

// catalog maps normalized service keys to their defaults.
var catalog = map[string]catalogEntry{
	"netflix": {"Netflix", "Streaming", "🎬", []servicePriceVersion{
		{Monthly: price("15.49")},
		{EffectiveFrom: since("2024-01-01"), Monthly: price("15.99")},
	}},
	"spotify": {"Spotify Premium", "Music", "🎵", []servicePriceVersion{
		{Monthly: price("10.99")},
		{EffectiveFrom: since("2024-07-01"), Monthly: price("11.99")},
	}},
	"adobe":   {"Adobe Creative Cloud", "Software", "🎨", []servicePriceVersion{{Monthly: price("52.99")}}},
	"dropbox": {"Dropbox Pro", "Storage", "☁️", []servicePriceVersion{{Monthly: price("11.99")}}},
	"youtube": {"YouTube Premium", "Streaming", "📺", []servicePriceVersion{
		{Monthly: price("11.99")},
		{EffectiveFrom: since("2025-03-01"), Monthly: price("13.99")},
	}},
	"hulu":    {"Hulu", "Streaming", "📼", []servicePriceVersion{{Monthly: price("17.99")}}},
	"disney":  {"Disney+", "Streaming", "🏰", []servicePriceVersion{{Monthly: price("13.99")}}},
	"audible": {"Audible", "Books", "🎧", []servicePriceVersion{{Monthly: price("14.95")}}},
	"icloud":  {"iCloud+", "Storage", "☁️", []servicePriceVersion{{Monthly: price("2.99")}}},
	"github":  {"GitHub Pro", "Software", "🐙", []servicePriceVersion{{Monthly: price("4.00")}}},
	"gym":     {"Gym Membership", "Fitness", "💪", []servicePriceVersion{{Monthly: price("29.99")}}},
}

// NormalizeServiceName lowercases a service name and drops everything but
// letters and digits: "YouTube Premium!" -> "youtubepremium".
func NormalizeServiceName(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(raw) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// LookupService returns the current defaults for a service name.
func LookupService(name string) (ServiceInfo, bool) {
	return LookupServiceAt(name, time.Now())
}

// LookupServiceAt returns the defaults for a service at the given time.
// The longest catalog key that prefixes the normalized name wins, so
// "Spotify Family" still resolves to spotify. If at is zero, the latest
// price is used.
func LookupServiceAt(name string, at time.Time) (ServiceInfo, bool) {
	norm := NormalizeServiceName(name)
	if norm == "" {
		return ServiceInfo{}, false
	}

	best := ""
	for key := range catalog {
		if strings.HasPrefix(norm, key) && len(key) > len(best) {
			best = key
		}
	}
	if best == "" {
		return ServiceInfo{}, false
	}

	e := catalog[best]
	return ServiceInfo{
		Name:     e.name,
		Category: e.category,
		Logo:     e.logo,
		Monthly:  priceAt(e.prices, at),
	}, true
}

func priceAt(versions []servicePriceVersion, at time.Time) decimal.Decimal {
	if len(versions) == 0 {
		return decimal.Zero
	}
	if at.IsZero() {
		return versions[len(versions)-1].Monthly
	}
	selected := versions[0].Monthly
	for _, v := range versions {
		if v.EffectiveFrom.IsZero() || !at.Before(v.EffectiveFrom) {
			selected = v.Monthly
			continue
		}
		break
	}
	return selected
}

// KnownServices lists catalog display names alphabetically.
func KnownServices() []string {
	names := make([]string, 0, len(catalog))
	for _, e := range catalog {
		names = append(names, e.name)
	}
	sort.Strings(names)
	return names
}
