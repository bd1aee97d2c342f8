// Package region guesses which region an event belongs to from its name.
//
// Matching is a case-insensitive substring test, so abbreviations can overlap ("NA" occurs in
// "CHINA", "INTERNATIONAL" and "FINAL"). Overlaps are settled purely by rule order: the first
// rule whose abbreviation occurs in the event name wins. Inferrer only hands the event label,
// not the series part, to the region rules.
package region

import (
	"strings"
	"vct-status/internal/domain"
)

type Rule struct {
	Abbreviation string
	RegionID     int64
}

// Rules is an ordered rule list. Order is significant.
type Rules []Rule

// Seed describes one reference region and its inference priority (lower is tried first).
type Seed struct {
	Name         string
	Tag          string
	Abbreviation string
	Priority     int
}

// Seeds lists the reference regions in inference order. Longer and more specific
// abbreviations come first and the short "NA" is tried last.
var Seeds = []Seed{
	{Name: "International", Tag: "intl", Abbreviation: "INTL", Priority: 10},
	{Name: "EMEA", Tag: "emea", Abbreviation: "EMEA", Priority: 20},
	{Name: "LATAM", Tag: "latam", Abbreviation: "LATAM", Priority: 30},
	{Name: "Pacific", Tag: "pac", Abbreviation: "PAC", Priority: 40},
	{Name: "Oceania", Tag: "oce", Abbreviation: "OCE", Priority: 50},
	{Name: "China", Tag: "cn", Abbreviation: "CN", Priority: 60},
	{Name: "Korea", Tag: "kr", Abbreviation: "KR", Priority: 70},
	{Name: "Brazil", Tag: "br", Abbreviation: "BR", Priority: 80},
	{Name: "Japan", Tag: "jp", Abbreviation: "JP", Priority: 90},
	{Name: "TBD", Tag: "tbd", Abbreviation: "TBD", Priority: 100},
	{Name: "North America", Tag: "na", Abbreviation: "NA", Priority: 110},
}

// FromRegions builds rules from stored regions, which must already be sorted by priority.
func FromRegions(regions []domain.Region) Rules {
	rules := make(Rules, 0, len(regions))
	for _, r := range regions {
		if r.Abbreviation == "" {
			continue
		}
		rules = append(rules, Rule{Abbreviation: strings.ToUpper(r.Abbreviation), RegionID: r.ID})
	}
	return rules
}

// Infer returns the region of the first rule matching eventName, or nil.
func (rules Rules) Infer(eventName *string) *int64 {
	if eventName == nil {
		return nil
	}
	name := strings.ToUpper(strings.TrimSpace(*eventName))
	if name == "" {
		return nil
	}

	for _, rule := range rules {
		if strings.Contains(name, strings.ToUpper(rule.Abbreviation)) {
			id := rule.RegionID
			return &id
		}
	}
	return nil
}
