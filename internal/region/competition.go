package region

import (
	"strings"
	"vct-status/internal/domain"
)

type CompetitionSeed struct {
	Name        string
	Tag         string
	Description string
	// uppercase fragment looked for in event names, empty for types never inferred
	Keyword  string
	Priority int
}

// CompetitionSeeds are the reference competition types. Like regions, inference walks them by
// priority: "Champions Tour 2024: Masters Shanghai" must be Masters, not Champions.
var CompetitionSeeds = []CompetitionSeed{
	{Name: "Game Changers", Tag: "game_changers", Description: "VCT Game Changers circuit events", Keyword: "GAME CHANGERS", Priority: 10},
	{Name: "Qualifier", Tag: "qualifier", Description: "Qualifying stages for larger events", Keyword: "QUALIFIER", Priority: 20},
	{Name: "Challengers League", Tag: "challengers", Description: "Regional tier-two Challengers leagues", Keyword: "CHALLENGERS", Priority: 30},
	{Name: "Masters", Tag: "masters", Description: "International Masters tournaments", Keyword: "MASTERS", Priority: 40},
	{Name: "International League", Tag: "intl_league", Description: "Partnered international leagues (Americas, EMEA, Pacific, China)", Keyword: "LEAGUE", Priority: 50},
	{Name: "Champions", Tag: "champions", Description: "The yearly world championship", Keyword: "CHAMPIONS", Priority: 60},
	{Name: "Other", Tag: "other", Description: "Third-party and miscellaneous events"},
	{Name: "TBD", Tag: "tbd", Description: "Competition type not yet determined"},
}

type CompetitionRule struct {
	Keyword string
	TypeID  int64
}

type CompetitionRules []CompetitionRule

// CompetitionRulesFromTypes pairs stored competition types with the keyword of their seed.
// Types without a keyword are left out.
func CompetitionRulesFromTypes(types []domain.CompetitionType) CompetitionRules {
	byTag := make(map[string]int64, len(types))
	for _, t := range types {
		byTag[t.Tag] = t.ID
	}

	var rules CompetitionRules
	for _, seed := range CompetitionSeeds {
		id, ok := byTag[seed.Tag]
		if !ok || seed.Keyword == "" {
			continue
		}
		rules = append(rules, CompetitionRule{Keyword: seed.Keyword, TypeID: id})
	}
	return rules
}

func (rules CompetitionRules) Infer(eventName *string) *int64 {
	if eventName == nil {
		return nil
	}
	name := strings.ToUpper(*eventName)
	for _, rule := range rules {
		if strings.Contains(name, rule.Keyword) {
			id := rule.TypeID
			return &id
		}
	}
	return nil
}

// Inferrer resolves both reference ids for an event name.
type Inferrer struct {
	Regions      Rules
	Competitions CompetitionRules
}

// Infer looks for the competition type in the whole name but for the region only in the event
// label before the series part, since series labels like "Grand Final" contain "NA".
func (i Inferrer) Infer(eventName *string) domain.Inferred {
	return domain.Inferred{
		RegionID:          i.Regions.Infer(primaryEvent(eventName)),
		CompetitionTypeID: i.Competitions.Infer(eventName),
	}
}

func primaryEvent(eventName *string) *string {
	if eventName == nil {
		return nil
	}
	primary, _, _ := strings.Cut(*eventName, domain.EventSeriesSeparator)
	return &primary
}
