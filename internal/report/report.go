// Package report decodes the third-party match report document used for map images: a flat
// roster under data.all and a per-map breakdown under data.list.
package report

import (
	"io"
	"os"
	"vct-status/internal/normalize"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
)

var ErrInvalidReport = crerr.New("invalid match report")

type Document struct {
	Data *Data `json:"data"`
}

type Data struct {
	All  []Player `json:"all"`
	List []Map    `json:"list"`
}

type PlayerInfo struct {
	Icon            string `json:"icon"`
	NationalityIcon string `json:"nationality_icon"`
	RealName        string `json:"real_name"`
}

type CareerInfo struct {
	IDName   string `json:"id_name"`
	Position string `json:"position"`
}

// Player is one roster entry. Stat values arrive as numbers or strings and are read through
// the accessors.
type Player struct {
	PlayerInfo PlayerInfo `json:"player_info"`
	CareerInfo CareerInfo `json:"career_info"`
	IsMain     bool       `json:"is_main"`

	ACSRaw     any `json:"acs"`
	RatingRaw  any `json:"rating"`
	ADRRaw     any `json:"adr"`
	KillsRaw   any `json:"kills"`
	DeathsRaw  any `json:"deaths"`
	AssistsRaw any `json:"assists"`
	KASTRaw    any `json:"kast"`
}

func (p Player) Name() string {
	if p.CareerInfo.IDName != "" {
		return p.CareerInfo.IDName
	}
	return p.PlayerInfo.RealName
}

func (p Player) ACS() *float64    { return normalize.Float(p.ACSRaw, nil) }
func (p Player) Rating() *float64 { return normalize.Float(p.RatingRaw, nil) }
func (p Player) ADR() *float64    { return normalize.Float(p.ADRRaw, nil) }
func (p Player) Kills() *int      { return normalize.Int(p.KillsRaw, nil) }
func (p Player) Deaths() *int     { return normalize.Int(p.DeathsRaw, nil) }
func (p Player) Assists() *int    { return normalize.Int(p.AssistsRaw, nil) }
func (p Player) KAST() *float64   { return normalize.Float(p.KASTRaw, nil) }

type MapInfo struct {
	Name   string `json:"name"`
	NameZh string `json:"name_zh"`
}

type Team struct {
	TeamNameShort string `json:"team_name_short"`
	TeamName      string `json:"team_name"`
	TeamIcon      string `json:"team_icon"`
}

func (t Team) Label() string {
	if t.TeamNameShort != "" {
		return t.TeamNameShort
	}
	return t.TeamName
}

type Score struct {
	Total any `json:"total"`
}

func (s Score) Value() *int {
	return normalize.Int(s.Total, nil)
}

type Map struct {
	Map        MapInfo  `json:"map"`
	MainTeam   Team     `json:"main_team"`
	GuestTeam  Team     `json:"guest_team"`
	MainScore  Score    `json:"main_score"`
	GuestScore Score    `json:"guest_score"`
	IsDrop     bool     `json:"is_drop"`
	PlayerInfo []Player `json:"player_info"`
}

func (m Map) Name() string {
	if m.Map.Name != "" {
		return m.Map.Name
	}
	return m.Map.NameZh
}

// Sides splits the map roster into the guest side and the main side.
func (m Map) Sides() (guest, main []Player) {
	for _, p := range m.PlayerInfo {
		if p.IsMain {
			main = append(main, p)
		} else {
			guest = append(guest, p)
		}
	}
	return guest, main
}

// Played returns the indexes of maps that were not dropped.
func (d *Data) Played() []int {
	var idx []int
	for i, m := range d.List {
		if !m.IsDrop {
			idx = append(idx, i)
		}
	}
	return idx
}

func Decode(r io.Reader) (*Data, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, crerr.Wrap(err, "failed to read match report")
	}
	return Parse(raw)
}

func Parse(raw []byte) (*Data, error) {
	// data.all and data.list must both be present, even if empty
	var shape struct {
		Data map[string]any `json:"data"`
	}
	if err := sonic.Unmarshal(raw, &shape); err != nil {
		return nil, crerr.Mark(crerr.Wrap(err, "failed to decode match report"), ErrInvalidReport)
	}
	if shape.Data == nil {
		return nil, crerr.Wrap(ErrInvalidReport, "missing data")
	}
	for _, key := range []string{"all", "list"} {
		if _, ok := shape.Data[key]; !ok {
			return nil, crerr.Wrapf(ErrInvalidReport, "missing data.%s", key)
		}
	}

	var doc Document
	if err := sonic.Unmarshal(raw, &doc); err != nil {
		return nil, crerr.Mark(crerr.Wrap(err, "failed to decode match report"), ErrInvalidReport)
	}
	return doc.Data, nil
}

func Load(path string) (*Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, crerr.Wrapf(err, "failed to open match report %s", path)
	}
	defer f.Close()
	return Decode(f)
}
