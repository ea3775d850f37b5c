package protocol

import (
	"encoding/json"
	"math"
	"strconv"
)

const Version = "1.0"

// Command types.
const (
	TypeMove      = "MOVE"
	TypeLocate    = "LOCATE"
	TypeTake      = "TAKE"
	TypeDeposit   = "DEPOSIT"
	TypeSave      = "SAVE"
	TypeRestore   = "RESTORE"
	TypeGeoToggle = "GEO_TOGGLE"
)

// Movement directions.
const (
	DirUp    = "UP"
	DirDown  = "DOWN"
	DirLeft  = "LEFT"
	DirRight = "RIGHT"
)

// Command is a single input to the game loop. Only the fields relevant to
// Type are set.
type Command struct {
	Type string `json:"type"`

	Dir     string  `json:"dir,omitempty"`
	Lat     float64 `json:"lat,omitempty"`
	Lng     float64 `json:"lng,omitempty"`
	CacheID string  `json:"cache_id,omitempty"`
	Index   int     `json:"index,omitempty"`
}

func Move(dir string) Command         { return Command{Type: TypeMove, Dir: dir} }
func Locate(lat, lng float64) Command { return Command{Type: TypeLocate, Lat: lat, Lng: lng} }
func Take(cacheID string) Command     { return Command{Type: TypeTake, CacheID: cacheID} }
func Deposit(cacheID string) Command  { return Command{Type: TypeDeposit, CacheID: cacheID} }
func Save() Command                   { return Command{Type: TypeSave} }
func Restore(index int) Command       { return Command{Type: TypeRestore, Index: index} }
func GeoToggle() Command              { return Command{Type: TypeGeoToggle} }

// MarshalJSON writes non-finite coordinates as strings ("NaN", "+Inf",
// "-Inf") so a rejected LOCATE can still be journaled.
func (c Command) MarshalJSON() ([]byte, error) {
	type plain Command
	if finite(c.Lat) && finite(c.Lng) {
		return json.Marshal(plain(c))
	}
	return json.Marshal(struct {
		plain
		Lat json.RawMessage `json:"lat"`
		Lng json.RawMessage `json:"lng"`
	}{plain(c), encodeCoord(c.Lat), encodeCoord(c.Lng)})
}

func (c *Command) UnmarshalJSON(b []byte) error {
	type plain Command
	var w struct {
		plain
		Lat json.RawMessage `json:"lat"`
		Lng json.RawMessage `json:"lng"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	lat, err := decodeCoord(w.Lat)
	if err != nil {
		return err
	}
	lng, err := decodeCoord(w.Lng)
	if err != nil {
		return err
	}
	*c = Command(w.plain)
	c.Lat, c.Lng = lat, lng
	return nil
}

func encodeCoord(v float64) json.RawMessage {
	if finite(v) {
		return json.RawMessage(strconv.FormatFloat(v, 'g', -1, 64))
	}
	return json.RawMessage(strconv.Quote(strconv.FormatFloat(v, 'g', -1, 64)))
}

func decodeCoord(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, nil
	}
	if raw[0] == '"' {
		s, err := strconv.Unquote(string(raw))
		if err != nil {
			return 0, err
		}
		return strconv.ParseFloat(s, 64)
	}
	var v float64
	err := json.Unmarshal(raw, &v)
	return v, err
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func DecodeCommand(b []byte) (Command, error) {
	var c Command
	err := json.Unmarshal(b, &c)
	return c, err
}

func IsDirection(dir string) bool {
	switch dir {
	case DirUp, DirDown, DirLeft, DirRight:
		return true
	default:
		return false
	}
}
