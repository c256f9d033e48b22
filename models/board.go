package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Coordinate is a single cell on the 10x10 grid.
type Coordinate struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Ship is an ordered list of occupied cells. Placement legality is the
// client's problem — the server only counts and matches cells.
type Ship struct {
	Positions []Coordinate `json:"positions"`
}

// ShipList is a player's full layout, stored as one jsonb column.
type ShipList []Ship

// TotalCells sums occupied cells across all ships (victory threshold).
func (l ShipList) TotalCells() int {
	total := 0
	for _, ship := range l {
		total += len(ship.Positions)
	}
	return total
}

// Contains reports whether any ship occupies the given cell.
func (l ShipList) Contains(row, col int) bool {
	for _, ship := range l {
		for _, pos := range ship.Positions {
			if pos.Row == row && pos.Col == col {
				return true
			}
		}
	}
	return false
}

func (l ShipList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

func (l *ShipList) Scan(value any) error {
	if value == nil {
		*l = nil
		return nil
	}
	data, err := coerceBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, l)
}

// AttackRecord is one resolved shot, as persisted.
type AttackRecord struct {
	Row   int  `json:"row"`
	Col   int  `json:"col"`
	IsHit bool `json:"isHit"`
}

// AttackLog is a player's resolved shots in resolution order, stored as one
// jsonb column.
type AttackLog []AttackRecord

// Find returns the record for a cell, if that cell was ever resolved.
func (a AttackLog) Find(row, col int) (AttackRecord, bool) {
	for _, rec := range a {
		if rec.Row == row && rec.Col == col {
			return rec, true
		}
	}
	return AttackRecord{}, false
}

func (a AttackLog) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	return json.Marshal(a)
}

func (a *AttackLog) Scan(value any) error {
	if value == nil {
		*a = nil
		return nil
	}
	data, err := coerceBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, a)
}

func coerceBytes(value any) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported jsonb source type %T", value)
	}
}
