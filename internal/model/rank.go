package model

import (
	"database/sql/driver"
	"fmt"
)

// Rank is a principal's privilege level inside its store. Ranks are totally ordered.
type Rank int8

const (
	RankCustomer Rank = iota + 1
	RankVip
	RankAdministrator
)

var rankNames = map[Rank]string{
	RankCustomer:      "customer",
	RankVip:           "vip",
	RankAdministrator: "administrator",
}

// ParseRank converts the wire name of a rank
func ParseRank(s string) (Rank, error) {
	for r, name := range rankNames {
		if name == s {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown rank %q", s)
}

// Valid reports whether r is one of the defined ranks
func (r Rank) Valid() bool {
	_, ok := rankNames[r]
	return ok
}

// AtLeast reports whether r satisfies the minimum rank
func (r Rank) AtLeast(minimum Rank) bool {
	return r.Valid() && r >= minimum
}

func (r Rank) String() string {
	if name, ok := rankNames[r]; ok {
		return name
	}
	return fmt.Sprintf("rank(%d)", int8(r))
}

// MarshalText encodes the rank by name
func (r Rank) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid rank %d", int8(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText decodes a rank name
func (r *Rank) UnmarshalText(text []byte) error {
	parsed, err := ParseRank(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Value stores the rank as its ordinal so ordering survives in SQL
func (r Rank) Value() (driver.Value, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid rank %d", int8(r))
	}
	return int64(r), nil
}

// Scan implements sql.Scanner
func (r *Rank) Scan(src interface{}) error {
	v, ok := src.(int64)
	if !ok {
		return fmt.Errorf("cannot scan %T into Rank", src)
	}
	*r = Rank(v)
	if !r.Valid() {
		return fmt.Errorf("invalid rank %d", v)
	}
	return nil
}
