package models

import "github.com/google/uuid"

// Region is the competitive region a player is registered in.
type Region string

const (
	RegionEU   Region = "EU"
	RegionNA   Region = "NA"
	RegionNAC  Region = "NAC"
	RegionNAW  Region = "NAW"
	RegionBR   Region = "BR"
	RegionASIA Region = "ASIA"
	RegionOCE  Region = "OCE"
	RegionME   Region = "ME"
)

func (r Region) Valid() bool {
	switch r {
	case RegionEU, RegionNA, RegionNAC, RegionNAW, RegionBR, RegionASIA, RegionOCE, RegionME:
		return true
	default:
		return false
	}
}

type Player struct {
	ID     uuid.UUID `json:"id" db:"id"`
	Name   string    `json:"name" db:"name"`
	Region Region    `json:"region" db:"region"`
	// Locked freezes the player against trading, e.g. during a live event.
	Locked bool `json:"locked" db:"locked"`
}
