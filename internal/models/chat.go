package models

import "time"

// ChatGroupMapping binds a Telegram chat to a group-season so bot commands
// can omit the group id.
type ChatGroupMapping struct {
	GroupSeasonID   int64     `json:"group_season_id"`
	Name            string    `json:"name"`
	Comment         string    `json:"comment"`
	AssociationTime time.Time `json:"association_time"`
	RegisteredBy    int64     `json:"registered_by"`
}
