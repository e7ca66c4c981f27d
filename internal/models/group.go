package models

import (
	"github.com/go-playground/validator/v10"
)

type User struct {
	ID        int64  `db:"id" json:"id"`
	Name      string `db:"name" json:"name" validate:"required"`
	Email     string `db:"email" json:"email" validate:"required,email"`
	CreatedAt int64  `db:"created_at" json:"created_at"`
}

// GroupSeason binds a group ("workspace") to one competition season.
// Standings are scoped to this link, not to the group alone.
type GroupSeason struct {
	ID        int64  `db:"id" json:"id"`
	GroupName string `db:"group_name" json:"group_name" validate:"required"`
	Season    string `db:"season" json:"season" validate:"required"`
	Active    bool   `db:"active" json:"active"`
	CreatedAt int64  `db:"created_at" json:"created_at"`
}

type GroupMember struct {
	GroupSeasonID int64 `db:"group_season_id" json:"group_season_id"`
	UserID        int64 `db:"user_id" json:"user_id"`
	JoinedAt      int64 `db:"joined_at" json:"joined_at"`
}

func (u *User) Validate() error {
	validate := validator.New()
	return validate.Struct(u)
}

func (g *GroupSeason) Validate() error {
	validate := validator.New()
	return validate.Struct(g)
}
