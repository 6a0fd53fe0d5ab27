package db

import _ "embed"

//go:embed schema.sql
var Schema string

// well-known slot keys
const (
	SlotFavorites = "favorites"
	SlotSession   = "session"
)
