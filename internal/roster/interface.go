package roster

// Store defines the interface for reading and updating the player roster.
type Store interface {
	GetPlayer(id string) (*Player, error)
	GetPlayers(ids []string) ([]Player, error)
	AllPlayers() ([]Player, error)
	UpsertPlayers(players []Player) error
	UpdatePlayer(id string, update PlayerUpdate) error
	IsKnownPlayer(id string) bool
	Clear()
}
