package api

type Error struct {
	Error string `json:"error"`
}

type Health struct {
	Status string `json:"status"`
}
