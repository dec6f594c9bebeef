package domain

// Zone is a Cloudflare zone as returned by the listing call.
type Zone struct {
	ID     string
	Name   string
	Status string
}

// Credentials carry the backend token and, for account-scoped listing, the account id.
type Credentials struct {
	APIToken  string
	AccountID string
}

func (c Credentials) HasToken() bool {
	return c.APIToken != ""
}
