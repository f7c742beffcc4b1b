package internal

type Subject struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Calendar identifies the external calendar an event is mirrored to and the
// credential used to reach it for the duration of one request.
type Calendar struct {
	ProviderID  string
	TimeZone    string
	AccessToken string
}

func (c Calendar) String() string {
	return c.ProviderID
}
