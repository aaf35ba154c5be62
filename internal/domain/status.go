package domain

// FeedStatus describes the state of the market-data feed connection.
// Contract is the resolved contract code, empty while not subscribed.
type FeedStatus struct {
	Connected bool   `json:"connected"`
	Contract  string `json:"contract,omitempty"`
}
