package wire

// Register is the first frame a connecting client sends to a host endpoint.
type Register struct {
	ID         string `json:"id"`
	ClientName string `json:"client_name,omitempty"`
	ClientKey  string `json:"client_key,omitempty"`
}

// Ack is the host's answer to Register. It pins down the identity the
// bridge captures once at startup.
type Ack struct {
	ID       string `json:"id"`
	Kind     string `json:"kind,omitempty"`
	Platform string `json:"platform,omitempty"`
}
