package snapshot

// Versions is the response of the server's versions endpoint.
type Versions struct {
	ServerVersion      *string `json:"serverVersion,omitempty"`
	XcodeVersion       *string `json:"xcodeVersion,omitempty"`
	XcodeServerVersion *string `json:"xcodeServerVersion,omitempty"`
	OSVersion          *string `json:"os,omitempty"`
}
