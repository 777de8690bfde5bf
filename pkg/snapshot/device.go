package snapshot

// Device is a device or simulator known to the server.
type Device struct {
	ID                    string  `json:"_id"`
	Name                  *string `json:"name,omitempty"`
	Identifier            *string `json:"identifier,omitempty"`
	DeviceType            *string `json:"deviceType,omitempty"`
	ModelName             *string `json:"modelName,omitempty"`
	ModelCode             *string `json:"modelCode,omitempty"`
	ModelUTI              *string `json:"modelUTI,omitempty"`
	OSVersion             *string `json:"osVersion,omitempty"`
	PlatformIdentifier    *string `json:"platformIdentifier,omitempty"`
	Architecture          *string `json:"architecture,omitempty"`
	Connected             *bool   `json:"connected,omitempty"`
	Simulator             *bool   `json:"simulator,omitempty"`
	EnabledForDevelopment *bool   `json:"enabledForDevelopment,omitempty"`
	IsServer              *bool   `json:"isServer,omitempty"`
	Retina                *bool   `json:"retina,omitempty"`
	Trusted               *bool   `json:"trusted,omitempty"`
	Supported             *bool   `json:"supported,omitempty"`
	Wireless              *bool   `json:"wireless,omitempty"`
}
