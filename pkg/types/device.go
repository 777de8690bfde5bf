package types

// Device is a physical device or simulator known to a server. Devices are
// free-standing: integrations and device specifications link to them.
type Device struct {
	Meta

	Name                  string `json:"name"`
	Identifier            string `json:"identifier,omitempty"`
	DeviceType            string `json:"device_type,omitempty"`
	ModelName             string `json:"model_name,omitempty"`
	ModelCode             string `json:"model_code,omitempty"`
	ModelUTI              string `json:"model_uti,omitempty"`
	OSVersion             string `json:"os_version,omitempty"`
	PlatformIdentifier    string `json:"platform_identifier,omitempty"`
	Architecture          string `json:"architecture,omitempty"`
	Connected             bool   `json:"connected"`
	Simulator             bool   `json:"simulator"`
	EnabledForDevelopment bool   `json:"enabled_for_development"`
	IsServer              bool   `json:"is_server"`
	Retina                bool   `json:"retina"`
	Trusted               bool   `json:"trusted"`
	Supported             bool   `json:"supported"`
	Wireless              bool   `json:"wireless"`
}

func (*Device) Kind() Kind { return KindDevice }
