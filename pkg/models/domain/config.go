package domain

import "fmt"

type ProfileType string

const (
	ProfileTypeToken ProfileType = "token"
	ProfileTypeApp   ProfileType = "app"
)

type ConfigProfile struct {
	Name string
	Type ProfileType
}

func (c ConfigProfile) String() string {
	return fmt.Sprintf("%s:%s", c.Type, c.Name)
}

// SourceConfig holds the credentials and scope for one GitHub profile.
type SourceConfig struct {
	Token          string
	Organization   string
	BaseURL        string
	AppID          int64
	InstallationID int64
	PrivateKeyPath string
}

func (c SourceConfig) Type() ProfileType {
	if c.AppID != 0 {
		return ProfileTypeApp
	}
	return ProfileTypeToken
}
