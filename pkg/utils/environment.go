package utils

import "strings"

type Environment string

const (
	PRODUCTION  Environment = "production"
	DEVELOPMENT Environment = "development"
)

func (e Environment) Get() string {
	return string(e)
}

func (e Environment) IsProduction() bool {
	return e == PRODUCTION
}

// FromEnvironmentStr defaults to DEVELOPMENT for anything unrecognised.
func FromEnvironmentStr(s string) Environment {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "production":
		return PRODUCTION
	default:
		return DEVELOPMENT
	}
}
