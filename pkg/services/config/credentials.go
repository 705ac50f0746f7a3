package config

import (
	"context"
	"os"

	"gopkg.in/ini.v1"
)

// Credentials are the two external API keys the pipeline depends on.
// Either may be empty here; the pipeline refuses to run without both.
type Credentials struct {
	OpenCageKey string
	MapboxToken string
}

// Registry resolves credentials for a named profile.
type Registry interface {
	GetProfiles(ctx context.Context) ([]string, error)
	GetCredentials(ctx context.Context, profile string) (Credentials, error)
}

type credRegistry struct {
	cfg *ini.File
}

// NewRegistry loads a profile-sectioned credentials file, e.g.
//
//	[default]
//	opencage_api_key = ...
//	mapbox_api_key   = ...
//
// Environment variables OPENCAGE_API_KEY and MAPBOX_API_KEY override the
// file values for every profile.
func NewRegistry(path string) (Registry, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	return &credRegistry{cfg: cfg}, nil
}

// NewEnvRegistry resolves credentials from the environment only, for
// deployments without a credentials file.
func NewEnvRegistry() Registry {
	return &credRegistry{cfg: ini.Empty()}
}

func (cr *credRegistry) GetProfiles(_ context.Context) ([]string, error) {
	var profiles []string
	for _, section := range cr.cfg.Sections() {
		if len(section.Keys()) > 0 {
			profiles = append(profiles, section.Name())
		}
	}
	return profiles, nil
}

func (cr *credRegistry) GetCredentials(_ context.Context, profile string) (Credentials, error) {
	section := cr.cfg.Section(profile)

	creds := Credentials{
		OpenCageKey: section.Key("opencage_api_key").String(),
		MapboxToken: section.Key("mapbox_api_key").String(),
	}
	if v := os.Getenv("OPENCAGE_API_KEY"); v != "" {
		creds.OpenCageKey = v
	}
	if v := os.Getenv("MAPBOX_API_KEY"); v != "" {
		creds.MapboxToken = v
	}
	return creds, nil
}
