package config

import (
	"context"
	"fmt"

	"github.com/de-tools/traffic-atlas/pkg/models/domain"
	"gopkg.in/ini.v1"
)

// Profile is one named credential set of the CLI profile file.
type Profile struct {
	Name        string
	Credentials domain.Credentials
	// Strategy optionally pins the metric strategy for this profile.
	Strategy string
}

type Registry interface {
	GetProfiles(ctx context.Context) ([]string, error)
	GetProfile(ctx context.Context, name string) (*Profile, error)
}

type cfgRegistry struct {
	cfg *ini.File
}

// NewRegistry loads an ini profile file such as:
//
//	[default]
//	api_token  = ...
//	account_id = ...
//	strategy   = graphql
func NewRegistry(path string) (Registry, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load profiles from %s: %w", path, err)
	}
	return &cfgRegistry{cfg: cfg}, nil
}

func (cr *cfgRegistry) GetProfiles(_ context.Context) ([]string, error) {
	var profiles []string
	for _, section := range cr.cfg.Sections() {
		if len(section.Keys()) > 0 {
			profiles = append(profiles, section.Name())
		}
	}
	return profiles, nil
}

func (cr *cfgRegistry) GetProfile(_ context.Context, name string) (*Profile, error) {
	section, err := cr.cfg.GetSection(name)
	if err != nil || len(section.Keys()) == 0 {
		return nil, fmt.Errorf("profile %s not found", name)
	}

	return &Profile{
		Name: name,
		Credentials: domain.Credentials{
			APIToken:  section.Key("api_token").String(),
			AccountID: section.Key("account_id").String(),
		},
		Strategy: section.Key("strategy").String(),
	}, nil
}
