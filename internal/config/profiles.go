package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
)

// Profiles holds all named profiles and tracks which one is active.
type Profiles struct {
	Active   string             `toml:"active"`
	Profiles map[string]Profile `toml:"profiles"`
}

// Profile is a named backend target.
type Profile struct {
	APIURL  string `toml:"api_url"`
	NATSURL string `toml:"nats_url,omitempty"`
}

// LoadProfiles reads the profiles file. A missing file yields an empty set.
func LoadProfiles(path string) (*Profiles, error) {
	p := &Profiles{}
	if _, err := toml.DecodeFile(path, p); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading profiles %s: %w", path, err)
		}
	}
	if p.Profiles == nil {
		p.Profiles = map[string]Profile{}
	}
	return p, nil
}

// SaveProfiles writes the profiles file with owner-only permissions.
func SaveProfiles(path string, p *Profiles) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(p); err != nil {
		f.Close()
		return fmt.Errorf("encoding profiles: %w", err)
	}
	return f.Close()
}

// Names returns the profile names in sorted order.
func (p *Profiles) Names() []string {
	names := make([]string, 0, len(p.Profiles))
	for name := range p.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Use makes name the active profile.
func (p *Profiles) Use(name string) error {
	if _, ok := p.Profiles[name]; !ok {
		return fmt.Errorf("unknown profile %q", name)
	}
	p.Active = name
	return nil
}
