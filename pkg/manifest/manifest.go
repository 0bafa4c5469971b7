package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Manifest is the plugin repository document read by the Jellyfin plugin installer.
type Manifest []*Plugin

type Plugin struct {
	GUID        string     `json:"guid"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Overview    string     `json:"overview"`
	Owner       string     `json:"owner"`
	Category    string     `json:"category"`
	ImageURL    string     `json:"imageUrl"`
	Versions    []*Version `json:"versions"`
}

type Version struct {
	Version   string `json:"version"`
	Changelog string `json:"changelog"`
	TargetABI string `json:"targetAbi"`
	SourceURL string `json:"sourceUrl"`
	Checksum  string `json:"checksum"`
	Timestamp string `json:"timestamp"`
}

var ErrEmptyManifest = errors.New("manifest contains no plugin")

// Decode reads exactly one manifest document from r and validates it.
// Keys are matched case-insensitively, as encoding/json does.
func Decode(r io.Reader) (Manifest, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var m Manifest
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("failed to decode manifest: unexpected data after the plugin list")
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	return m, nil
}

func (m Manifest) Validate() error {
	if len(m) == 0 {
		return ErrEmptyManifest
	}
	for i, p := range m {
		if p == nil {
			return fmt.Errorf("plugin %d is null", i)
		}
		if err := p.Validate(); err != nil {
			return fmt.Errorf("plugin %d: %w", i, err)
		}
	}
	return nil
}

func (p *Plugin) Validate() error {
	if p.GUID == "" {
		return errors.New("guid is missing")
	}
	if p.Name == "" {
		return errors.New("name is missing")
	}
	// an empty list is fine, a missing one is not
	if p.Versions == nil {
		return errors.New("versions are missing")
	}
	seen := make(map[string]struct{}, len(p.Versions))
	for i, v := range p.Versions {
		if v == nil || v.Version == "" {
			return fmt.Errorf("version entry %d has no version", i)
		}
		if _, ok := seen[v.Version]; ok {
			return fmt.Errorf("version %s is listed multiple times", v.Version)
		}
		seen[v.Version] = struct{}{}
	}
	return nil
}

// Latest returns the first version entry, which is the most recently published one.
func (p *Plugin) Latest() *Version {
	if len(p.Versions) == 0 {
		return nil
	}
	return p.Versions[0]
}

// Merge replaces any entry of the first plugin that has the same version
// string as v and puts v at the front of the list.
func (m Manifest) Merge(v *Version) error {
	if len(m) == 0 {
		return ErrEmptyManifest
	}
	p := m[0]
	versions := make([]*Version, 0, len(p.Versions)+1)
	versions = append(versions, v)
	for _, existing := range p.Versions {
		if existing.Version == v.Version {
			continue
		}
		versions = append(versions, existing)
	}
	p.Versions = versions
	return nil
}

func (m Manifest) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}

// Marshal returns the document as it is written to the manifest files,
// without the newline Encode terminates it with.
func (m Manifest) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	if err := m.Encode(&buf); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
