package seed

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Preset is a named seeding recipe read from YAML:
//
//	name: demo
//	users: 30
//	posts: 200
//	comments_per_post: 2
//	follows_per_user: 5
//	grouped_share: 0.5
//	max_days: 60
//	groups:
//	  - title: Travel
//	    description: Trips and places.
type Preset struct {
	Name            string         `yaml:"name"`
	Users           int            `yaml:"users"`
	Posts           int            `yaml:"posts"`
	CommentsPerPost int            `yaml:"comments_per_post"`
	FollowsPerUser  int            `yaml:"follows_per_user"`
	GroupedShare    *float64       `yaml:"grouped_share"`
	MaxDays         int            `yaml:"max_days"`
	Groups          []BuiltInGroup `yaml:"groups"`
}

// ParsePreset decodes a YAML preset.
func ParsePreset(raw []byte) (*Preset, error) {
	var p Preset
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("parse preset: %w", err)
	}
	if p.Users < 0 || p.Posts < 0 || p.CommentsPerPost < 0 || p.FollowsPerUser < 0 {
		return nil, fmt.Errorf("preset %q: counts must not be negative", p.Name)
	}
	if p.GroupedShare != nil && (*p.GroupedShare < 0 || *p.GroupedShare > 1) {
		return nil, fmt.Errorf("preset %q: grouped_share must be between 0 and 1", p.Name)
	}
	return &p, nil
}

// LoadPreset reads a YAML preset from path.
func LoadPreset(path string) (*Preset, error) {
	raw, err := os.ReadFile(path) // #nosec G304: operator supplied path
	if err != nil {
		return nil, fmt.Errorf("read preset: %w", err)
	}
	return ParsePreset(raw)
}

// Options layers the preset over base. Zero preset fields keep the base value.
func (p *Preset) Options(base Options) Options {
	if p.Users > 0 {
		base.NumUsers = p.Users
	}
	if p.Posts > 0 {
		base.NumPosts = p.Posts
	}
	if p.CommentsPerPost > 0 {
		base.CommentsPerPost = p.CommentsPerPost
	}
	if p.FollowsPerUser > 0 {
		base.FollowsPerUser = p.FollowsPerUser
	}
	if p.GroupedShare != nil {
		base.GroupedShare = *p.GroupedShare
	}
	if p.MaxDays > 0 {
		base.MaxDays = p.MaxDays
	}
	return base
}

// GroupList returns the preset groups, or BuiltInGroups when it names none.
func (p *Preset) GroupList() []BuiltInGroup {
	if len(p.Groups) == 0 {
		return BuiltInGroups
	}
	return p.Groups
}
