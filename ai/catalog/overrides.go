package catalog

import (
	"fmt"
	"regexp"

	"github.com/hrygo/clipsense/ai/configloader"
)

// Overrides is the YAML shape of user-supplied catalog extensions:
//
//	platforms:
//	  slack:
//	    keywords: [standup, retro]
//	    patterns: ['(?i)\bsprint\b']
//	tones:
//	  urgent:
//	    keywords: [p0]
type Overrides struct {
	Platforms map[string]SignatureOverride `yaml:"platforms"`
	Tones     map[string]SignatureOverride `yaml:"tones"`
}

// SignatureOverride adds signals to an existing tag.
type SignatureOverride struct {
	Keywords []string `yaml:"keywords"`
	Patterns []string `yaml:"patterns"`
}

// LoadOverrides reads path through loader and merges it into c.
// The catalog is re-validated after the merge.
func LoadOverrides(c *Catalog, loader *configloader.Loader, path string) error {
	var o Overrides
	if err := loader.Load(path, &o); err != nil {
		return fmt.Errorf("load catalog overrides: %w", err)
	}
	return c.Apply(o)
}

// Apply merges o into c. Unknown tags and invalid patterns are rejected before anything is
// modified.
func (c *Catalog) Apply(o Overrides) error {
	platformRules := make(map[Platform][]Rule, len(o.Platforms))
	for name, ov := range o.Platforms {
		if !IsPlatform(name) {
			return fmt.Errorf("override for unknown platform %q", name)
		}
		rules, err := compileRules(ov.Patterns)
		if err != nil {
			return fmt.Errorf("platform %q: %w", name, err)
		}
		platformRules[Platform(name)] = rules
	}

	toneRules := make(map[Tone][]Rule, len(o.Tones))
	for name, ov := range o.Tones {
		if !IsTone(name) {
			return fmt.Errorf("override for unknown tone %q", name)
		}
		rules, err := compileRules(ov.Patterns)
		if err != nil {
			return fmt.Errorf("tone %q: %w", name, err)
		}
		toneRules[Tone(name)] = rules
	}

	for i := range c.Platforms {
		sig := &c.Platforms[i]
		ov, ok := o.Platforms[string(sig.Platform)]
		if !ok {
			continue
		}
		sig.Rules = append(sig.Rules, platformRules[sig.Platform]...)
		sig.Keywords = append(sig.Keywords, ov.Keywords...)
	}
	for i := range c.Tones {
		sig := &c.Tones[i]
		ov, ok := o.Tones[string(sig.Tone)]
		if !ok {
			continue
		}
		sig.Rules = append(sig.Rules, toneRules[sig.Tone]...)
		sig.Keywords = append(sig.Keywords, ov.Keywords...)
	}

	return c.Validate()
}

func compileRules(patterns []string) ([]Rule, error) {
	rules := make([]Rule, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compile pattern %q: %w", p, err)
		}
		rules = append(rules, Rule{Pattern: re, Weight: PatternWeight})
	}
	return rules, nil
}
