package policy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"underwriter/internal/logger"
)

const rulesetSchema = `{
  "type": "object",
  "properties": {
    "thresholds": {
      "type": "object",
      "properties": {
        "credit_score_floor": {"type": "integer", "minimum": 300, "maximum": 850},
        "dti_ceiling": {"type": "number", "exclusiveMinimum": 0, "maximum": 1},
        "min_employment_months": {"type": "integer", "minimum": 0},
        "derog_recency_years": {"type": "number", "minimum": 0}
      }
    },
    "rate_tiers": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["max_risk_score", "annual_rate"],
        "properties": {
          "max_risk_score": {"type": "integer", "minimum": 0, "maximum": 100},
          "annual_rate": {"type": "number", "minimum": 0}
        }
      }
    },
    "amount_caps": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["max_risk_score", "max_amount"],
        "properties": {
          "max_risk_score": {"type": "integer", "minimum": 0, "maximum": 100},
          "max_amount": {"type": "number", "exclusiveMinimum": 0}
        }
      }
    }
  }
}`

// Registry serves Ruleset snapshots, reloading the template file when it
// changes on disk. With an empty path it serves the compiled-in defaults.
type Registry struct {
	path string

	mu       sync.RWMutex
	current  Ruleset
	version  int64
	loadedAt time.Time
}

func NewRegistry(path string) (*Registry, error) {
	r := &Registry{path: strings.TrimSpace(path)}
	if r.path == "" {
		r.swap(Defaults())
		return r, nil
	}
	if err := r.reload(); err != nil {
		return nil, err
	}
	v := viper.New()
	v.SetConfigFile(r.path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading policy templates failed: %w", err)
	}
	v.OnConfigChange(func(fsnotify.Event) {
		if err := r.reload(); err != nil {
			logger.Errorf("policy template reload failed, keeping previous ruleset: %v", err)
		}
	})
	v.WatchConfig()
	return r, nil
}

// Current returns the active ruleset snapshot.
func (r *Registry) Current() Ruleset {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneRuleset(r.current)
}

// Version increments on every successful reload.
func (r *Registry) Version() int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

func (r *Registry) reload() error {
	raw, err := os.ReadFile(r.path)
	if err != nil {
		return fmt.Errorf("reading policy templates failed: %w", err)
	}
	if err := validateAgainstSchema(raw); err != nil {
		return err
	}
	rules := Defaults()
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&rules); err != nil {
		return fmt.Errorf("parsing policy templates failed: %w", err)
	}
	if err := rules.normalize(); err != nil {
		return fmt.Errorf("policy templates rejected: %w", err)
	}
	r.swap(rules)
	logger.Infof("policy ruleset loaded from %s (%d rate tiers, %d caps)",
		filepath.Base(r.path), len(rules.RateTiers), len(rules.AmountCaps))
	return nil
}

func (r *Registry) swap(rules Ruleset) {
	r.mu.Lock()
	r.current = rules
	r.version++
	r.loadedAt = time.Now()
	r.mu.Unlock()
}

func validateAgainstSchema(raw []byte) error {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parsing policy templates failed: %w", err)
	}
	jsonRaw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("policy templates not representable as JSON: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("ruleset.json", strings.NewReader(rulesetSchema)); err != nil {
		return err
	}
	schema, err := compiler.Compile("ruleset.json")
	if err != nil {
		return err
	}
	var parsed any
	if err := json.Unmarshal(jsonRaw, &parsed); err != nil {
		return err
	}
	if err := schema.Validate(parsed); err != nil {
		return fmt.Errorf("policy templates failed schema validation: %w", err)
	}
	return nil
}

func cloneRuleset(src Ruleset) Ruleset {
	dst := src
	dst.RateTiers = append([]RateTier(nil), src.RateTiers...)
	dst.AmountCaps = append([]CapTier(nil), src.AmountCaps...)
	return dst
}
