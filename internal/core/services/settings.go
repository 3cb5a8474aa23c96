package services

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/docsift/internal/core/domain"
	"github.com/custodia-labs/docsift/internal/core/ports/driven"
	"github.com/custodia-labs/docsift/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Connection test targets.
const (
	TestTargetLLM         = "llm"
	TestTargetMeilisearch = "meilisearch"
)

var allowedSettingValues = map[string][]string{
	domain.SettingAIMode:       {domain.AIModeOff, domain.AIModeDashScope, domain.AIModePrivate},
	domain.SettingAIClassifier: {domain.ClassifierRules, domain.ClassifierAI},
}

// Probe checks that an external service is reachable.
type Probe func(ctx context.Context) error

// SettingsService manages named string settings on top of a ConfigStore.
// Reads are cached in process; every write drops the cache.
type SettingsService struct {
	configStore driven.ConfigStore
	lookupEnv   func(string) (string, bool)

	mu     sync.RWMutex
	cache  map[string]string
	gen    uint64
	probes map[string]Probe
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		lookupEnv:   os.LookupEnv,
		cache:       make(map[string]string),
		probes:      make(map[string]Probe),
	}
}

// SetProbe registers the connectivity check for a test target.
func (s *SettingsService) SetProbe(target string, p Probe) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.probes[target] = p
}

// Get returns every setting in masked form.
func (s *SettingsService) Get() ([]domain.SettingView, error) {
	views := make([]domain.SettingView, 0, len(domain.SettingKeys))
	for _, key := range domain.SettingKeys {
		v := s.Value(key)
		views = append(views, domain.SettingView{
			Key:        key,
			Value:      domain.MaskSetting(key, v),
			Configured: v != "",
			Sensitive:  domain.IsSensitiveSetting(key),
		})
	}
	return views, nil
}

// Update writes every known key with a non-empty value. A sensitive value
// equal to its own masked form is treated as unchanged.
func (s *SettingsService) Update(values map[string]string) ([]string, error) {
	var unknown []string
	for key := range values {
		if !domain.IsSettingKey(key) {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("%w: unknown settings %s", domain.ErrInvalidInput, strings.Join(unknown, ", "))
	}

	pending := make(map[string]string)
	for _, key := range domain.SettingKeys {
		v := strings.TrimSpace(values[key])
		if v == "" {
			continue
		}
		if allowed, ok := allowedSettingValues[key]; ok && !contains(allowed, v) {
			return nil, fmt.Errorf("%w: %s must be one of %s", domain.ErrInvalidInput, key, strings.Join(allowed, ", "))
		}
		if domain.IsSensitiveSetting(key) {
			if current := s.Value(key); current != "" && v == domain.MaskSetting(key, current) {
				continue
			}
		}
		pending[key] = v
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.invalidate()

	var written []string
	for _, key := range domain.SettingKeys {
		v, ok := pending[key]
		if !ok {
			continue
		}
		if err := s.configStore.Set(key, v); err != nil {
			return written, fmt.Errorf("saving %s: %w", key, err)
		}
		written = append(written, key)
	}
	return written, nil
}

// Value returns a setting, falling back to its environment variable.
func (s *SettingsService) Value(key string) string {
	s.mu.RLock()
	v, ok := s.cache[key]
	gen := s.gen
	s.mu.RUnlock()
	if ok {
		return v
	}

	v = s.configStore.GetString(key)
	if v == "" {
		if env, ok := s.lookupEnv(domain.SettingEnvVar(key)); ok {
			v = strings.TrimSpace(env)
		}
	}

	s.mu.Lock()
	// A write since the load makes v stale.
	if s.gen == gen {
		s.cache[key] = v
	}
	s.mu.Unlock()
	return v
}

// Test runs the probe registered for target.
func (s *SettingsService) Test(ctx context.Context, target string) error {
	s.mu.RLock()
	probe, ok := s.probes[target]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: unknown test target %q", domain.ErrInvalidInput, target)
	}
	return probe(ctx)
}

// invalidate must be called with mu held.
func (s *SettingsService) invalidate() {
	s.cache = make(map[string]string)
	s.gen++
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
