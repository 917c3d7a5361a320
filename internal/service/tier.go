package service

import (
	"fmt"
	"sync"

	"github.com/Strob0t/OpsPlane/internal/domain"
	"github.com/Strob0t/OpsPlane/internal/domain/tier"
)

// TierService holds the mutable fleet tier state: the active tier and the
// per-agent enabled flags. All reads return consistent snapshots; writes
// serialize under the mutex.
type TierService struct {
	mu       sync.RWMutex
	current  tier.Name
	disabled map[tier.AgentName]bool
}

// NewTierService creates a TierService with all agents enabled.
func NewTierService(defaultTier string) (*TierService, error) {
	name := tier.Name(defaultTier)
	if !name.Valid() {
		return nil, fmt.Errorf("unknown tier %q: %w", defaultTier, domain.ErrInvalidTier)
	}
	return &TierService{
		current:  name,
		disabled: make(map[tier.AgentName]bool),
	}, nil
}

// SetTier switches the whole fleet to the named tier and returns the
// resulting snapshot. Enabled flags are untouched.
func (s *TierService) SetTier(name string) (tier.Info, error) {
	n := tier.Name(name)
	if !n.Valid() {
		return tier.Info{}, fmt.Errorf("unknown tier %q: %w", name, domain.ErrInvalidTier)
	}
	s.mu.Lock()
	s.current = n
	info := s.infoLocked()
	s.mu.Unlock()
	return info, nil
}

// SetAgentEnabled toggles one agent and returns the resulting snapshot.
// The active tier is untouched.
func (s *TierService) SetAgentEnabled(agent string, enabled bool) (tier.Info, error) {
	a := tier.AgentName(agent)
	if !a.Valid() {
		return tier.Info{}, fmt.Errorf("unknown agent %q: %w", agent, domain.ErrInvalidAgent)
	}
	s.mu.Lock()
	if enabled {
		delete(s.disabled, a)
	} else {
		s.disabled[a] = true
	}
	info := s.infoLocked()
	s.mu.Unlock()
	return info, nil
}

// Info returns a consistent snapshot of the tier state.
func (s *TierService) Info() tier.Info {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.infoLocked()
}

func (s *TierService) infoLocked() tier.Info {
	info := tier.Info{
		Current: s.current,
		Agents:  make(map[tier.AgentName]tier.AgentInfo, len(tier.AgentNames)),
	}
	for _, a := range tier.AgentNames {
		asn := tier.AssignmentFor(a, s.current)
		info.Agents[a] = tier.AgentInfo{
			Enabled:     !s.disabled[a],
			Model:       asn.Primary,
			Fallback:    asn.Fallback,
			Provider:    tier.Models[asn.Primary].Provider,
			MaxTokens:   asn.MaxTokens,
			Temperature: asn.Temperature,
		}
	}
	return info
}

// PrimaryProvider returns the provider of agent's primary model at the
// active tier. ok is false for unknown agents.
func (s *TierService) PrimaryProvider(agent string) (string, bool) {
	a := tier.AgentName(agent)
	if !a.Valid() {
		return "", false
	}
	s.mu.RLock()
	current := s.current
	s.mu.RUnlock()
	return tier.Models[tier.AssignmentFor(a, current).Primary].Provider, true
}

// EstimateCost projects the USD cost of one full run: every enabled agent
// making one typical-volume call on its primary model at the active tier.
// Disabled agents contribute nothing.
func (s *TierService) EstimateCost() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total float64
	for _, a := range tier.AgentNames {
		if s.disabled[a] {
			continue
		}
		vol := tier.TypicalVolume[a]
		model := tier.Models[tier.AssignmentFor(a, s.current).Primary]
		total += float64(vol.Input)/1_000_000*model.InputUSDPer1M +
			float64(vol.Output)/1_000_000*model.OutputUSDPer1M
	}
	return total
}
