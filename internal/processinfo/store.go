// Package processinfo provides the per-run parameter store shared between a
// solver and its time integration schemes.
//
// The store is written once while a solver initializes and is read for the
// rest of the run:
//
//	st := processinfo.New()
//	st.SetValue(processinfo.RayleighAlpha, 0.09)
//	if st.Has(processinfo.RayleighAlpha) {
//	    alpha := st.GetValue(processinfo.RayleighAlpha)
//	}
//
// # Thread Safety
//
// Store is safe for concurrent use. Schemes running on several goroutines
// may read the same store.
package processinfo

import (
	"sort"
	"sync"
)

type Key string

const (
	RayleighAlpha     Key = "RAYLEIGH_ALPHA"
	RayleighBeta      Key = "RAYLEIGH_BETA"
	GCoefficient      Key = "G_COEFFICIENT"
	ThetaFactor       Key = "THETA_FACTOR"
	Delta             Key = "DELTA"
	B0                Key = "B_0"
	B1                Key = "B_1"
	B2                Key = "B_2"
	RayleighAlphaB    Key = "RAYLEIGH_ALPHA_B"
	RayleighBetaB     Key = "RAYLEIGH_BETA_B"
	UseNodalMassArray Key = "USE_NODAL_MASS_ARRAY"
	DeltaTime         Key = "DELTA_TIME"
	IsConverged       Key = "IS_CONVERGED"
)

// CDFKeys are only present in a store calibrated for the CDF scheme.
var CDFKeys = []Key{Delta, B0, B1, B2, RayleighAlphaB, RayleighBetaB}

type Store struct {
	mu     sync.RWMutex
	values map[Key]float64
	flags  map[Key]bool
}

func New() *Store {
	return &Store{
		values: make(map[Key]float64),
		flags:  make(map[Key]bool),
	}
}

func (s *Store) SetValue(k Key, v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[k] = v
}

// GetValue returns the scalar stored under k, or zero when k is unset.
func (s *Store) GetValue(k Key) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[k]
}

func (s *Store) SetFlag(k Key, v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flags[k] = v
}

func (s *Store) GetFlag(k Key) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flags[k]
}

// Delete removes each key, whether it holds a scalar or a flag.
func (s *Store) Delete(keys ...Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.values, k)
		delete(s.flags, k)
	}
}

// Has reports whether k holds either a scalar or a flag.
func (s *Store) Has(k Key) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.values[k]; ok {
		return true
	}
	_, ok := s.flags[k]
	return ok
}

// Keys returns every key in the store in lexical order.
func (s *Store) Keys() []Key {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]Key, 0, len(s.values)+len(s.flags))
	for k := range s.values {
		keys = append(keys, k)
	}
	for k := range s.flags {
		if _, dup := s.values[k]; !dup {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Snapshot copies the scalar values. Flags are reported as 0 or 1.
func (s *Store) Snapshot() map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]float64, len(s.values)+len(s.flags))
	for k, v := range s.values {
		out[string(k)] = v
	}
	for k, v := range s.flags {
		if v {
			out[string(k)] = 1
		} else {
			out[string(k)] = 0
		}
	}
	return out
}
