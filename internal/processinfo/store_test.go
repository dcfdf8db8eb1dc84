package processinfo

import (
	"sync"
	"testing"
)

func TestStoreValues(t *testing.T) {
	st := New()

	if st.Has(RayleighAlpha) {
		t.Fatal("empty store should not have RAYLEIGH_ALPHA")
	}
	if st.GetValue(RayleighAlpha) != 0 {
		t.Error("unset value should read as zero")
	}

	st.SetValue(RayleighAlpha, 0.5)
	st.SetFlag(UseNodalMassArray, true)

	if !st.Has(RayleighAlpha) || !st.Has(UseNodalMassArray) {
		t.Error("expected both keys to be present")
	}
	if got := st.GetValue(RayleighAlpha); got != 0.5 {
		t.Errorf("expected 0.5, got %f", got)
	}
	if !st.GetFlag(UseNodalMassArray) {
		t.Error("expected flag to be true")
	}
}

func TestStoreKeysSorted(t *testing.T) {
	st := New()
	st.SetValue(ThetaFactor, 1)
	st.SetValue(B0, 2)
	st.SetFlag(UseNodalMassArray, false)

	keys := st.Keys()
	want := []Key{B0, ThetaFactor, UseNodalMassArray}
	if len(keys) != len(want) {
		t.Fatalf("expected %d keys, got %d", len(want), len(keys))
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("key %d: expected %s, got %s", i, want[i], keys[i])
		}
	}
}

func TestStoreSnapshot(t *testing.T) {
	st := New()
	st.SetValue(RayleighBeta, 0.25)
	st.SetFlag(IsConverged, true)

	snap := st.Snapshot()
	if snap["RAYLEIGH_BETA"] != 0.25 {
		t.Errorf("expected 0.25, got %f", snap["RAYLEIGH_BETA"])
	}
	if snap["IS_CONVERGED"] != 1 {
		t.Errorf("expected flag encoded as 1, got %f", snap["IS_CONVERGED"])
	}

	snap["RAYLEIGH_BETA"] = 99
	if st.GetValue(RayleighBeta) != 0.25 {
		t.Error("snapshot should not alias the store")
	}
}

func TestStoreDelete(t *testing.T) {
	st := New()
	st.SetValue(B0, 0.2)
	st.SetValue(Delta, 0.1)
	st.SetFlag(UseNodalMassArray, true)
	st.SetValue(RayleighAlpha, 1.0)

	st.Delete(B0, UseNodalMassArray, B2)

	tests := []struct {
		key  Key
		want bool
	}{
		{B0, false},
		{B2, false},
		{UseNodalMassArray, false},
		{Delta, true},
		{RayleighAlpha, true},
	}
	for _, tt := range tests {
		if got := st.Has(tt.key); got != tt.want {
			t.Errorf("Has(%s) = %v, want %v", tt.key, got, tt.want)
		}
	}
	if len(st.Keys()) != 2 {
		t.Errorf("expected 2 keys left, got %v", st.Keys())
	}
}

func TestStoreConcurrentReads(t *testing.T) {
	st := New()
	st.SetValue(RayleighAlpha, 1.5)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if st.GetValue(RayleighAlpha) != 1.5 {
					t.Error("unexpected value")
					return
				}
			}
		}()
	}
	wg.Wait()
}
