package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viktorklochkov/PFSimple/internal/particle"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "finder.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, cfg.Validate())

	decay, err := cfg.BuildDecay()
	require.NoError(t, err)
	assert.Equal(t, particle.KShort, decay.Mother)
	assert.Equal(t, 2, decay.NDaughters)
	assert.Equal(t, particle.PionPlus, decay.Daughter(0))
	assert.Equal(t, particle.PionMinus, decay.Daughter(1))

	cuts := cfg.BuildCuts()
	assert.Equal(t, 18.42, cuts.Chi2PrimMin)
	assert.Equal(t, 1.0, cuts.DistanceMax)
	assert.Equal(t, 3.0, cuts.Chi2GeoMax)
	assert.Equal(t, 5.0, cuts.LdLMin)
	assert.Equal(t, -1.0, cuts.CosOpenMin)
	assert.Equal(t, 0.0, cuts.Chi2TopoMax)
	assert.Equal(t, 0, cfg.GetWorkers())
	assert.NoError(t, cuts.Validate())
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("overrides and defaults mix", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, `{
			"decay": {"mother": "lambda", "daughters": ["proton", "pion-"]},
			"cuts": {"chi2_geo_max": 10, "ldl_min": 4},
			"workers": 2
		}`)
		cfg, err := Load(path)
		require.NoError(t, err)

		decay, err := cfg.BuildDecay()
		require.NoError(t, err)
		assert.Equal(t, "lambda -> proton pion-", decay.String())

		cuts := cfg.BuildCuts()
		assert.Equal(t, 10.0, cuts.Chi2GeoMax)
		assert.Equal(t, 4.0, cuts.LdLMin)
		assert.Equal(t, 18.42, cuts.Chi2PrimMin) // default kept
		assert.Equal(t, 2, cfg.GetWorkers())
	})

	t.Run("rejects non-json extension", func(t *testing.T) {
		t.Parallel()
		_, err := Load("cuts.yaml")
		assert.Error(t, err)
	})

	t.Run("rejects malformed json", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, `{"decay": `)
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("rejects missing file", func(t *testing.T) {
		t.Parallel()
		_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
		assert.Error(t, err)
	})
}

func TestBuildDecayValidation(t *testing.T) {
	t.Parallel()

	str := func(s string) *string { return &s }

	t.Run("unknown mother", func(t *testing.T) {
		t.Parallel()
		cfg := &Config{Decay: &DecayConfig{Mother: str("axion"), Daughters: []string{"pion+", "pion-"}}}
		_, err := cfg.BuildDecay()
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "decay.mother", verr.Field)
	})

	t.Run("unknown daughter", func(t *testing.T) {
		t.Parallel()
		cfg := &Config{Decay: &DecayConfig{Mother: str("k0s"), Daughters: []string{"pion+", "snark"}}}
		_, err := cfg.BuildDecay()
		assert.Error(t, err)
	})

	t.Run("wrong daughter count", func(t *testing.T) {
		t.Parallel()
		cfg := &Config{Decay: &DecayConfig{Mother: str("k0s"), Daughters: []string{"pion+"}}}
		_, err := cfg.BuildDecay()
		assert.Error(t, err)
	})

	t.Run("charge imbalance", func(t *testing.T) {
		t.Parallel()
		cfg := &Config{Decay: &DecayConfig{Mother: str("k0s"), Daughters: []string{"pion+", "pion+"}}}
		_, err := cfg.BuildDecay()
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Reason, "charges")
	})

	t.Run("three-prong hypothesis", func(t *testing.T) {
		t.Parallel()
		cfg := &Config{Decay: &DecayConfig{
			Mother:    str("hypertriton"),
			Daughters: []string{"proton", "pion-", "deuteron"},
		}}
		decay, err := cfg.BuildDecay()
		require.NoError(t, err)
		assert.Equal(t, 3, decay.NDaughters)
		assert.Equal(t, particle.Deuteron, decay.Daughter(2))
	})
}

func TestCutsValidation(t *testing.T) {
	t.Parallel()

	bad := DefaultCuts()
	bad.DistanceMax = -1
	err := bad.Validate()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "cuts.distance_max", verr.Field)

	capped := DefaultCuts()
	capped.LdLMax = 2 // below LdLMin
	assert.Error(t, capped.Validate())

	capped.LdLMax = 50
	assert.NoError(t, capped.Validate())

	cos := DefaultCuts()
	cos.CosTopoMin = 1.5
	assert.Error(t, cos.Validate())
}
