package temporal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPoissonBurst_FirstTwoObservationsNeverBursty(t *testing.T) {
	p := NewPoissonBurst(2.0)
	base := time.Unix(0, 0)
	require.False(t, p.Observe(base))
	require.False(t, p.Observe(base.Add(time.Second)))
}

func TestPoissonBurst_RapidArrivalsFlagged(t *testing.T) {
	p := NewPoissonBurst(2.0)
	base := time.Unix(0, 0)
	p.Observe(base)
	p.Observe(base.Add(10 * time.Second)) // establishes a ~10s mean gap
	p.Observe(base.Add(20 * time.Second)) // still near the mean, not bursty
	bursty := p.Observe(base.Add(20*time.Second + 500*time.Millisecond))
	require.True(t, bursty, "a sub-second gap after a ~10s mean should be bursty")
}

func TestPoissonBurst_MeanGapTracksObservations(t *testing.T) {
	p := NewPoissonBurst(2.0)
	base := time.Unix(0, 0)
	p.Observe(base)
	p.Observe(base.Add(2 * time.Second))
	require.Equal(t, 2*time.Second, p.MeanGap())
}
