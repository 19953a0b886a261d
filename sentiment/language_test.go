package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLinguaGate(t *testing.T) {
	if testing.Short() {
		t.Skip("loads language models")
	}
	gate := NewLinguaGate(0.1)

	assert.True(t, gate.Supported("Has anyone switched their merchant of record recently? Looking for recommendations."))
	assert.False(t, gate.Supported("Hat jemand Erfahrungen mit dem Wechsel des Zahlungsanbieters gemacht? Wir sind sehr unzufrieden."))
}

func TestScorer_WithLinguaGate(t *testing.T) {
	if testing.Short() {
		t.Skip("loads language models")
	}
	scorer := NewScorer(testLogger, NewLinguaGate(0.1))

	_, err := scorer.Classify("Das ist wirklich eine schreckliche Erfahrung mit diesem Anbieter gewesen.")
	assert.ErrorIs(t, err, ErrClassification)

	score, err := scorer.Classify("This is amazing and great")
	assert.NoError(t, err)
	assert.Greater(t, score, PositiveThreshold)
}
