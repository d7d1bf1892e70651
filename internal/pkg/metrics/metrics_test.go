package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordEvaluation(t *testing.T) {
	before := testutil.ToFloat64(evaluationsTotal.WithLabelValues("42", OutcomeOK))
	RecordEvaluation("42", OutcomeOK)
	RecordEvaluation("42", OutcomeOK)
	after := testutil.ToFloat64(evaluationsTotal.WithLabelValues("42", OutcomeOK))

	assert.Equal(t, before+2, after)
}

func TestRecordFailure(t *testing.T) {
	before := testutil.ToFloat64(failuresTotal.WithLabelValues("REJECTED", "500"))
	RecordFailure("REJECTED", "500")
	after := testutil.ToFloat64(failuresTotal.WithLabelValues("REJECTED", "500"))

	assert.Equal(t, before+1, after)
}

func TestRecordCount(t *testing.T) {
	RecordCount("1337", 24)
	assert.Equal(t, 1, testutil.CollectAndCount(countsReceived, "ergo_counts_received"))
}
