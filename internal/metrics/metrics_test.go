package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessagesTotal(t *testing.T) {
	before := testutil.ToFloat64(MessagesTotal.WithLabelValues(ActionDeleted))
	MessagesTotal.WithLabelValues(ActionDeleted).Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(MessagesTotal.WithLabelValues(ActionDeleted)))
}

func TestHandler(t *testing.T) {
	DuplicatesTotal.Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "safebot_duplicates_total")
}
