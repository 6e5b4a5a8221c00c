package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPrice(t *testing.T) {
	t.Parallel()

	require.Equal(t, "₪299.00", Price(299, "ILS", "en"))
	require.Equal(t, "₪1,299.50", Price(1299.5, "", "he"))
	require.Equal(t, "$12.00", Price(12, "usd", "en"))
	require.Equal(t, "-€3.10", Price(-3.1, "EUR", "en"))
	require.Equal(t, "GBP 5.00", Price(5, "GBP", "bogus tag"))
}

func TestDate(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 6, 1, 9, 5, 0, 0, time.UTC)
	require.Equal(t, "Jun 1, 2024 09:05", Date(ts, "en"))
	require.Equal(t, "01/06/2024 09:05", Date(ts, "he"))
	require.Equal(t, "", Date(time.Time{}, "en"))
}
