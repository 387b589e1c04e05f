package voucherv2

import (
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBucketEarningsDaily(t *testing.T) {
	from := day(2024, 6, 1)
	to := day(2024, 6, 30)
	rows := []EarningRow{
		{Date: day(2024, 6, 1), Value: 10},
		{Date: day(2024, 6, 1), Value: 5},
		{Date: day(2024, 6, 3), Value: 20},
	}

	buckets, intervalDays := bucketEarnings(rows, from, to)
	assert.Equal(t, 1, intervalDays)

	require.Len(t, buckets, 2)
	assert.Equal(t, "2024-06-01", buckets[0].Date)
	assert.InDelta(t, 15.0, buckets[0].Value, 1e-9)
	assert.EqualValues(t, 2, buckets[0].Count)
	assert.Equal(t, "2024-06-03", buckets[1].Date)
	assert.InDelta(t, 20.0, buckets[1].Value, 1e-9)
}

func TestBucketEarningsWidensLongRanges(t *testing.T) {
	from := day(2024, 1, 1)
	to := day(2024, 12, 31)
	rows := []EarningRow{
		{Date: day(2024, 1, 1), Value: 10},
		{Date: day(2024, 1, 3), Value: 20}, // still inside the first 3-day bucket
		{Date: day(2024, 1, 4), Value: 30},
	}

	buckets, intervalDays := bucketEarnings(rows, from, to)
	assert.Equal(t, 3, intervalDays) // 365 days / 150 points, rounded up

	require.Len(t, buckets, 2)
	assert.Equal(t, "2024-01-01", buckets[0].Date)
	assert.InDelta(t, 30.0, buckets[0].Value, 1e-9)
	assert.EqualValues(t, 2, buckets[0].Count)
	assert.Equal(t, "2024-01-04", buckets[1].Date)
	assert.InDelta(t, 30.0, buckets[1].Value, 1e-9)
}

func TestBucketEarningsNeverExceedsCap(t *testing.T) {
	from := day(2020, 1, 1)
	to := day(2024, 12, 31)

	rows := make([]EarningRow, 0)
	for d := from; d.Before(to); d = d.AddDate(0, 0, 7) {
		rows = append(rows, EarningRow{Date: d, Value: 1})
	}

	buckets, intervalDays := bucketEarnings(rows, from, to)
	assert.Greater(t, intervalDays, 1)
	assert.LessOrEqual(t, len(buckets), maxBuckets)
}

func TestPeriodStarts(t *testing.T) {
	tests := []struct {
		name     string
		today    time.Time
		startDay int
		want     []time.Time
	}{
		{
			name:     "first of month",
			today:    day(2024, 6, 15),
			startDay: 1,
			want:     []time.Time{day(2024, 6, 1), day(2024, 5, 1), day(2024, 4, 1)},
		},
		{
			name:     "before start day shifts back",
			today:    day(2024, 6, 5),
			startDay: 10,
			want:     []time.Time{day(2024, 5, 10), day(2024, 4, 10), day(2024, 3, 10)},
		},
		{
			name:     "on start day",
			today:    day(2024, 6, 10),
			startDay: 10,
			want:     []time.Time{day(2024, 6, 10), day(2024, 5, 10), day(2024, 4, 10)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, periodStarts(tt.today, tt.startDay))
		})
	}
}

func TestEarningsEndpoint(t *testing.T) {
	store := &fakeStore{}
	app := newTestApp(store, day(2024, 6, 15))

	seed(store, userA, 100.50, day(2024, 3, 10))
	seed(store, userA, 49.50, day(2024, 3, 10))
	seed(store, userA, 200, day(2024, 7, 1))
	seed(store, userB, 999, day(2024, 3, 10))

	status, body := do(t, app, "GET", "/v2/voucher/statistics/earnings", userA, nil)
	require.Equal(t, fiber.StatusOK, status)

	summary := body["summary"].(map[string]any)
	assert.InDelta(t, 350.0, summary["totalEarnings"].(float64), 1e-9)
	assert.EqualValues(t, 3, summary["voucherCount"])

	period := summary["period"].(map[string]any)
	assert.Equal(t, "2024-01-01", period["from"])
	assert.Equal(t, "2024-12-31", period["to"])
}

func TestEarningsCustomRange(t *testing.T) {
	store := &fakeStore{}
	app := newTestApp(store, day(2024, 6, 15))

	seed(store, userA, 100.50, day(2024, 3, 10))
	seed(store, userA, 49.50, day(2024, 3, 12))
	seed(store, userA, 200, day(2024, 7, 1))

	status, body := do(t, app, "GET", "/v2/voucher/statistics/earnings?from=2024-03-01&to=2024-03-31", userA, nil)
	require.Equal(t, fiber.StatusOK, status)

	summary := body["summary"].(map[string]any)
	assert.InDelta(t, 150.0, summary["totalEarnings"].(float64), 1e-9)
	assert.EqualValues(t, 2, summary["voucherCount"])
	assert.EqualValues(t, 1, summary["intervalDays"])

	data := body["data"].([]any)
	assert.Len(t, data, 2)
}

func TestEarningsEmptyRange(t *testing.T) {
	app := newTestApp(&fakeStore{}, day(2024, 6, 15))

	status, body := do(t, app, "GET", "/v2/voucher/statistics/earnings", userA, nil)
	require.Equal(t, fiber.StatusOK, status)

	assert.Len(t, body["data"], 0)
	summary := body["summary"].(map[string]any)
	assert.EqualValues(t, 0, summary["totalEarnings"])
	assert.EqualValues(t, 0, summary["voucherCount"])
}

func TestEarningsValidation(t *testing.T) {
	app := newTestApp(&fakeStore{}, day(2024, 6, 15))

	status, body := do(t, app, "GET", "/v2/voucher/statistics/earnings?from=03/2024", userA, nil)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Equal(t, "Invalid date format. Use YYYY-MM-DD format.", body["message"])

	status, body = do(t, app, "GET", "/v2/voucher/statistics/earnings?from=2024-05-01&to=2024-04-01", userA, nil)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Equal(t, "From date must be earlier than to date.", body["message"])
}

func TestHomeSummary(t *testing.T) {
	store := &fakeStore{}
	app := newTestApp(store, day(2024, 6, 15))

	seed(store, userA, 150, day(2024, 6, 5))
	seed(store, userA, 100, day(2024, 5, 20))
	seed(store, userA, 50, day(2024, 5, 2))
	seed(store, userA, 20, day(2024, 4, 10))
	seed(store, userA, 999, day(2024, 3, 1)) // outside the three periods
	seed(store, userB, 777, day(2024, 6, 5))

	status, body := do(t, app, "GET", "/v2/voucher/home-summary", userA, nil)
	require.Equal(t, fiber.StatusOK, status)

	periods := body["periods"].([]any)
	require.Len(t, periods, 3)

	current := periods[0].(map[string]any)
	assert.Equal(t, "2024-06-01", current["from"])
	assert.Equal(t, "2024-06-30", current["to"])
	assert.InDelta(t, 150.0, current["total"].(float64), 1e-9)

	previous := periods[1].(map[string]any)
	assert.InDelta(t, 150.0, previous["total"].(float64), 1e-9)

	oldest := periods[2].(map[string]any)
	assert.InDelta(t, 20.0, oldest["total"].(float64), 1e-9)

	recent := body["recent"].([]any)
	require.Len(t, recent, 5)
	assert.Equal(t, "2024-06-05T00:00:00Z", recent[0].(map[string]any)["date"])
}

func TestHomeSummaryCustomStartDay(t *testing.T) {
	store := &fakeStore{}
	app := newTestApp(store, day(2024, 6, 15))

	seed(store, userA, 150, day(2024, 6, 5))
	seed(store, userA, 100, day(2024, 5, 20))
	seed(store, userA, 50, day(2024, 5, 2))
	seed(store, userA, 20, day(2024, 4, 10))

	status, body := do(t, app, "GET", "/v2/voucher/home-summary?monthStartDay=10", userA, nil)
	require.Equal(t, fiber.StatusOK, status)

	periods := body["periods"].([]any)
	require.Len(t, periods, 3)

	current := periods[0].(map[string]any)
	assert.Equal(t, "2024-06-10", current["from"])
	assert.InDelta(t, 0.0, current["total"].(float64), 1e-9)

	// June 5 falls in the period that started May 10.
	previous := periods[1].(map[string]any)
	assert.InDelta(t, 250.0, previous["total"].(float64), 1e-9)

	oldest := periods[2].(map[string]any)
	assert.InDelta(t, 70.0, oldest["total"].(float64), 1e-9)
}

func TestHomeSummaryStartDayValidation(t *testing.T) {
	app := newTestApp(&fakeStore{}, day(2024, 6, 15))

	for _, raw := range []string{"0", "32", "abc"} {
		status, body := do(t, app, "GET", "/v2/voucher/home-summary?monthStartDay="+raw, userA, nil)
		assert.Equal(t, fiber.StatusUnprocessableEntity, status)
		assert.Equal(t, "monthStartDay must be between 1 and 31", body["message"])
	}
}
