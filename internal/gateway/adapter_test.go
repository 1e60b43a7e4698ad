package gateway

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lanebook/internal/model"
)

func rec(t *testing.T, s string) record {
	t.Helper()
	var r record
	require.NoError(t, json.Unmarshal([]byte(s), &r))
	return r
}

func TestNormalizeBooking_FieldSpellings(t *testing.T) {
	loc := time.FixedZone("venue", -6*3600)
	want := time.Date(2024, 1, 17, 0, 0, 0, 0, loc)

	tests := []struct {
		name string
		json string
	}{
		{"camelCase", `{"id":"b1","date":"2024-01-17","startTime":"15:00","endTime":"16:30","lane":2,"guestCount":4,"status":"confirmed"}`},
		{"lowercase", `{"_id":"b1","date":"2024-01-17T00:00:00.000Z","starttime":"15:00","endtime":"16:30","lane_no":"2","guests":4,"status":"confirmed"}`},
		{"snake_case", `{"booking_id":"b1","booking_date":"2024-01-17","start_time":"3:00 PM","end_time":"4:30 PM","lane_number":2,"guest_count":"4","booking_status":"CONFIRMED"}`},
		{"timestamps", `{"id":"b1","start":"2024-01-17T15:00:00","end":"2024-01-17T16:30:00","laneNumber":2,"players":4,"status":"confirmed"}`},
		{"sql timestamps", `{"id":"b1","start_time":"2024-01-17 15:00:00","end_time":"2024-01-17 16:30:00","lane":2,"guests":4,"status":"confirmed"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, issues := normalizeBooking(rec(t, tt.json), loc)
			assert.Empty(t, issues)
			assert.Equal(t, "b1", b.ID)
			assert.True(t, b.Date.Equal(want), "date %v", b.Date)
			assert.Equal(t, "15:00", b.StartTime)
			assert.Equal(t, "16:30", b.EndTime)
			assert.Equal(t, 2, b.Lane)
			assert.Equal(t, 4, b.GuestCount)
			assert.Equal(t, model.StatusConfirmed, b.Status)
		})
	}
}

func TestNormalizeBooking_Malformed(t *testing.T) {
	b, issues := normalizeBooking(rec(t, `{"id":"x","date":"soon","startTime":"bad","endTime":null,"guestCount":-2}`), time.UTC)

	assert.ElementsMatch(t, []string{"date", "start_time", "end_time", "lane", "guest_count"}, issues)
	assert.Equal(t, "bad", b.StartTime)
	assert.Equal(t, 0, b.GuestCount)
	assert.True(t, b.Date.IsZero())
	assert.Equal(t, model.StatusPending, b.Status)
}

func TestNormalizeBooking_Package(t *testing.T) {
	b, _ := normalizeBooking(rec(t, `{"id":"1","package":{"_id":"p9","name":"Party","price":"129.99"}}`), time.UTC)
	assert.Equal(t, "p9", b.PackageID)
	assert.Equal(t, "Party", b.PackageName)
	require.NotNil(t, b.PackageCost)
	assert.Equal(t, model.Money(12999), *b.PackageCost)

	b, _ = normalizeBooking(rec(t, `{"id":"2","packageId":17}`), time.UTC)
	assert.Equal(t, "17", b.PackageID)
	assert.Nil(t, b.PackageCost)

	b, issues := normalizeBooking(rec(t, `{"id":"3","package_id":"p1","packageCost":"n/a"}`), time.UTC)
	assert.Contains(t, issues, "package_cost")
	assert.Nil(t, b.PackageCost)
}

func TestNormalizeWindow(t *testing.T) {
	tests := []struct {
		name   string
		json   string
		want   model.BusinessHourWindow
		wantOK bool
	}{
		{
			name:   "offDay camelCase",
			json:   `{"dayOfWeek":1,"openTime":"12:00","closeTime":"23:00","offDay":false}`,
			want:   model.BusinessHourWindow{DayOfWeek: time.Monday, Opens: "12:00", Closes: "23:00"},
			wantOK: true,
		},
		{
			name:   "offday lowercase is honored",
			json:   `{"day":"Tuesday","opentime":"12:00","closetime":"23:00","offday":true}`,
			want:   model.BusinessHourWindow{DayOfWeek: time.Tuesday, Opens: "12:00", Closes: "23:00", IsClosed: true},
			wantOK: true,
		},
		{
			name:   "monday-first ordinal seven is sunday",
			json:   `{"day_of_week":7,"open_time":"10:00:00","close_time":"20:00:00","is_closed":"false"}`,
			want:   model.BusinessHourWindow{DayOfWeek: time.Sunday, Opens: "10:00", Closes: "20:00"},
			wantOK: true,
		},
		{
			name:   "short day name",
			json:   `{"weekday":"sat","opens":"11:00","closes":"00:00"}`,
			want:   model.BusinessHourWindow{DayOfWeek: time.Saturday, Opens: "11:00", Closes: "00:00"},
			wantOK: true,
		},
		{
			name: "no weekday",
			json: `{"openTime":"12:00","closeTime":"23:00"}`,
		},
		{
			name: "weekday out of range",
			json: `{"dayOfWeek":9}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := normalizeWindow(rec(t, tt.json))
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestDecodeList(t *testing.T) {
	tests := []struct {
		name string
		body string
		n    int
	}{
		{"bare array", `[{"id":1},{"id":2}]`, 2},
		{"data envelope", `{"data":[{"id":1}]}`, 1},
		{"named envelope", `{"success":true,"bookings":[{"id":1},{"id":2},{"id":3}]}`, 3},
		{"nested envelope", `{"data":{"businessHours":[{"day":1}]}}`, 1},
		{"empty body", ``, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := decodeList([]byte(tt.body))
			require.NoError(t, err)
			assert.Len(t, recs, tt.n)
		})
	}

	_, err := decodeList([]byte(`{"ok":true}`))
	assert.Error(t, err)
	_, err = decodeList([]byte(`[{`))
	assert.Error(t, err)
}

func TestResolvePackageCosts(t *testing.T) {
	own := model.Money(1000)
	bookings := []model.Booking{
		{ID: "a", PackageID: "p1"},
		{ID: "b", PackageID: "p1", PackageCost: &own},
		{ID: "c", PackageID: "missing"},
		{ID: "d"},
	}
	idx := model.NewPackageIndex([]model.Package{{ID: "p1", Name: "Cosmic", Price: 5999}})

	ResolvePackageCosts(bookings, idx)

	require.NotNil(t, bookings[0].PackageCost)
	assert.Equal(t, model.Money(5999), *bookings[0].PackageCost)
	assert.Equal(t, "Cosmic", bookings[0].PackageName)
	assert.Equal(t, model.Money(1000), *bookings[1].PackageCost)
	assert.Nil(t, bookings[2].PackageCost)
	assert.Nil(t, bookings[3].PackageCost)
}
