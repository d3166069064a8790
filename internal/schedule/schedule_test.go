package schedule

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSchedule = `<schedule>
  <day>
    <room>
      <event id="eins">
        <date>2023-12-27T11:30:00+01:00</date>
        <duration>01:30</duration>
        <title>Opening</title>
        <track>Main</track>
        <room>Saal 1</room>
        <abstract>Welcome talk</abstract>
        <language>en</language>
        <persons>
          <person> Alice </person>
          <person>Bob</person>
        </persons>
      </event>
      <event id="zwei">
        <date>2023-12-27T14:00:00+01:00</date>
        <duration>00:45</duration>
        <title>Second</title>
      </event>
    </room>
  </day>
</schedule>`

func TestParseSchedule(t *testing.T) {
	events, err := Parse([]byte(sampleSchedule), "congress")
	require.NoError(t, err)
	require.Len(t, events, 2)

	first := events[0]
	assert.Equal(t, "eins", first.ID)
	assert.Equal(t, "Opening", first.Title)
	assert.Equal(t, "Main", first.Track)
	assert.Equal(t, "Saal 1", first.Place)
	assert.Equal(t, "Welcome talk", first.Abstract)
	assert.Equal(t, "en", first.Lang)
	assert.Equal(t, "congress", first.Group)
	assert.Equal(t, []string{"Alice", "Bob"}, first.Speakers)

	// Display strings keep the feed's timezone, machine fields are UTC.
	assert.Equal(t, "11:30", first.StartStr)
	assert.Equal(t, "13:00", first.EndStr)
	assert.Equal(t, 90, first.Duration)

	wantStart := time.Date(2023, 12, 27, 10, 30, 0, 0, time.UTC)
	assert.True(t, first.Start.Equal(wantStart))
	assert.Equal(t, time.UTC, first.Start.Location())
	assert.Equal(t, wantStart.Unix(), first.StartUnix)
	assert.Equal(t, wantStart.Add(90*time.Minute).Unix(), first.EndUnix)
}

func TestParseScheduleOptionalFieldsDefaultToEmpty(t *testing.T) {
	events, err := Parse([]byte(sampleSchedule), "congress")
	require.NoError(t, err)

	second := events[1]
	assert.Equal(t, "zwei", second.ID)
	assert.Equal(t, "Second", second.Title)
	assert.Equal(t, "", second.Track)
	assert.Equal(t, "", second.Place)
	assert.Equal(t, "", second.Abstract)
	assert.Equal(t, "", second.Lang)
	assert.Empty(t, second.Speakers)
	assert.Equal(t, 45, second.Duration)
}

func TestParseScheduleMalformedEvents(t *testing.T) {
	tests := []struct {
		name string
		xml  string
	}{
		{
			name: "missing id",
			xml: `<schedule><day><room><event>
				<date>2023-12-27T11:30:00+01:00</date>
				<duration>01:00</duration>
			</event></room></day></schedule>`,
		},
		{
			name: "missing date",
			xml: `<schedule><day><room><event id="x">
				<duration>01:00</duration>
			</event></room></day></schedule>`,
		},
		{
			name: "missing duration",
			xml: `<schedule><day><room><event id="x">
				<date>2023-12-27T11:30:00+01:00</date>
			</event></room></day></schedule>`,
		},
		{
			name: "malformed duration",
			xml: `<schedule><day><room><event id="x">
				<date>2023-12-27T11:30:00+01:00</date>
				<duration>ninety</duration>
			</event></room></day></schedule>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.xml), "g")
			assert.Error(t, err)
		})
	}
}

func TestParseEmptySchedule(t *testing.T) {
	events, err := Parse([]byte(`<schedule></schedule>`), "g")
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestFetchSchedule(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		w.Write([]byte(sampleSchedule))
	}))
	t.Cleanup(srv.Close)

	events, err := NewImporter().Fetch(context.Background(), srv.URL, "congress")
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestFetchScheduleUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	_, err := NewImporter().Fetch(context.Background(), srv.URL, "congress")
	assert.Error(t, err)
}
