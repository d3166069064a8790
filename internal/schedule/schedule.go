package schedule

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/go-resty/resty/v2"
	"github.com/info-beamer/package-scheduled-player/internal/models"
)

type xmlSchedule struct {
	Days []xmlDay `xml:"day"`
}

type xmlDay struct {
	Rooms []xmlRoom `xml:"room"`
}

type xmlRoom struct {
	Events []xmlEvent `xml:"event"`
}

type xmlEvent struct {
	ID       string   `xml:"id,attr"`
	Date     string   `xml:"date"`
	Duration string   `xml:"duration"`
	Title    string   `xml:"title"`
	Track    string   `xml:"track"`
	Room     string   `xml:"room"`
	Abstract string   `xml:"abstract"`
	Language string   `xml:"language"`
	Persons  []string `xml:"persons>person"`
}

// Importer fetches and parses a conference schedule feed.
type Importer struct {
	client *resty.Client
}

func NewImporter() *Importer {
	return &Importer{
		client: resty.New().
			SetTimeout(30 * time.Second).
			SetRetryCount(3).
			SetRetryWaitTime(2 * time.Second).
			SetRetryMaxWaitTime(10 * time.Second),
	}
}

// Fetch retrieves the schedule XML from the given URL and parses it. The
// group tag is attached to every resulting event.
func (i *Importer) Fetch(ctx context.Context, url, group string) ([]models.Event, error) {
	resp, err := i.client.R().
		SetContext(ctx).
		Get(url)

	if err != nil {
		return nil, fmt.Errorf("failed to fetch schedule from %s: %w", url, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d from %s", resp.StatusCode(), url)
	}

	return Parse(resp.Body(), group)
}

// Parse maps a schedule document (schedule/day/room/event) to event records.
// A malformed event is an error; there is no partial-record recovery.
func Parse(data []byte, group string) ([]models.Event, error) {
	var doc xmlSchedule
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse schedule document: %w", err)
	}

	events := []models.Event{}
	for _, day := range doc.Days {
		for _, room := range day.Rooms {
			for _, ev := range room.Events {
				event, err := parseEvent(ev, group)
				if err != nil {
					return nil, err
				}
				events = append(events, event)
			}
		}
	}
	return events, nil
}

func parseEvent(ev xmlEvent, group string) (models.Event, error) {
	if ev.ID == "" {
		return models.Event{}, fmt.Errorf("event is missing its id attribute")
	}
	if ev.Date == "" {
		return models.Event{}, fmt.Errorf("event %s is missing its date", ev.ID)
	}

	// The feed's timestamps carry their own offset; keep it for the display
	// strings and convert to UTC for the machine-readable fields.
	start, err := dateparse.ParseAny(ev.Date)
	if err != nil {
		return models.Event{}, fmt.Errorf("event %s has a malformed date %q: %w", ev.ID, ev.Date, err)
	}

	duration, err := parseDuration(ev.Duration)
	if err != nil {
		return models.Event{}, fmt.Errorf("event %s: %w", ev.ID, err)
	}
	end := start.Add(duration)

	speakers := []string{}
	for _, person := range ev.Persons {
		if name := strings.TrimSpace(person); name != "" {
			speakers = append(speakers, name)
		}
	}

	return models.Event{
		Start:     start.UTC(),
		StartStr:  start.Format("15:04"),
		EndStr:    end.Format("15:04"),
		StartUnix: start.Unix(),
		EndUnix:   end.Unix(),
		Duration:  int(duration.Minutes()),
		Title:     ev.Title,
		Track:     ev.Track,
		Place:     ev.Room,
		Abstract:  ev.Abstract,
		Speakers:  speakers,
		Lang:      ev.Language,
		ID:        ev.ID,
		Group:     group,
	}, nil
}

// parseDuration parses an "HH:MM" duration value.
func parseDuration(value string) (time.Duration, error) {
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("malformed duration %q", value)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("malformed duration %q: %w", value, err)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("malformed duration %q: %w", value, err)
	}
	return time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute, nil
}
