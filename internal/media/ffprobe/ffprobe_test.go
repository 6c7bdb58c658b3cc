package ffprobe

import (
	"testing"
	"time"
)

func TestCreationTimeParsesFractionalUTC(t *testing.T) {
	result := Result{
		Format: Format{
			Tags: map[string]string{"creation_time": "2025-02-18T15:00:02.000000Z"},
		},
	}
	got, ok := result.CreationTime()
	if !ok {
		t.Fatal("expected creation time")
	}
	want := time.Date(2025, time.February, 18, 15, 0, 2, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	if got.Location() != time.UTC {
		t.Fatalf("expected UTC, got %v", got.Location())
	}
}

func TestCreationTimeCaseInsensitiveTag(t *testing.T) {
	result := Result{
		Format: Format{
			Tags: map[string]string{"Creation_Time": "2025-02-18T15:00:02Z"},
		},
	}
	if _, ok := result.CreationTime(); !ok {
		t.Fatal("expected tag lookup to be caseless")
	}
}

func TestCreationTimeAbsentOrMalformed(t *testing.T) {
	cases := map[string]Result{
		"no tags":   {},
		"empty tag": {Format: Format{Tags: map[string]string{"creation_time": "  "}}},
		"garbage":   {Format: Format{Tags: map[string]string{"creation_time": "last tuesday"}}},
	}
	for name, result := range cases {
		if _, ok := result.CreationTime(); ok {
			t.Fatalf("%s: expected no creation time", name)
		}
	}
}

func TestResultHelpers(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{CodecType: "video"},
			{CodecType: "audio"},
		},
		Format: Format{Duration: "123.45"},
	}
	if result.VideoStreamCount() != 1 {
		t.Fatalf("expected 1 video stream, got %d", result.VideoStreamCount())
	}
	if result.DurationSeconds() != 123.45 {
		t.Fatalf("unexpected duration: %v", result.DurationSeconds())
	}
}

func TestDurationSecondsHandlesInvalid(t *testing.T) {
	result := Result{Format: Format{Duration: "bad"}}
	if result.DurationSeconds() != 0 {
		t.Fatalf("expected 0 for invalid duration, got %v", result.DurationSeconds())
	}
}
