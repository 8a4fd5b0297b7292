package logfields

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"Root", KeyRoot, "/srv/site", Root("/srv/site")},
		{"Generation", KeyGeneration, "gen-1", Generation("gen-1")},
		{"Path", KeyPath, "2024/01/02/post", Path("2024/01/02/post")},
		{"File", KeyFile, "post.md", File("post.md")},
		{"Crawler", KeyCrawler, "Entries", Crawler("Entries")},
		{"Step", KeyStep, "Order", Step("Order")},
		{"Indexer", KeyIndexer, "Tags", Indexer("Tags")},
		{"Route", KeyRoute, "Tag/(.*)", Route("Tag/(.*)")},
		{"View", KeyView, "Entry", View("Entry")},
		{"Stage", KeyStage, "crawl", Stage("crawl")},
		{"Job", KeyJob, "refresh", Job("refresh")},
		{"Method", KeyMethod, "GET", Method("GET")},
		{"RequestID", KeyRequestID, "rid", RequestID("rid")},
		{"Subject", KeySubject, "flatsite.generations", Subject("flatsite.generations")},
		{"URL", KeyURL, "nats://localhost:4222", URL("nats://localhost:4222")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// Key drift would break log ingestion schemas.
			assert.Equal(t, tc.attrKey, tc.attr.Key)
			assert.Equal(t, tc.attrVal, tc.attr.Value.String())
		})
	}
}

func TestNumericHelpers(t *testing.T) {
	assert.Equal(t, KeyCount, Count(3).Key)
	assert.Equal(t, int64(3), Count(3).Value.Int64())
	assert.Equal(t, KeyStatus, Status(404).Key)
	assert.Equal(t, KeyDurationMS, DurationMS(12.5).Key)
	assert.InDelta(t, 12.5, DurationMS(12.5).Value.Float64(), 0.0001)
}

// TestErrorHelper ensures Error() handles nil and non-nil errors predictably.
func TestErrorHelper(t *testing.T) {
	attr := Error(nil)
	assert.Equal(t, KeyError, attr.Key)
	assert.Empty(t, attr.Value.String())

	attr = Error(errors.New("err-test"))
	assert.Equal(t, "err-test", attr.Value.String())
}
