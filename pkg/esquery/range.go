// Package esquery counts Elasticsearch documents in time buckets.
package esquery

import (
	"time"

	elastic "github.com/olivere/elastic/v7" // Elasticsearch client.

	"github.com/mintel/timebucket/pkg/window"
)

// DateFormat is the Elasticsearch date format of range query bounds.
const DateFormat = "strict_date_optional_time"

// RangeQuery returns a query matching documents where field is within w.
// The start of w is inclusive and the end is exclusive. Missing bounds
// are left open.
func RangeQuery(field string, w window.Window) *elastic.RangeQuery {
	q := elastic.NewRangeQuery(field).Format(DateFormat)
	if start, ok := w.Start(); ok {
		q = q.Gte(start.Format(time.RFC3339Nano))
	}
	if end, ok := w.End(); ok {
		q = q.Lt(end.Format(time.RFC3339Nano))
	}
	return q
}
