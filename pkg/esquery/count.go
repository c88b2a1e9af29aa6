package esquery

import (
	"context"

	elastic "github.com/olivere/elastic/v7" // Elasticsearch client.
	"github.com/pkg/errors"                 // Wrap errors with context.
	"go.uber.org/zap"                       // Logging.
	"golang.org/x/sync/semaphore"           // Limit concurrent requests.
	tomb "gopkg.in/tomb.v2"                 // Goroutine management.

	"github.com/mintel/timebucket/pkg/ctxlog" // Logger from context.
	"github.com/mintel/timebucket/pkg/window"
)

// DefaultChunkSize is the default number of windows counted per
// multi search request.
const DefaultChunkSize = 100

// Count is the number of documents in a window.
type Count struct {
	Window window.Window `json:"window"`
	Count  int64         `json:"count"`
}

// CountService counts the documents within each of a list of windows.
//
// Windows are counted in chunks using the multi search API. Each chunk
// is a separate request, and chunks are requested concurrently with
// one goroutine per chunk. Concurrency limits how many requests are
// in flight at once.
//
// See: https://www.elastic.co/guide/en/elasticsearch/reference/7.0/search-multi-search.html
type CountService struct {
	client    *elastic.Client
	index     []string
	field     string
	chunkSize int

	concurrency int64
}

// NewCountService returns a new CountService.
func NewCountService(client *elastic.Client) *CountService {
	return &CountService{
		client:    client,
		chunkSize: DefaultChunkSize,
	}
}

// Index limits the search to these indices or index patterns.
// The default is all indices.
func (s *CountService) Index(index ...string) *CountService {
	s.index = index
	return s
}

// Field is the date field to filter on. It's required.
func (s *CountService) Field(field string) *CountService {
	s.field = field
	return s
}

// ChunkSize sets the maximum number of windows per request.
func (s *CountService) ChunkSize(n int) *CountService {
	s.chunkSize = n
	return s
}

// Concurrency sets the maximum number of requests in flight.
// Zero or less means no limit.
func (s *CountService) Concurrency(n int) *CountService {
	s.concurrency = int64(n)
	return s
}

// Validate checks if the operation is valid.
func (s *CountService) Validate() error {
	if s.field == "" {
		return errors.New("missing required field: Field")
	}
	if s.chunkSize <= 0 {
		return errors.Errorf("chunk size must be positive, got %d", s.chunkSize)
	}
	return nil
}

// Do counts the documents in each window. Counts are returned in the
// same order as windows.
func (s *CountService) Do(ctx context.Context, windows []window.Window) ([]Count, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	out := make([]Count, len(windows))
	if len(windows) == 0 {
		return out, nil
	}

	var sem *semaphore.Weighted
	if s.concurrency > 0 {
		sem = semaphore.NewWeighted(s.concurrency)
	}

	t, ctx := tomb.WithContext(ctx)
	for i := 0; i < len(windows); i += s.chunkSize {
		j := i + s.chunkSize
		if j > len(windows) {
			j = len(windows)
		}
		ws, counts := windows[i:j], out[i:j]
		t.Go(func() error {
			if sem != nil {
				if err := sem.Acquire(ctx, 1); err != nil {
					return err
				}
				defer sem.Release(1)
			}
			return s.do(ctx, ws, counts)
		})
	}
	if err := t.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// do counts the documents in windows with one request, storing the results in out.
func (s *CountService) do(ctx context.Context, windows []window.Window, out []Count) error {
	logger := ctxlog.L(ctx)
	ms := s.client.MultiSearch()
	for _, w := range windows {
		source := elastic.NewSearchSource().
			Query(RangeQuery(s.field, w)).
			Size(0).
			TrackTotalHits(true)
		ms = ms.Add(elastic.NewSearchRequest().Index(s.index...).SearchSource(source))
	}

	logger.Debug("counting documents", zap.Int("windows", len(windows)))
	resp, err := ms.Do(ctx)
	if err != nil {
		return errors.Wrap(err, "error counting documents")
	}
	if len(resp.Responses) != len(windows) {
		return errors.Errorf("expected %d responses from multi search, got %d", len(windows), len(resp.Responses))
	}
	for i, r := range resp.Responses {
		if r.Error != nil {
			return errors.Errorf("error counting documents in %s: %s: %s", windows[i], r.Error.Type, r.Error.Reason)
		}
		out[i] = Count{Window: windows[i], Count: r.TotalHits()}
	}
	return nil
}
