package esquery

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"testing"

	elastic "github.com/olivere/elastic/v7" // Elasticsearch client.
	"github.com/ory/dockertest"             // Run Docker containers in tests.
	"github.com/ory/dockertest/docker"
	"github.com/pkg/errors" // Wrap errors with context.
)

func prefix(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}

// runElasticsearch runs an Elasticsearch Docker container, returning its handler
// and a client connected to it.
func runElasticsearch(t *testing.T) (*dockertest.Resource, *elastic.Client, error) {
	if testing.Short() {
		// Skip during short testing because running a Docker container
		// per test takes a while.
		t.Skipf("skipping during -short due to dependency on an Elasticsearch container")
	}

	pool, err := dockertest.NewPool("")
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to connect to Docker")
	}

	name := prefix(6) + "-elasticsearch1"
	es, err := pool.RunWithOptions(&dockertest.RunOptions{
		Hostname:     name,
		Name:         name,
		Repository:   "docker.elastic.co/elasticsearch/elasticsearch-oss",
		Tag:          "7.2.0",
		ExposedPorts: []string{"9200/tcp"},
		Env: []string{
			"cluster.name=elasticsearch",
			"discovery.type=single-node",
			"ES_JAVA_OPTS=-Xms256m -Xmx256m",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.Ulimits = []docker.ULimit{
			{Name: "nproc", Soft: 65536, Hard: 65536},
			{Name: "nofile", Soft: 65536, Hard: 65536},
		}
	})
	if err != nil {
		return nil, nil, err
	}

	var client *elastic.Client
	if err := pool.Retry(func() error {
		u := "http://" + es.GetHostPort("9200/tcp")
		if client, err = elastic.NewSimpleClient(elastic.SetURL(u)); err != nil {
			return err
		}
		_, _, err = client.Ping(u).Do(context.Background())
		return err
	}); err != nil {
		es.Close()
		return nil, nil, errors.Wrap(err, "error waiting for Elasticsearch container")
	}

	return es, client, nil
}
