package arxiv

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/papermind/paper-search-service/internal/domain"
	"github.com/papermind/paper-search-service/internal/papersources"
)

const twoEntryFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom" xmlns:opensearch="http://a9.com/-/spec/opensearch/1.1/">
  <opensearch:totalResults>42</opensearch:totalResults>
  <opensearch:startIndex>0</opensearch:startIndex>
  <opensearch:itemsPerPage>2</opensearch:itemsPerPage>
  <entry>
    <id>http://arxiv.org/abs/2301.12345v1</id>
    <title>Attention Mechanisms in Vision</title>
    <summary>A study of attention in vision transformers.</summary>
    <published>2023-01-15T18:30:00Z</published>
    <updated>2023-01-20T09:00:00Z</updated>
    <author><name>Alice Kim</name></author>
    <author><name>Bob Lee</name></author>
    <category term="cs.CV"/>
    <link href="http://arxiv.org/abs/2301.12345v1" rel="alternate" type="text/html"/>
    <link href="http://arxiv.org/pdf/2301.12345v1" rel="related" type="application/pdf"/>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/2302.00001v3</id>
    <title>Graph Neural Networks</title>
    <summary>We survey graph neural networks.</summary>
    <published>2023-02-01T00:00:00Z</published>
    <updated>2023-03-01T00:00:00Z</updated>
    <author><name>Carol Park</name></author>
    <category term="cs.LG"/>
    <link href="http://arxiv.org/pdf/2302.00001v3" rel="related" type="application/pdf"/>
  </entry>
</feed>`

const singleEntryFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom" xmlns:opensearch="http://a9.com/-/spec/opensearch/1.1/">
  <opensearch:totalResults>1</opensearch:totalResults>
  <entry>
    <id>http://arxiv.org/abs/2312.99999v1</id>
    <title>A Lone Result</title>
    <summary>The only matching paper.</summary>
    <published>2023-12-01T12:00:00Z</published>
    <updated>2023-12-01T12:00:00Z</updated>
    <author><name>Dana Cho</name></author>
    <category term="cs.AI"/>
  </entry>
</feed>`

const emptyFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom" xmlns:opensearch="http://a9.com/-/spec/opensearch/1.1/">
  <opensearch:totalResults>0</opensearch:totalResults>
</feed>`

// newTestClient returns a client pointed at the given server with a
// high rate limit so tests never stall on the limiter.
func newTestClient(serverURL string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	httpClient := papersources.NewHTTPClient(papersources.HTTPClientConfig{
		Timeout:    timeout,
		RateLimit:  1000,
		BurstSize:  100,
		MaxRetries: 1,
		RetryDelay: 5 * time.Millisecond,
	})
	return NewWithHTTPClient(Config{BaseURL: serverURL}, httpClient)
}

func TestClient_Search(t *testing.T) {
	t.Run("decodes multi-entry feed", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/atom+xml")
			w.Write([]byte(twoEntryFeed))
		}))
		defer server.Close()

		client := newTestClient(server.URL, 0)

		result, err := client.Search(context.Background(), papersources.SearchParams{Query: "attention"})
		require.NoError(t, err)
		require.NotNil(t, result)

		assert.Equal(t, 42, result.TotalResults)
		require.Len(t, result.Papers, 2)

		first := result.Papers[0]
		assert.Equal(t, "2301.12345", first.ID)
		assert.Equal(t, "Attention Mechanisms in Vision", first.Title)
		assert.Equal(t, "Alice Kim, Bob Lee", first.AuthorNames("Unknown"))
		assert.Equal(t, "cs.CV", first.PrimaryCategory)
		assert.Equal(t, "2023-01-15", first.Published)
		assert.Equal(t, "http://arxiv.org/pdf/2301.12345v1", first.PDFURL)
		assert.Equal(t, "http://arxiv.org/abs/2301.12345v1", first.AbstractURL)

		second := result.Papers[1]
		assert.Equal(t, "2302.00001", second.ID)
		// No alternate link in the feed, so the landing URL is synthesized.
		assert.Equal(t, "https://arxiv.org/abs/2302.00001", second.AbstractURL)
	})

	t.Run("decodes single bare entry", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(singleEntryFeed))
		}))
		defer server.Close()

		client := newTestClient(server.URL, 0)

		result, err := client.Search(context.Background(), papersources.SearchParams{Query: "lone"})
		require.NoError(t, err)

		assert.Equal(t, 1, result.TotalResults)
		require.Len(t, result.Papers, 1)
		assert.Equal(t, "2312.99999", result.Papers[0].ID)
		assert.Equal(t, "A Lone Result", result.Papers[0].Title)
	})

	t.Run("empty feed is success with no papers", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(emptyFeed))
		}))
		defer server.Close()

		client := newTestClient(server.URL, 0)

		result, err := client.Search(context.Background(), papersources.SearchParams{Query: "nothing matches"})
		require.NoError(t, err)

		assert.Equal(t, 0, result.TotalResults)
		assert.Empty(t, result.Papers)
	})

	t.Run("sends query parameters", func(t *testing.T) {
		var received url.Values
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			received = r.URL.Query()
			w.Write([]byte(emptyFeed))
		}))
		defer server.Close()

		client := newTestClient(server.URL, 0)

		_, err := client.Search(context.Background(), papersources.SearchParams{
			Query:      "deep learning",
			MaxResults: 7,
			Offset:     3,
			SortBy:     papersources.SortByRelevance,
			SortOrder:  papersources.SortOrderDescending,
		})
		require.NoError(t, err)

		assert.Equal(t, "all:deep learning", received.Get("search_query"))
		assert.Equal(t, "7", received.Get("max_results"))
		assert.Equal(t, "3", received.Get("start"))
		assert.Equal(t, "relevance", received.Get("sortBy"))
		assert.Equal(t, "descending", received.Get("sortOrder"))
	})

	t.Run("applies default sort and max results", func(t *testing.T) {
		var received url.Values
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			received = r.URL.Query()
			w.Write([]byte(emptyFeed))
		}))
		defer server.Close()

		client := newTestClient(server.URL, 0)

		_, err := client.Search(context.Background(), papersources.SearchParams{Query: "defaults"})
		require.NoError(t, err)

		assert.Equal(t, "10", received.Get("max_results"))
		assert.Equal(t, "0", received.Get("start"))
		assert.Equal(t, "relevance", received.Get("sortBy"))
		assert.Equal(t, "descending", received.Get("sortOrder"))
	})

	t.Run("non-200 response becomes external API error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("malformed query"))
		}))
		defer server.Close()

		client := newTestClient(server.URL, 0)

		result, err := client.Search(context.Background(), papersources.SearchParams{Query: "bad"})
		require.Error(t, err)
		assert.Nil(t, result)

		var apiErr *domain.ExternalAPIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "arXiv", apiErr.Source)
		assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
		assert.Contains(t, apiErr.Message, "malformed query")
		assert.ErrorIs(t, err, domain.ErrSearchFailed)
	})

	t.Run("malformed XML becomes external API error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("this is not xml"))
		}))
		defer server.Close()

		client := newTestClient(server.URL, 0)

		result, err := client.Search(context.Background(), papersources.SearchParams{Query: "garbled"})
		require.Error(t, err)
		assert.Nil(t, result)

		var apiErr *domain.ExternalAPIError
		require.ErrorAs(t, err, &apiErr)
		assert.Contains(t, apiErr.Message, "decoding response")
	})

	t.Run("timeout becomes search timeout error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(300 * time.Millisecond)
			w.Write([]byte(emptyFeed))
		}))
		defer server.Close()

		client := newTestClient(server.URL, 30*time.Millisecond)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		result, err := client.Search(ctx, papersources.SearchParams{Query: "slow"})
		require.Error(t, err)
		assert.Nil(t, result)
		assert.ErrorIs(t, err, domain.ErrSearchTimeout)

		var timeoutErr *domain.SearchTimeoutError
		require.ErrorAs(t, err, &timeoutErr)
		assert.Equal(t, "arXiv", timeoutErr.Source)
	})
}

func TestClient_Name(t *testing.T) {
	client := New(Config{})
	assert.Equal(t, "arXiv", client.Name())
}

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.applyDefaults()

	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, DefaultRateLimit, cfg.RateLimit)
	assert.Equal(t, DefaultBurstSize, cfg.BurstSize)
	assert.Equal(t, DefaultMaxResults, cfg.MaxResults)
}
