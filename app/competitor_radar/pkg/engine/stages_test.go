package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dm "github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/model"
	"github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/search"
)

func TestDiscovery_BoundsAndOrder(t *testing.T) {
	var results []search.Result
	for i := 0; i < 6; i++ {
		results = append(results, search.Result{URL: fmt.Sprintf("https://%d.example", i)})
	}
	d := NewDiscovery(&fakeSearcher{results: results}, 3, time.Second, nil)

	locators, err := d.Discover(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, []dm.SourceLocator{"https://0.example", "https://1.example", "https://2.example"}, locators)
}

func TestDiscovery_WrapsSearchError(t *testing.T) {
	cause := errors.New("timeout")
	d := NewDiscovery(&fakeSearcher{err: cause}, 3, time.Second, nil)

	_, err := d.Discover(context.Background(), validRequest())
	assert.ErrorIs(t, err, cause)
}

func TestRetrieval_KInKOut(t *testing.T) {
	for _, k := range []int{0, 1, 3, 5} {
		t.Run(fmt.Sprintf("k=%d", k), func(t *testing.T) {
			f := &fakeFetcher{pages: map[string]string{}}
			locators := make([]dm.SourceLocator, k)
			for i := range locators {
				u := fmt.Sprintf("https://%d.example", i)
				locators[i] = dm.SourceLocator(u)
				if i%2 == 0 {
					f.pages[u] = "content " + u
				}
			}

			docs := NewRetrieval(f, 1000, time.Second, nil).Retrieve(context.Background(), locators)
			require.Len(t, docs, k)
			for i, doc := range docs {
				assert.Equal(t, locators[i], doc.Locator)
				assert.Equal(t, i%2 != 0, doc.FetchFailed)
				if doc.FetchFailed {
					assert.Empty(t, doc.Content)
				}
			}
		})
	}
}

func TestRetrieval_TruncatesAndNormalizes(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{
		"https://long.example":  strings.Repeat("竞", 1500),
		"https://space.example": "  Pricing:\t\t$10   per seat\n\n\n\n\nEnterprise  ",
	}}
	docs := NewRetrieval(f, 1000, time.Second, nil).Retrieve(context.Background(),
		[]dm.SourceLocator{"https://long.example", "https://space.example"})

	require.Len(t, docs, 2)
	assert.Equal(t, 1000, len([]rune(docs[0].Content)))
	assert.Equal(t, "Pricing: $10 per seat\n\nEnterprise", docs[1].Content)
	assert.Equal(t, "Title of https://space.example", docs[1].Title)
}

func TestRetrieval_TimeoutIsFailure(t *testing.T) {
	docs := NewRetrieval(blockingFetcher{}, 1000, 20*time.Millisecond, nil).
		Retrieve(context.Background(), []dm.SourceLocator{"https://slow.example"})

	require.Len(t, docs, 1)
	assert.True(t, docs[0].FetchFailed)
}

func TestRetrieval_PanicIsolated(t *testing.T) {
	f := &fakeFetcher{
		pages:  map[string]string{"https://ok.example": "fine"},
		panics: map[string]bool{"https://bad.example": true},
	}
	docs := NewRetrieval(f, 1000, time.Second, nil).Retrieve(context.Background(),
		[]dm.SourceLocator{"https://bad.example", "https://ok.example"})

	require.Len(t, docs, 2)
	assert.True(t, docs[0].FetchFailed)
	assert.Equal(t, dm.SourceLocator("https://bad.example"), docs[0].Locator)
	assert.False(t, docs[1].FetchFailed)
	assert.Equal(t, "fine", docs[1].Content)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abcdef", 3))
	assert.Equal(t, "ab", Truncate("ab", 3))
	assert.Equal(t, "竞品", Truncate("竞品分析", 2))
	assert.Equal(t, "abc", Truncate("abc", 0))
}

func TestBuildMessages(t *testing.T) {
	docs := []dm.RetrievedDocument{
		{Locator: "https://a.example", Title: "A", Content: "A does review."},
		{Locator: "https://b.example", FetchFailed: true},
	}
	msgs := BuildMessages(validRequest(), docs)
	require.Len(t, msgs, 2)

	prompt := msgs[1].Content
	assert.Contains(t, prompt, "Industry: AI coding assistants")
	assert.Contains(t, prompt, "Product: An AI pair programmer that reviews pull requests")
	assert.Contains(t, prompt, "Source 1: https://a.example\nTitle: A\nContent:\nA does review.")
	assert.Contains(t, prompt, "Source 2: https://b.example\nFETCH FAILED")
	assert.Contains(t, prompt, "Do NOT hallucinate")
	assert.Contains(t, prompt, `"Not specified"`)
	assert.Contains(t, prompt, "threat_assessment")
	assert.Contains(t, prompt, "next_steps")
}

func TestSchemaDescriptor(t *testing.T) {
	desc := SchemaDescriptor()
	for _, field := range []string{
		"competitor_summaries", "comparison_matrix", "strategic_analysis",
		"company_description", "unique_value_proposition", "market_size_insights",
	} {
		assert.Contains(t, desc, field)
	}
}
