package search

import (
	"context"

	"github.com/algolia/algoliasearch-client-go/v3/algolia/opt"
	algoliasearch "github.com/algolia/algoliasearch-client-go/v3/algolia/search"
)

// Index is the slice of the hosted search index this service depends on:
// keyword in, ranked object ids out
type Index interface {
	SearchIDs(ctx context.Context, keyword string, maxHits int) ([]string, error)
}

type algoliaIndex struct {
	index *algoliasearch.Index
}

// NewAlgoliaIndex wraps an Algolia index in the Index interface
func NewAlgoliaIndex(appID, apiKey, indexName string) Index {
	client := algoliasearch.NewClient(appID, apiKey)
	return &algoliaIndex{index: client.InitIndex(indexName)}
}

// SearchIDs queries the index for keyword, retrieving only objectIDs, in
// relevance order
func (a *algoliaIndex) SearchIDs(ctx context.Context, keyword string, maxHits int) ([]string, error) {
	res, err := a.index.Search(keyword,
		ctx,
		opt.HitsPerPage(maxHits),
		opt.AttributesToRetrieve("objectID"),
	)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(res.Hits))
	for _, hit := range res.Hits {
		if id, ok := hit["objectID"].(string); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
