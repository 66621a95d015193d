package article

import (
	"errors"
	"strings"

	"github.com/samber/lo"

	"github.com/SergeyParamoshkin/house/internal/model"
)

var ErrNotFound = errors.New("article not found")

// Article fixture data
// nolint
var articles = []model.Article{
	{
		Name:    "Welcome home",
		Content: "Every house is an NFT with its own wallet. This is the first one minted, and the account below belongs to it rather than to its owner.",
		Image:   "ipfs://QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG",
		Tags:    []string{"announcement", "house"},
	},
	{
		Name:    "How the house wallet works",
		Content: "The house address is derived from the NFT contract, the token id and a salt. Whoever holds the token controls the account.",
		Image:   "ipfs://bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi",
		Tags:    []string{"erc6551", "wallet"},
	},
	{
		Name:    "Publishing from a house",
		Content: "Articles published by a house are signed by its account. Moving the token moves the publication history with it.",
		Image:   "ipfs://QmT78zSuBmuS4z925WZfrqQ1qHaJ56DQaTfyMUF7F8ff5o",
		Tags:    []string{"publishing", "house"},
	},
}

func withIndex(a model.Article, i int) *model.Article {
	a.Index = i
	a.Tags = append([]string(nil), a.Tags...)

	return &a
}

// All returns copies of every article in fixture order.
func All() []*model.Article {
	return lo.Map(articles, withIndex)
}

func ByIndex(i int) (*model.Article, error) {
	if i < 0 || i >= len(articles) {
		return nil, ErrNotFound
	}

	return withIndex(articles[i], i), nil
}

// ByTag matches tags case-insensitively. An empty tag matches everything.
func ByTag(tag string) []*model.Article {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return All()
	}

	return lo.Filter(All(), func(a *model.Article, _ int) bool {
		return lo.ContainsBy(a.Tags, func(t string) bool {
			return strings.EqualFold(t, tag)
		})
	})
}
