package corpus

import (
	"sort"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// Domain extracts the registrable domain name of a URL without its public
// suffix, for grouped cross-validation: "https://news.bbc.co.uk/x" is "bbc".
func Domain(rawURL string) string {
	host := rawURL
	if idx := strings.Index(host, "://"); idx >= 0 {
		host = host[idx+3:]
	}
	if idx := strings.IndexAny(host, "/?#"); idx >= 0 {
		host = host[:idx]
	}
	if idx := strings.LastIndex(host, "@"); idx >= 0 {
		host = host[idx+1:]
	}
	if idx := strings.Index(host, ":"); idx >= 0 {
		host = host[:idx]
	}
	host = strings.ToLower(host)

	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	if idx := strings.Index(domain, "."); idx >= 0 {
		return domain[:idx]
	}
	return domain
}

// DomainGroups assigns each sentence the group id of its URL's domain.
// Ids are dense and follow first appearance.
func DomainGroups(sentences []Sentence) []int {
	groups := make([]int, len(sentences))
	ids := make(map[string]int)
	for i, s := range sentences {
		d := Domain(s.URL)
		if _, ok := ids[d]; !ok {
			ids[d] = len(ids)
		}
		groups[i] = ids[d]
	}
	return groups
}

// GroupKFold splits item positions into at most k folds so that no group
// spans two folds. Groups are dealt round-robin in ascending id order.
func GroupKFold(groups []int, k int) [][]int {
	seen := make(map[int]bool)
	var unique []int
	for _, g := range groups {
		if !seen[g] {
			seen[g] = true
			unique = append(unique, g)
		}
	}
	sort.Ints(unique)

	k = min(k, len(unique))
	if k <= 0 {
		return nil
	}
	fold := make(map[int]int, len(unique))
	for i, g := range unique {
		fold[g] = i % k
	}
	folds := make([][]int, k)
	for i, g := range groups {
		folds[fold[g]] = append(folds[fold[g]], i)
	}
	return folds
}
