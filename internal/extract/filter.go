package extract

import (
	"github.com/hbollon/go-edlib"
)

// groupSimilarity is the Jaro-Winkler threshold above which two titles are
// treated as renditions of the same video.
const groupSimilarity = 0.95

// FilterByQuality collapses multi-rendition extractions down to one record
// per video, chosen by the preference order (first match wins), then by
// highest available rank. Records are grouped by fuzzy title similarity;
// singletons pass through untouched.
//
// The core pipeline already yields one record per video, so this is an
// optional pass for callers extracting blocks that expose several renditions
// of the same title.
func FilterByQuality(videos []Video, preferred []Quality) []Video {
	if len(preferred) == 0 || len(videos) < 2 {
		return videos
	}

	var groups [][]Video
	keys := make([]string, 0, len(videos))

	for _, v := range videos {
		key := NormalizeTitle(v.Title)
		matched := -1
		for i, existing := range keys {
			if edlib.JaroWinklerSimilarity(key, existing) >= groupSimilarity {
				matched = i
				break
			}
		}
		if matched >= 0 {
			groups[matched] = append(groups[matched], v)
		} else {
			keys = append(keys, key)
			groups = append(groups, []Video{v})
		}
	}

	filtered := make([]Video, 0, len(groups))
	for _, group := range groups {
		filtered = append(filtered, selectBestQuality(group, preferred))
	}
	return filtered
}

func selectBestQuality(group []Video, preferred []Quality) Video {
	if len(group) == 1 {
		return group[0]
	}

	for _, q := range preferred {
		for _, v := range group {
			if v.Quality == q {
				return v
			}
		}
	}

	best := group[0]
	for _, v := range group[1:] {
		if v.Quality.Rank() > best.Quality.Rank() {
			best = v
		}
	}
	return best
}
