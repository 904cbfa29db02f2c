package mod

// SelectMatch returns the latest release strictly inside w. Releases are
// scanned in the order given; on equal times the first one seen wins.
func SelectMatch(releases []Release, w Window) (Release, bool) {
	var best *Release
	for i := range releases {
		r := &releases[i]
		if !w.Contains(r.ReleasedAt) {
			continue
		}
		if best == nil || r.ReleasedAt.After(best.ReleasedAt) {
			best = r
		}
	}
	if best == nil {
		return Release{}, false
	}
	return *best, true
}
