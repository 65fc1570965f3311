package dedup

// SelectCandidates keeps, in pool order, the entries that carry a stored hash and
// are not owned by excludeCreator, stopping at limit. A limit <= 0 means no cap.
func SelectCandidates(pool []Candidate, excludeCreator string, limit int) []Candidate {
	size := len(pool)
	if limit > 0 && limit < size {
		size = limit
	}
	selected := make([]Candidate, 0, size)
	for _, c := range pool {
		if limit > 0 && len(selected) >= limit {
			break
		}
		if c.Hash == nil || (c.Hash.SHA256 == "" && c.Hash.PerceptualHash == "") {
			continue
		}
		if c.CreatorID == excludeCreator {
			continue
		}
		selected = append(selected, c)
	}
	return selected
}
