package knowledge

// Score computes a quality score in [0,1] for a candidate knowledge item.
// Longer bodies, descriptive titles and externally popular sources (upvotes,
// stars) score higher. Deterministic; absent inputs simply contribute
// nothing.
func Score(title, body string, popularity int) float64 {
	score := 0.5

	if len(body) > 100 {
		score += 0.2
	}
	if len(body) > 500 {
		score += 0.1
	}

	if len(title) > 10 {
		score += 0.1
	}

	if popularity > 10 {
		score += 0.1
	}
	if popularity > 100 {
		score += 0.1
	}

	if score > 1.0 {
		score = 1.0
	}

	return score
}
