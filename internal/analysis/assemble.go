package analysis

// Assemble attaches links to the analysis. It never fails.
func Assemble(a Result, links []ResourceRecommendation) Result {
	if links == nil {
		links = []ResourceRecommendation{}
	}
	a.ResourceLinks = links
	return a
}
