package domain

type ResearchSource struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Excerpt string `json:"excerpt"`
}

type ResearchReport struct {
	Summary string           `json:"summary"`
	Sources []ResearchSource `json:"sources"`
}
