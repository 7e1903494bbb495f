package domain

// BlueprintTopic weights one lecture within the study blueprint. Weights of
// all topics in a blueprint sum to exactly 100.
type BlueprintTopic struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Weight        int      `json:"weight"`
	Prerequisites []string `json:"prerequisites"`
	RevisionOrder int      `json:"revision_order"`
}

type Blueprint struct {
	Title         string           `json:"title"`
	Topics        []BlueprintTopic `json:"topics"`
	RevisionOrder []string         `json:"revision_order"`
}
