package services

// JSON response schemas for structured generation, shared by the note,
// question-bank, verification, and research services.

func stringArraySchema() map[string]any {
	return map[string]any{"type": "array", "items": map[string]any{"type": "string"}}
}

func citationSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"label":     map[string]any{"type": "string"},
			"timestamp": map[string]any{"type": "string"},
			"snippet":   map[string]any{"type": "string"},
		},
		"required": []string{"label", "timestamp", "snippet"},
	}
}

func noteSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"summary": map[string]any{"type": "string"},
			"sections": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"heading": map[string]any{"type": "string"},
						"bullets": stringArraySchema(),
					},
					"required": []string{"heading", "bullets"},
				},
			},
			"key_takeaways": stringArraySchema(),
			"citations":     map[string]any{"type": "array", "items": citationSchema()},
		},
		"required": []string{"summary", "sections", "key_takeaways", "citations"},
	}
}

func questionBankSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"type":         map[string]any{"type": "string", "enum": []string{"mcq", "true_false", "short_answer"}},
						"difficulty":   map[string]any{"type": "string"},
						"bloom":        map[string]any{"type": "string"},
						"time_seconds": map[string]any{"type": "number"},
						"tags":         stringArraySchema(),
						"stem":         map[string]any{"type": "string"},
						"options": map[string]any{
							"type": "array",
							"items": map[string]any{
								"type": "object",
								"properties": map[string]any{
									"id":   map[string]any{"type": "string"},
									"text": map[string]any{"type": "string"},
								},
								"required": []string{"id", "text"},
							},
						},
						"answer":    map[string]any{"type": "string"},
						"rationale": map[string]any{"type": "string"},
						"citations": map[string]any{"type": "array", "items": citationSchema()},
					},
					"required": []string{"type", "difficulty", "bloom", "time_seconds", "tags", "stem", "answer", "rationale", "citations"},
				},
			},
		},
		"required": []string{"questions"},
	}
}

func verifySchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"supported": map[string]any{"type": "boolean"},
			"issues":    stringArraySchema(),
		},
		"required": []string{"supported", "issues"},
	}
}

func researchReportSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"summary": map[string]any{"type": "string"},
			"sources": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"title":   map[string]any{"type": "string"},
						"url":     map[string]any{"type": "string"},
						"excerpt": map[string]any{"type": "string"},
					},
					"required": []string{"title", "url", "excerpt"},
				},
			},
		},
		"required": []string{"summary", "sources"},
	}
}
