package functions

import (
	"context"

	"github.com/celebchat/persona-agent/internal/agent"
)

// film is one filmography entry served by the get_filmography tool.
type film struct {
	Year  string
	Title string
	Role  string
}

var filmographies = map[string][]film{
	"BradAgent": {
		{Year: "1994", Title: "Interview with the Vampire", Role: "Louis de Pointe du Lac"},
		{Year: "1995", Title: "Se7en", Role: "Detective David Mills"},
		{Year: "1999", Title: "Fight Club", Role: "Tyler Durden"},
		{Year: "2001", Title: "Ocean's Eleven", Role: "Rusty Ryan"},
		{Year: "2009", Title: "Inglourious Basterds", Role: "Lt. Aldo Raine"},
		{Year: "2011", Title: "Moneyball", Role: "Billy Beane"},
		{Year: "2019", Title: "Once Upon a Time in Hollywood", Role: "Cliff Booth"},
	},
	"AngelinaAgent": {
		{Year: "1999", Title: "Girl, Interrupted", Role: "Lisa Rowe"},
		{Year: "2001", Title: "Lara Croft: Tomb Raider", Role: "Lara Croft"},
		{Year: "2005", Title: "Mr. & Mrs. Smith", Role: "Jane Smith"},
		{Year: "2008", Title: "Changeling", Role: "Christine Collins"},
		{Year: "2014", Title: "Maleficent", Role: "Maleficent"},
	},
}

// CreateFilmographyFunctionDeclaration returns a tool listing the persona's
// notable film roles, so the model answers questions about past work with
// consistent facts.
func CreateFilmographyFunctionDeclaration(personaName string) *agent.FunctionDeclaration {
	return &agent.FunctionDeclaration{
		Name:        "get_filmography",
		Description: "Lists your notable film roles with year and character. Use this when the user asks about your movies, roles, or career.",
		ResponseSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"films": map[string]any{
					"type":        "array",
					"description": "Notable films",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"year": map[string]any{
								"type":        "string",
								"description": "Release year",
							},
							"title": map[string]any{
								"type":        "string",
								"description": "Film title",
							},
							"role": map[string]any{
								"type":        "string",
								"description": "Character played",
							},
						},
					},
				},
			},
		},
		FunctionCall: func(ctx context.Context, args map[string]any) (map[string]any, error) {
			films := make([]map[string]any, 0, len(filmographies[personaName]))
			for _, f := range filmographies[personaName] {
				films = append(films, map[string]any{
					"year":  f.Year,
					"title": f.Title,
					"role":  f.Role,
				})
			}

			return map[string]any{"films": films}, nil
		},
	}
}
