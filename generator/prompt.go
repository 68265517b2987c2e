package generator

import (
	"fmt"
	"strconv"
	"strings"
)

// SystemPrompt frames the model as a JSON-only recipe writer.
const SystemPrompt = `You are a recipe writer for a pantry planning service.
You only answer with a JSON array of recipes and never add prose, markdown or comments.
Each recipe is an object with the keys "title", "instructions", "prepTime" (minutes, integer) and
"ingredients" (an array of objects with "ingredientName", "quantity" (number) and "unit").
Titles must be unique and must not repeat any title the user asks you to avoid.`

// BuildPrompt renders the user prompt for a generation request.
func BuildPrompt(req Request) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Generate %d recipes in a JSON array using these ingredients: ", req.Count)

	items := make([]string, 0, len(req.Pantry))
	for _, it := range req.Pantry {
		name := strings.TrimSpace(it.Name)
		if name == "" {
			continue
		}
		items = append(items, strings.TrimSpace(fmt.Sprintf("%s %s %s",
			strconv.FormatFloat(it.Quantity, 'f', -1, 64), strings.TrimSpace(it.Unit), name)))
	}
	sb.WriteString(strings.Join(items, ", "))
	sb.WriteString(". You may optionally add common household staples. ")

	if req.MaxPrepTime > 0 {
		fmt.Fprintf(&sb, "Preparation time must be between %d and %d minutes. ", req.MinPrepTime, req.MaxPrepTime)
	}

	if len(req.ExcludedTitles) > 0 {
		fmt.Fprintf(&sb, "Do not use titles: %s. ", strings.Join(req.ExcludedTitles, ", "))
	}

	sb.WriteString("Each recipe must have: title, instructions, prepTime (minutes), ingredients (ingredientName, quantity, unit). ")
	sb.WriteString("Return ONLY a valid JSON array, no extra text.")

	return sb.String()
}
